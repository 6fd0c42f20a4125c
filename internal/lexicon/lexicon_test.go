package lexicon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"CLERK", "clerk"},
		{"Dep.", "dep"},
		{"N.E.", "ne"},
		{"st.,", "st"},
		{"carp,", "carp"},
		{"mill-wright", "mill-wright"},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := NormalizeKey(tc.in); got != tc.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMatchOccupation(t *testing.T) {
	lex := Default()
	cases := []struct {
		name     string
		tokens   []string
		consumed int
		canon    string
		ok       bool
	}{
		{"abbreviation", []string{"carp"}, 1, "carp", true},
		{"full word to canonical", []string{"carpenter,"}, 1, "carp", true},
		{"case insensitive", []string{"CLERK"}, 1, "clk", true},
		{"multi word", []string{"dep.", "reg.", "of", "deeds", "123"}, 4, "dep reg of deeds", true},
		{"longest wins over prefix", []string{"carriage", "maker"}, 2, "carriage maker", true},
		{"bare maker still matches", []string{"maker"}, 1, "maker", true},
		{"hyphenated", []string{"mill-wright"}, 1, "millwright", true},
		{"unknown", []string{"zzz"}, 0, "", false},
		{"empty", nil, 0, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			consumed, canon, ok := lex.MatchOccupation(tc.tokens)
			if consumed != tc.consumed || canon != tc.canon || ok != tc.ok {
				t.Errorf("MatchOccupation(%v) = (%d, %q, %v), want (%d, %q, %v)",
					tc.tokens, consumed, canon, ok, tc.consumed, tc.canon, tc.ok)
			}
		})
	}
}

func TestStartsOccupation(t *testing.T) {
	lex := Default()
	if !lex.StartsOccupation("carriage") {
		t.Error("carriage should open the carriage maker alias")
	}
	if !lex.StartsOccupation("Clk,") {
		t.Error("clk with trailing comma should still cue")
	}
	if lex.StartsOccupation("Smith") {
		t.Error("Smith is not an occupation cue")
	}
}

func TestDittoAndResidence(t *testing.T) {
	lex := Default()
	for _, mark := range []string{`"`, "''", "“", "”"} {
		if !lex.IsDitto(mark) {
			t.Errorf("IsDitto(%q) = false, want true", mark)
		}
	}
	if lex.IsDitto("Smith") {
		t.Error("IsDitto(Smith) = true")
	}

	cases := []struct {
		tok  string
		kind string
		ok   bool
	}{
		{"h", "home", true},
		{"H.", "home", true},
		{"house", "home", true},
		{"bds", "boards", true},
		{"res", "home", true},
		{"xyz", "", false},
	}
	for _, tc := range cases {
		kind, ok := lex.ResidenceType(tc.tok)
		if kind != tc.kind || ok != tc.ok {
			t.Errorf("ResidenceType(%q) = (%q, %v), want (%q, %v)", tc.tok, kind, ok, tc.kind, tc.ok)
		}
	}
}

func TestStreetVocabulary(t *testing.T) {
	lex := Default()
	if !lex.IsStreetSuffix("St.") || !lex.IsStreetSuffix("ave") {
		t.Error("expected st and ave to be street suffixes")
	}
	if lex.IsStreetSuffix("Smith") {
		t.Error("Smith is not a street suffix")
	}
	if !lex.IsDirectional("n") || !lex.IsDirectional("S.E.") {
		t.Error("expected n and s.e. to be directionals")
	}
}

func TestLoadValidFile(t *testing.T) {
	doc := `{
	  "occupations": [{"canonical": "smith", "aliases": ["smith", "blcksmth"]}],
	  "ditto_marks": ["\""],
	  "street_suffixes": ["st"],
	  "directionals": ["n"],
	  "residence_markers": {"h": "home"}
	}`
	path := filepath.Join(t.TempDir(), "lex.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	lex, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, canon, ok := lex.MatchOccupation([]string{"blcksmth"}); !ok || canon != "smith" {
		t.Errorf("loaded lexicon should map blcksmth to smith, got (%q, %v)", canon, ok)
	}
	// The replacement is wholesale: defaults must not leak through.
	if _, _, ok := lex.MatchOccupation([]string{"carp"}); ok {
		t.Error("default entries leaked into loaded lexicon")
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			"missing table",
			`{"occupations": [{"canonical": "x", "aliases": ["x"]}]}`,
			"does not match schema",
		},
		{
			"unknown key",
			`{
			  "occupations": [{"canonical": "x", "aliases": ["x"]}],
			  "ditto_marks": ["\""],
			  "street_suffixes": ["st"],
			  "directionals": ["n"],
			  "residence_markers": {"h": "home"},
			  "streets": []
			}`,
			"does not match schema",
		},
		{
			"bad residence kind",
			`{
			  "occupations": [{"canonical": "x", "aliases": ["x"]}],
			  "ditto_marks": ["\""],
			  "street_suffixes": ["st"],
			  "directionals": ["n"],
			  "residence_markers": {"h": "hotel"}
			}`,
			"does not match schema",
		},
		{
			"not json",
			`{{{`,
			"unmarshal",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "lex.json")
			if err := os.WriteFile(path, []byte(tc.doc), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load should fail")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestFromDocumentRejectsConflictingAlias(t *testing.T) {
	_, err := FromDocument(Document{
		Occupations: []Occupation{
			{Canonical: "carp", Aliases: []string{"carp"}},
			{Canonical: "clk", Aliases: []string{"carp"}},
		},
	})
	if err == nil {
		t.Fatal("conflicting alias should be rejected")
	}
}
