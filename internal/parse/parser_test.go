package parse

import (
	"io"
	"log/slog"
	"testing"

	"github.com/kwheaton/canvass/internal/lexicon"
	"github.com/kwheaton/canvass/internal/ner"
)

func newTestParser(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return NewParser(opts)
}

func TestParseLineScenarios(t *testing.T) {
	p := newTestParser(Options{})
	st := &State{}

	// Well-formed entry.
	rec, _, ok := p.ParseLine(RawLine{Text: "Smith John carp 123 Main St", LineNo: 1}, st)
	if !ok {
		t.Fatal("well-formed line should produce a record")
	}
	if rec.Surname != "Smith" || rec.GivenName != "John" || rec.Occupation != "carp" || rec.HomeAddress != "123 Main St" {
		t.Errorf("got %+v", rec)
	}
	if rec.SurnameCarried {
		t.Error("explicit surname must not be marked carried")
	}

	// Blank line produces nothing and leaves state alone.
	if _, reason, ok := p.ParseLine(RawLine{Text: "   ", LineNo: 2}, st); ok || reason != SkipEmpty {
		t.Errorf("blank line: ok=%v reason=%q", ok, reason)
	}
	if st.LastSurname != "Smith" {
		t.Errorf("state disturbed by blank line: %q", st.LastSurname)
	}

	// Ditto line reuses the carried surname.
	rec, _, ok = p.ParseLine(RawLine{Text: `" " Anna clk`, LineNo: 3}, st)
	if !ok {
		t.Fatal("ditto line should produce a record")
	}
	if rec.Surname != "Smith" || rec.GivenName != "Anna" || rec.Occupation != "clk" || rec.HomeAddress != "" {
		t.Errorf("got %+v", rec)
	}
	if !rec.SurnameCarried {
		t.Error("ditto record should be marked carried")
	}

	// Name-only entry still yields a record and updates state.
	rec, _, ok = p.ParseLine(RawLine{Text: "Doe Robert", LineNo: 4}, st)
	if !ok {
		t.Fatal("name-only line should produce a record")
	}
	if rec.Surname != "Doe" || rec.GivenName != "Robert" || rec.Occupation != "" || rec.HomeAddress != "" {
		t.Errorf("got %+v", rec)
	}
	if st.LastSurname != "Doe" {
		t.Errorf("state should now carry Doe, got %q", st.LastSurname)
	}
}

func TestParseLineDittoWithoutPrior(t *testing.T) {
	p := newTestParser(Options{})
	st := &State{}
	_, reason, ok := p.ParseLine(RawLine{Text: `" " Anna clk`, LineNo: 1}, st)
	if ok || reason != SkipNoSurname {
		t.Errorf("ditto with empty state: ok=%v reason=%q, want skip %q", ok, reason, SkipNoSurname)
	}
}

func TestParseLineStateAcrossPagesAndRuns(t *testing.T) {
	p := newTestParser(Options{})

	st := &State{}
	pageOne := []string{"Smith John carp 123 Main St"}
	pageTwo := []string{`" Anna clk`}
	for _, text := range pageOne {
		p.ParseLine(RawLine{Text: text}, st)
	}
	// Same state instance crosses the page boundary.
	rec, _, ok := p.ParseLine(RawLine{Text: pageTwo[0]}, st)
	if !ok || rec.Surname != "Smith" {
		t.Errorf("carry must survive page boundaries, got (%+v, %v)", rec, ok)
	}

	// A fresh run gets a fresh state: the same ditto line now fails.
	st.Reset()
	if _, reason, ok := p.ParseLine(RawLine{Text: pageTwo[0]}, st); ok || reason != SkipNoSurname {
		t.Errorf("carry must not survive a run boundary: ok=%v reason=%q", ok, reason)
	}
}

func TestParseLinePartialExtraction(t *testing.T) {
	p := newTestParser(Options{})
	st := &State{}
	rec, _, ok := p.ParseLine(RawLine{Text: "Smith John xyzzy", LineNo: 1}, st)
	if !ok {
		t.Fatal("line with surname must always produce a record")
	}
	if rec.Surname != "Smith" || rec.Occupation != "" || rec.HomeAddress != "" {
		t.Errorf("unknown fields must stay empty, got %+v", rec)
	}
}

func TestParseLineSupplementalFields(t *testing.T) {
	p := newTestParser(Options{})
	st := &State{}

	rec, _, ok := p.ParseLine(RawLine{Text: "Smith John & Mary carp h 123 Main", LineNo: 7}, st)
	if !ok {
		t.Fatal("line should produce a record")
	}
	if rec.Surname != "Smith" || rec.GivenName != "John" || rec.SpouseName != "Mary" {
		t.Errorf("spouse split wrong: %+v", rec)
	}
	if rec.Occupation != "carp" || rec.HomeAddress != "123 Main" || rec.ResidenceType != "home" {
		t.Errorf("occupation/address wrong: %+v", rec)
	}
	if rec.LineNo != 7 || rec.Raw != "Smith John & Mary carp h 123 Main" {
		t.Errorf("provenance wrong: %+v", rec)
	}

	rec, _, ok = p.ParseLine(RawLine{Text: "Jones Wm lab bds 40 Elm ave"}, st)
	if !ok || rec.ResidenceType != "boards" || rec.HomeAddress != "40 Elm ave" || rec.Occupation != "lab" {
		t.Errorf("boards marker wrong: %+v ok=%v", rec, ok)
	}
}

func TestParseLineWithRecognizer(t *testing.T) {
	lex := lexicon.Default()
	p := newTestParser(Options{Lexicon: lex, Recognizer: ner.NewCached(ner.New(lex), 0)})
	st := &State{}

	rec, _, ok := p.ParseLine(RawLine{Text: "Smith John carp 123 Main st xQz7 zz"}, st)
	if !ok || rec.HomeAddress != "123 Main st" {
		t.Errorf("recognizer should trim trailing noise, got %q ok=%v", rec.HomeAddress, ok)
	}
}

func TestParseLineTieBreakPolicy(t *testing.T) {
	doc := lexicon.Document{
		Occupations:      []lexicon.Occupation{{Canonical: "12", Aliases: []string{"12"}}},
		DittoMarks:       []string{`"`},
		StreetSuffixes:   []string{"st"},
		Directionals:     []string{"n"},
		ResidenceMarkers: map[string]string{"h": "home"},
	}
	lex, err := lexicon.FromDocument(doc)
	if err != nil {
		t.Fatal(err)
	}

	addrWins := newTestParser(Options{Lexicon: lex, TieBreak: TieAddress})
	st := &State{}
	rec, _, ok := addrWins.ParseLine(RawLine{Text: "Smith John 12 Oak st"}, st)
	if !ok || rec.Occupation != "" || rec.HomeAddress != "12 Oak st" {
		t.Errorf("TieAddress: got %+v", rec)
	}

	occWins := newTestParser(Options{Lexicon: lex, TieBreak: TieOccupation})
	st = &State{}
	rec, _, ok = occWins.ParseLine(RawLine{Text: "Smith John 12 Oak st"}, st)
	if !ok || rec.Occupation != "12" || rec.HomeAddress != "Oak st" {
		t.Errorf("TieOccupation: got %+v", rec)
	}
}
