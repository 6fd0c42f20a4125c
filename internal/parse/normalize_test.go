package parse

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"collapse whitespace", "Smith   John\t carp", "Smith John carp"},
		{"trim ends", "  Doe Robert  ", "Doe Robert"},
		{"curly quotes fold", "“ ” Anna clk", `" " Anna clk`},
		{"em dash folds", "Main—St", "Main-St"},
		{"ligature folds", "ﬁreman", "fireman"},
		{"digit context O to 0", "1O3 Main st", "103 Main st"},
		{"digit context l to 1", "l23 Main st", "123 Main st"},
		{"word context 0 to o", "J0hn", "John"},
		{"word context leading 0", "0tis", "Otis"},
		{"mixed token left alone", "a0", "a0"},
		{"blank", "   \t  ", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(RawLine{Text: tc.in, LineNo: 1})
			if got.Text != tc.want {
				t.Errorf("Normalize(%q).Text = %q, want %q", tc.in, got.Text, tc.want)
			}
			if got.Raw != tc.in {
				t.Errorf("Raw should keep the input, got %q", got.Raw)
			}
			if got.LineNo != 1 {
				t.Errorf("LineNo should carry through, got %d", got.LineNo)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Smith   John carp 123 Main St",
		"“ ” Anna clk",
		"1O3 Main—St",
		"J0hn  ﬂat",
		"",
	}
	for _, in := range inputs {
		once := Normalize(RawLine{Text: in})
		twice := Normalize(RawLine{Text: once.Text})
		if once.Text != twice.Text {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once.Text, twice.Text)
		}
	}
}

func TestNormalizeKeepsCase(t *testing.T) {
	got := Normalize(RawLine{Text: "SMITH John CARP"})
	if got.Text != "SMITH John CARP" {
		t.Errorf("case must be preserved, got %q", got.Text)
	}
}
