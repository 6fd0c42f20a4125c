package parse

import (
	"strings"

	"github.com/kwheaton/canvass/internal/lexicon"
)

// Name is the splitter's result. Carried marks a surname reused from the
// ditto state rather than read off the line.
type Name struct {
	Surname string
	Given   string
	Spouse  string
	Carried bool
}

// NameSplitter resolves the leading segment into surname and given name,
// consulting and updating the ditto carry-forward state.
type NameSplitter struct {
	lex *lexicon.Lexicon
}

// NewNameSplitter builds a splitter. A nil lexicon uses the embedded
// defaults.
func NewNameSplitter(lex *lexicon.Lexicon) *NameSplitter {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &NameSplitter{lex: lex}
}

// Split resolves the segment text against st. Leading ditto glyphs (or an
// empty segment) reuse st.LastSurname without touching it; an explicit
// surname overwrites it. ok is false only when no surname can be
// determined at all, which makes the whole line unparseable.
func (s *NameSplitter) Split(text string, st *State) (Name, bool) {
	toks := strings.Fields(text)

	ditto := false
	for len(toks) > 0 && s.lex.IsDitto(toks[0]) {
		toks = toks[1:]
		ditto = true
	}

	if ditto || len(toks) == 0 {
		if st.LastSurname == "" {
			return Name{}, false
		}
		given, spouse := splitSpouse(toks)
		return Name{Surname: st.LastSurname, Given: given, Spouse: spouse, Carried: true}, true
	}

	surname := cleanNameToken(toks[0])
	if surname == "" {
		return Name{}, false
	}
	st.LastSurname = surname
	given, spouse := splitSpouse(toks[1:])
	return Name{Surname: surname, Given: given, Spouse: spouse}, true
}

// splitSpouse separates a "& Mary" / "and Mary" suffix from the given-name
// tokens. Directory entries list the spouse inline after the head of
// household; the connective needs a following name to count.
func splitSpouse(toks []string) (given, spouse string) {
	for i, tok := range toks {
		t := strings.ToLower(tok)
		if (t == "&" || t == "and") && i+1 < len(toks) {
			return joinNameTokens(toks[:i]), joinNameTokens(toks[i+1:])
		}
	}
	return joinNameTokens(toks), ""
}

func joinNameTokens(toks []string) string {
	parts := make([]string, 0, len(toks))
	for _, tok := range toks {
		if t := cleanNameToken(tok); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// cleanNameToken strips the punctuation typesetting hangs on name tokens
// while keeping initials ("Jno." stays "Jno.") intact except for commas.
func cleanNameToken(tok string) string {
	return strings.TrimRight(tok, ",;:")
}
