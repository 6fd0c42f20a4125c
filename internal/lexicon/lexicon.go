// Package lexicon holds the data-driven dictionaries the parser matches
// against: occupation abbreviations, ditto glyphs, street suffixes,
// directionals and residence markers. The defaults ship embedded; a
// replacement file can be loaded at runtime and is validated against a JSON
// Schema before use, so vocabularies swap without code changes.
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	_ "embed"
)

//go:embed defaults.json
var defaultsJSON []byte

// Occupation is one dictionary entry: the canonical form plus the surface
// forms that map to it.
type Occupation struct {
	Canonical string   `json:"canonical"`
	Aliases   []string `json:"aliases"`
}

// Document is the on-disk shape of a lexicon file.
type Document struct {
	Occupations      []Occupation      `json:"occupations"`
	DittoMarks       []string          `json:"ditto_marks"`
	StreetSuffixes   []string          `json:"street_suffixes"`
	Directionals     []string          `json:"directionals"`
	ResidenceMarkers map[string]string `json:"residence_markers"`
}

// Lexicon is the compiled lookup form of a Document. All lookups are
// case-insensitive and ignore token punctuation via NormalizeKey.
type Lexicon struct {
	occupations  map[string]string
	occFirst     map[string]struct{}
	maxTokens    int
	ditto        map[string]struct{}
	suffixes     map[string]struct{}
	directionals map[string]struct{}
	residence    map[string]string
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// Default returns the embedded lexicon. The embedded document is fixed at
// build time, so a failure here is a programming error.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		var doc Document
		if err := json.Unmarshal(defaultsJSON, &doc); err != nil {
			panic(fmt.Sprintf("lexicon: embedded defaults: %v", err))
		}
		lex, err := FromDocument(doc)
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded defaults: %v", err))
		}
		defaultLex = lex
	})
	return defaultLex
}

// Load reads and validates a lexicon file, replacing the defaults wholesale.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	if err := validateDocument(data); err != nil {
		return nil, fmt.Errorf("validate lexicon %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode lexicon %s: %w", path, err)
	}
	lex, err := FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("build lexicon %s: %w", path, err)
	}
	return lex, nil
}

// FromDocument compiles a Document into lookup tables. Alias phrases are
// normalized with NormalizeKey per token; a surface form may belong to only
// one canonical entry.
func FromDocument(doc Document) (*Lexicon, error) {
	lex := &Lexicon{
		occupations:  make(map[string]string),
		occFirst:     make(map[string]struct{}),
		ditto:        make(map[string]struct{}),
		suffixes:     make(map[string]struct{}),
		directionals: make(map[string]struct{}),
		residence:    make(map[string]string),
	}
	for _, occ := range doc.Occupations {
		if occ.Canonical == "" {
			return nil, fmt.Errorf("occupation entry with empty canonical form")
		}
		for _, alias := range occ.Aliases {
			words := strings.Fields(alias)
			keys := make([]string, 0, len(words))
			for _, w := range words {
				if k := NormalizeKey(w); k != "" {
					keys = append(keys, k)
				}
			}
			if len(keys) == 0 {
				return nil, fmt.Errorf("occupation %q: alias %q normalizes to nothing", occ.Canonical, alias)
			}
			phrase := strings.Join(keys, " ")
			if prev, dup := lex.occupations[phrase]; dup && prev != occ.Canonical {
				return nil, fmt.Errorf("alias %q claimed by both %q and %q", alias, prev, occ.Canonical)
			}
			lex.occupations[phrase] = occ.Canonical
			lex.occFirst[keys[0]] = struct{}{}
			if len(keys) > lex.maxTokens {
				lex.maxTokens = len(keys)
			}
		}
	}
	for _, m := range doc.DittoMarks {
		lex.ditto[m] = struct{}{}
	}
	for _, s := range doc.StreetSuffixes {
		lex.suffixes[NormalizeKey(s)] = struct{}{}
	}
	for _, d := range doc.Directionals {
		lex.directionals[NormalizeKey(d)] = struct{}{}
	}
	for marker, kind := range doc.ResidenceMarkers {
		lex.residence[NormalizeKey(marker)] = kind
	}
	return lex, nil
}

// NormalizeKey lowercases a token and strips the punctuation OCR and
// typesetting attach to dictionary words: periods anywhere ("dep." -> "dep",
// "n.e." -> "ne") and trailing commas, semicolons and colons.
func NormalizeKey(tok string) string {
	tok = strings.ToLower(tok)
	tok = strings.ReplaceAll(tok, ".", "")
	return strings.TrimRight(tok, ",;:")
}

// MatchOccupation matches the longest alias phrase anchored at tokens[0].
// It returns the number of raw tokens consumed and the canonical form.
func (l *Lexicon) MatchOccupation(tokens []string) (consumed int, canonical string, ok bool) {
	limit := len(tokens)
	if limit > l.maxTokens {
		limit = l.maxTokens
	}
	keys := make([]string, limit)
	for i := 0; i < limit; i++ {
		keys[i] = NormalizeKey(tokens[i])
	}
	for n := limit; n >= 1; n-- {
		phrase := strings.Join(keys[:n], " ")
		if canon, hit := l.occupations[phrase]; hit {
			return n, canon, true
		}
	}
	return 0, "", false
}

// StartsOccupation reports whether the token opens at least one alias
// phrase. The tokenizer uses this as its cheap cue; MatchOccupation stays
// authoritative for the actual split.
func (l *Lexicon) StartsOccupation(tok string) bool {
	_, ok := l.occFirst[NormalizeKey(tok)]
	return ok
}

// IsDitto reports whether the token is a ditto glyph. Comparison is exact:
// glyphs carry no case and their punctuation is the point.
func (l *Lexicon) IsDitto(tok string) bool {
	_, ok := l.ditto[tok]
	return ok
}

// ResidenceType maps a residence marker token (h, house, bds, res) to its
// residence kind.
func (l *Lexicon) ResidenceType(tok string) (string, bool) {
	kind, ok := l.residence[NormalizeKey(tok)]
	return kind, ok
}

// IsStreetSuffix reports whether the token is a known street suffix.
func (l *Lexicon) IsStreetSuffix(tok string) bool {
	_, ok := l.suffixes[NormalizeKey(tok)]
	return ok
}

// IsDirectional reports whether the token is a compass directional.
func (l *Lexicon) IsDirectional(tok string) bool {
	_, ok := l.directionals[NormalizeKey(tok)]
	return ok
}

// MaxOccupationTokens returns the longest alias phrase length, in tokens.
func (l *Lexicon) MaxOccupationTokens() int {
	return l.maxTokens
}
