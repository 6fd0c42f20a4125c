// Package ner recognizes street-address spans in directory text using
// rule-based pattern matching over the lexicon's street vocabulary.
//
// Each entity is returned with byte offsets satisfying the invariant
// s[e.Start:e.End] == e.Text. Recognition is deterministic: no trained
// model, no scoring, only vocabulary and token shape. The address
// extractor uses these spans to refine a pattern match; spans never
// create an address on their own.
package ner

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/kwheaton/canvass/internal/lexicon"
)

// EntityType classifies a recognized span.
type EntityType int

const (
	StreetAddress EntityType = iota // house number followed by street words
	StreetName                      // street words ending in a known suffix, no number
)

// entityTypeNames maps EntityType values to their string names.
var entityTypeNames = [...]string{
	StreetAddress: "StreetAddress",
	StreetName:    "StreetName",
}

// String returns the name of the entity type.
func (t EntityType) String() string {
	if int(t) >= 0 && int(t) < len(entityTypeNames) {
		return entityTypeNames[t]
	}
	return fmt.Sprintf("EntityType(%d)", int(t))
}

// MarshalJSON encodes the entity type as a JSON string.
func (t EntityType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Entity represents a recognized span with its position in the source text.
type Entity struct {
	Text  string     `json:"text"`
	Start int        `json:"start"` // byte offset, inclusive
	End   int        `json:"end"`   // byte offset, exclusive
	Type  EntityType `json:"type"`
}

// String returns a debug representation, e.g. StreetAddress("123 Main st")[8:19].
func (e Entity) String() string {
	return fmt.Sprintf("%s(%q)[%d:%d]", e.Type, e.Text, e.Start, e.End)
}

// maxInputBytes is the maximum input length Recognize will process.
// Inputs exceeding this are returned with no results.
const maxInputBytes = 1 << 20 // 1 MiB

// maxSpanTokens caps how many tokens one address span may absorb.
const maxSpanTokens = 7

// Recognizer finds street spans using a lexicon's suffix and directional
// tables. Safe for concurrent use; it holds no mutable state.
type Recognizer struct {
	lex *lexicon.Lexicon
}

// New returns a Recognizer over the given lexicon. A nil lexicon uses the
// embedded defaults.
func New(lex *lexicon.Lexicon) *Recognizer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Recognizer{lex: lex}
}

// Recognize extracts street spans from s, sorted by Start offset.
// Overlapping candidates resolve in favor of the earlier, longer span.
func (r *Recognizer) Recognize(s string) []Entity {
	if s == "" || len(s) > maxInputBytes {
		return nil
	}
	toks := splitTokens(s)
	var out []Entity
	for i := 0; i < len(toks); {
		if ent, next, ok := r.spanAt(s, toks, i); ok {
			out = append(out, ent)
			i = next
			continue
		}
		i++
	}
	return out
}

// spanAt tries to anchor a span at token i. It returns the entity and the
// index of the first token past it.
func (r *Recognizer) spanAt(s string, toks []token, i int) (Entity, int, bool) {
	switch {
	case isHouseNumber(toks[i].text):
		// Number must be followed by at least one street word.
		if i+1 >= len(toks) || !isWord(toks[i+1].text) {
			return Entity{}, 0, false
		}
		end := r.extendStreet(toks, i+1)
		return makeEntity(s, toks, i, end, StreetAddress), end, true
	case isWord(toks[i].text) && !r.lex.IsStreetSuffix(toks[i].text) && !r.lex.IsDirectional(toks[i].text):
		// Bare street name: needs a known suffix within reach.
		end := r.extendStreet(toks, i)
		if !r.sawSuffix(toks, i, end) {
			return Entity{}, 0, false
		}
		return makeEntity(s, toks, i, end, StreetName), end, true
	}
	return Entity{}, 0, false
}

// extendStreet walks forward over street words from index start and returns
// the exclusive token end. It stops after the suffix and any trailing
// directionals ("4th st s e").
func (r *Recognizer) extendStreet(toks []token, start int) int {
	end := start
	suffixSeen := false
	for end < len(toks) && end-start < maxSpanTokens {
		t := toks[end].text
		switch {
		case r.lex.IsStreetSuffix(t):
			suffixSeen = true
			end++
		case r.lex.IsDirectional(t):
			end++
		case !suffixSeen && isWord(t):
			end++
		default:
			return end
		}
		if suffixSeen && (end >= len(toks) || !r.lex.IsDirectional(toks[end].text)) {
			return end
		}
	}
	return end
}

// sawSuffix reports whether any token in [start, end) is a street suffix.
func (r *Recognizer) sawSuffix(toks []token, start, end int) bool {
	for _, t := range toks[start:end] {
		if r.lex.IsStreetSuffix(t.text) {
			return true
		}
	}
	return false
}

func makeEntity(s string, toks []token, start, end int, typ EntityType) Entity {
	b := toks[start].start
	e := toks[end-1].end
	return Entity{Text: s[b:e], Start: b, End: e, Type: typ}
}

// token is a whitespace-delimited slice of the input with byte offsets.
type token struct {
	text  string
	start int
	end   int
}

// splitTokens is strings.Fields with byte offsets retained.
func splitTokens(s string) []token {
	var toks []token
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, token{text: s[start:i], start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, token{text: s[start:], start: start, end: len(s)})
	}
	return toks
}

// isHouseNumber accepts 1 to 5 digits with an optional trailing fraction
// or letter unit ("123", "123½", "12a").
func isHouseNumber(tok string) bool {
	tok = strings.TrimRight(tok, ",;")
	if tok == "" || tok[0] < '0' || tok[0] > '9' {
		return false
	}
	runes := []rune(tok)
	digits := 0
	for i, r := range runes {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case i == len(runes)-1 && (r == '½' || unicode.IsLetter(r)):
			// unit suffix
		default:
			return false
		}
	}
	return digits >= 1 && digits <= 5
}

// isWord accepts tokens that begin with a letter ("Main", "4th" fails here
// but is caught by ordinal below).
func isWord(tok string) bool {
	tok = strings.TrimRight(tok, ",;.")
	if tok == "" {
		return false
	}
	for i, r := range tok {
		if i == 0 {
			if unicode.IsLetter(r) {
				continue
			}
			// ordinal street names: 4th, 2d, 3d
			if r >= '0' && r <= '9' && hasOrdinalTail(tok) {
				continue
			}
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

// hasOrdinalTail reports a digit run followed by a short letter tail
// ("4th", "23d", "2nd").
func hasOrdinalTail(tok string) bool {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	tail := tok[i:]
	if i == 0 || tail == "" || len(tail) > 3 {
		return false
	}
	for _, r := range tail {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
