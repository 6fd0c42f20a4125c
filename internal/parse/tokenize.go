package parse

import (
	"strings"
	"unicode"

	"github.com/kwheaton/canvass/internal/lexicon"
)

// TieBreak decides the split when an occupation cue and an address cue land
// on the same token.
type TieBreak int

const (
	// TieAddress hands the contested token to the address extractor.
	// Street vocabulary is closed and rarely collides, so this is the
	// default.
	TieAddress TieBreak = iota
	// TieOccupation hands it to the occupation classifier; its unmatched
	// remainder still reaches the address extractor.
	TieOccupation
)

// Tokenizer cuts a normalized line into at most three labeled segments:
// leading name, optional occupation opened by a dictionary cue, trailing
// address opened by an address cue. Token 0 is never a cue; that slot
// belongs to the surname even when the surname collides with the
// dictionary (Baker, Porter, Judge).
type Tokenizer struct {
	lex *lexicon.Lexicon
	tie TieBreak
}

// NewTokenizer builds a Tokenizer. A nil lexicon uses the embedded
// defaults.
func NewTokenizer(lex *lexicon.Lexicon, tie TieBreak) *Tokenizer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Tokenizer{lex: lex, tie: tie}
}

// Split produces the segment list for a normalized line. Segments cover
// the cue-to-cue spans in line order; re-splitting the space-joined
// concatenation of the result yields the same boundaries.
func (t *Tokenizer) Split(line NormalizedLine) []Segment {
	toks := splitSpans(line.Text)
	if len(toks) == 0 {
		return nil
	}
	texts := make([]string, len(toks))
	for i, tk := range toks {
		texts[i] = tk.text
	}

	occIdx := t.findOccupationCue(texts)
	addrIdx := t.findAddressCue(toks, texts)

	switch {
	case occIdx < 0 && addrIdx < 0:
		return []Segment{segmentOf(line.Text, toks, 0, len(toks), LabelName)}
	case occIdx >= 0 && (addrIdx < 0 || occIdx < addrIdx):
		segs := []Segment{segmentOf(line.Text, toks, 0, occIdx, LabelName)}
		if addrIdx > occIdx {
			segs = append(segs,
				segmentOf(line.Text, toks, occIdx, addrIdx, LabelOccupation),
				segmentOf(line.Text, toks, addrIdx, len(toks), LabelAddress))
		} else {
			segs = append(segs, segmentOf(line.Text, toks, occIdx, len(toks), LabelOccupation))
		}
		return segs
	case occIdx >= 0 && occIdx == addrIdx && t.tie == TieOccupation:
		return []Segment{
			segmentOf(line.Text, toks, 0, occIdx, LabelName),
			segmentOf(line.Text, toks, occIdx, len(toks), LabelOccupation),
		}
	default:
		return []Segment{
			segmentOf(line.Text, toks, 0, addrIdx, LabelName),
			segmentOf(line.Text, toks, addrIdx, len(toks), LabelAddress),
		}
	}
}

// findOccupationCue returns the first token index from 1 on where the
// classifier would match, or -1. The full phrase match is used rather than
// a first-word test so a lone "carriage" does not cue without its "maker".
func (t *Tokenizer) findOccupationCue(texts []string) int {
	for i := 1; i < len(texts); i++ {
		if !t.lex.StartsOccupation(texts[i]) {
			continue
		}
		if _, _, ok := t.lex.MatchOccupation(texts[i:]); ok {
			return i
		}
	}
	return -1
}

// findAddressCue returns the first token index from 1 on that opens an
// address, or -1. Anchors, in line order: a lowercase residence marker, a
// house number adjacent to a following word, a fused digits+letters token,
// or the word immediately before the first street suffix.
func (t *Tokenizer) findAddressCue(toks []span, texts []string) int {
	for i := 1; i < len(toks); i++ {
		if t.isResidenceMarker(texts[i]) {
			return i
		}
		if isHouseNumberToken(texts[i]) && i+1 < len(toks) && isWordToken(texts[i+1]) {
			return i
		}
		if isFusedAddressToken(texts[i]) {
			return i
		}
	}
	for i := 2; i < len(toks); i++ {
		if !t.lex.IsStreetSuffix(texts[i]) || t.lex.IsStreetSuffix(texts[i-1]) || !isWordToken(texts[i-1]) {
			continue
		}
		// A suffix mid-line followed by ordinary words is more likely a
		// name particle (la, ave as part of a surname) than a street.
		if t.tailIsDirectional(texts[i+1:]) {
			return i - 1
		}
	}
	return -1
}

// tailIsDirectional reports whether every remaining token is a compass
// directional ("4th st s e"). An empty tail qualifies.
func (t *Tokenizer) tailIsDirectional(tail []string) bool {
	for _, tok := range tail {
		if !t.lex.IsDirectional(tok) {
			return false
		}
	}
	return true
}

// isResidenceMarker requires the lowercase form; an uppercase "H." is a
// given-name initial, not a marker.
func (t *Tokenizer) isResidenceMarker(tok string) bool {
	if tok == "" {
		return false
	}
	first := rune(tok[0])
	if !unicode.IsLower(first) {
		return false
	}
	_, ok := t.lex.ResidenceType(tok)
	return ok
}

func segmentOf(text string, toks []span, from, to int, label Label) Segment {
	start := toks[from].start
	end := toks[to-1].end
	return Segment{Label: label, Text: text[start:end], Start: start, End: end}
}

// span is a whitespace-delimited token with byte offsets into the line.
type span struct {
	text  string
	start int
	end   int
}

// splitSpans is strings.Fields with byte offsets retained.
func splitSpans(s string) []span {
	var toks []span
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, span{text: s[start:i], start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, span{text: s[start:], start: start, end: len(s)})
	}
	return toks
}

// isHouseNumberToken accepts 1 to 5 digits with an optional trailing
// fraction or unit letter.
func isHouseNumberToken(tok string) bool {
	tok = strings.TrimRight(tok, ",;.")
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
		default:
			return false
		}
	}
	return digits >= 1 && digits <= 5
}

// isFusedAddressToken catches OCR squeezing the number into the street
// word: "123Main". Ordinals (4th, 2nd) are excluded; as street names they
// are caught by the suffix rule, and alone they are generational suffixes.
func isFusedAddressToken(tok string) bool {
	if isOrdinalToken(tok) {
		return false
	}
	digits := 0
	for digits < len(tok) && tok[digits] >= '0' && tok[digits] <= '9' {
		digits++
	}
	if digits < 1 || digits > 5 || len(tok)-digits < 2 {
		return false
	}
	for _, r := range tok[digits:] {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isWordToken accepts tokens that read as words, including ordinals used
// as street names (4th, 23d).
func isWordToken(tok string) bool {
	tok = strings.TrimRight(tok, ",;.")
	if tok == "" {
		return false
	}
	r := rune(tok[0])
	if unicode.IsLetter(r) {
		return true
	}
	return r >= '0' && r <= '9' && isOrdinalToken(tok)
}

// isOrdinalToken reports a digit run with a short letter tail (4th, 2d).
func isOrdinalToken(tok string) bool {
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
