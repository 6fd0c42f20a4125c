package parse

import (
	"strings"
	"unicode"

	"github.com/kwheaton/canvass/internal/lexicon"
	"github.com/kwheaton/canvass/internal/ner"
)

// LocationRecognizer reports street spans inside candidate text. The
// extractor uses the spans to refine a pattern match; it never turns a
// span alone into an address.
type LocationRecognizer interface {
	Recognize(s string) []ner.Entity
}

// Address is the extractor's result. Residence holds the normalized
// residence kind (home, boards) when a marker prefixed the address; the
// marker itself never appears in Text.
type Address struct {
	Text      string
	Residence string
}

// AddressExtractor pulls a street address out of a candidate segment. A
// match needs an anchor: a leading residence marker, a house number
// adjacent to a word, or a street suffix closing the segment. Unanchored
// word runs stay unassigned.
type AddressExtractor struct {
	lex *lexicon.Lexicon
	rec LocationRecognizer
}

// NewAddressExtractor builds an extractor. A nil lexicon uses the embedded
// defaults; a nil recognizer disables span refinement.
func NewAddressExtractor(lex *lexicon.Lexicon, rec LocationRecognizer) *AddressExtractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &AddressExtractor{lex: lex, rec: rec}
}

// Extract attempts the pattern match on text. ok is false when no anchor
// is present; the caller keeps the segment unassigned in that case.
func (e *AddressExtractor) Extract(text string) (Address, bool) {
	toks := splitSpans(text)
	if len(toks) == 0 {
		return Address{}, false
	}

	residence := ""
	if kind, ok := e.markerKind(toks[0].text); ok {
		residence = kind
		toks = toks[1:]
		if len(toks) == 0 {
			// Marker with nothing after it: the residence kind is still
			// worth keeping on the record.
			return Address{Residence: residence}, true
		}
	}
	// Everything left of base is stripped marker; refinement must not
	// reach back into it.
	base := toks[0].start
	sub := text[base:]

	start, ok := e.anchorIndex(toks)
	if !ok {
		if residence != "" {
			// The marker anchors by itself: everything after it is the
			// address ("h Main St e s").
			return Address{Text: cleanAddress(sub), Residence: residence}, true
		}
		return Address{}, false
	}

	startByte := toks[start].start
	endByte := toks[len(toks)-1].end
	if e.rec != nil {
		startByte, endByte = e.refine(sub, base, startByte, endByte)
	}
	return Address{Text: cleanAddress(text[startByte:endByte]), Residence: residence}, true
}

// markerKind matches a lowercase residence marker token.
func (e *AddressExtractor) markerKind(tok string) (string, bool) {
	if tok == "" || !unicode.IsLower(rune(tok[0])) {
		return "", false
	}
	return e.lex.ResidenceType(tok)
}

// anchorIndex finds the token the address starts at: the first house
// number followed by a word, a fused digits+letters token, or the word
// before a closing street suffix.
func (e *AddressExtractor) anchorIndex(toks []span) (int, bool) {
	for i := 0; i < len(toks); i++ {
		if isHouseNumberToken(toks[i].text) && i+1 < len(toks) && isWordToken(toks[i+1].text) {
			return i, true
		}
		if isFusedAddressToken(toks[i].text) {
			return i, true
		}
	}
	for i := 1; i < len(toks); i++ {
		if !e.lex.IsStreetSuffix(toks[i].text) || e.lex.IsStreetSuffix(toks[i-1].text) || !isWordToken(toks[i-1].text) {
			continue
		}
		rest := toks[i+1:]
		tailOK := true
		for _, t := range rest {
			if !e.lex.IsDirectional(t.text) {
				tailOK = false
				break
			}
		}
		if tailOK {
			return i - 1, true
		}
	}
	return 0, false
}

// refine adjusts the matched span using recognized street entities that
// overlap it. Overlapping spans may pull the start left (multi-word street
// names the anchor scan cut short) and move the end to the recognized
// boundary (dropping trailing noise). Without an overlap the pattern match
// stands untouched. sub is the candidate text from byte offset base on;
// entity offsets are relative to sub.
func (e *AddressExtractor) refine(sub string, base, startByte, endByte int) (int, int) {
	newStart, newEnd := startByte, endByte
	overlapped := false
	for _, ent := range e.rec.Recognize(sub) {
		s, en := ent.Start+base, ent.End+base
		if en <= startByte || s >= endByte {
			continue
		}
		if !overlapped {
			newEnd = en
			overlapped = true
		} else if en > newEnd {
			newEnd = en
		}
		if s < newStart {
			newStart = s
		}
	}
	if !overlapped {
		return startByte, endByte
	}
	return newStart, newEnd
}

// cleanAddress trims stray punctuation the OCR leaves on segment edges.
func cleanAddress(s string) string {
	return strings.Trim(s, " ,.;:")
}
