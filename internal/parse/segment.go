// Package parse turns one OCR'd directory line into one structured record.
//
// The stages run in a fixed order: Normalize cleans the raw text, the
// Tokenizer cuts it into labeled segments, the occupation Classifier and
// the AddressExtractor resolve the middle and trailing segments, and the
// NameSplitter resolves the leading one against the carry-forward state.
// Assembly never fails on partial extraction; unknown fields stay empty.
package parse

// RawLine is one line of OCR output addressed by its position on the page.
type RawLine struct {
	Text   string
	LineNo int
}

// NormalizedLine carries cleaned text plus provenance back to the raw line.
// Text is trimmed, single-spaced and glyph-folded; empty Text marks a line
// with no content worth parsing.
type NormalizedLine struct {
	Text   string
	Raw    string
	LineNo int
}

// IsEmpty reports whether nothing parseable survived normalization.
func (n NormalizedLine) IsEmpty() bool {
	return n.Text == ""
}

// Label classifies a tokenizer segment.
type Label int

const (
	LabelName       Label = iota // leading segment, surname and given name
	LabelOccupation              // middle segment opened by a dictionary cue
	LabelAddress                 // trailing segment opened by an address cue
)

var labelNames = [...]string{
	LabelName:       "name",
	LabelOccupation: "occupation",
	LabelAddress:    "address",
}

func (l Label) String() string {
	if int(l) >= 0 && int(l) < len(labelNames) {
		return labelNames[l]
	}
	return "unknown"
}

// Segment is a labeled, contiguous slice of a normalized line. Start and
// End are byte offsets into the normalized text, so Text ==
// line.Text[Start:End] and segments never overlap.
type Segment struct {
	Label Label
	Text  string
	Start int
	End   int
}
