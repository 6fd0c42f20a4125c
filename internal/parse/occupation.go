package parse

import (
	"strings"

	"github.com/kwheaton/canvass/internal/lexicon"
)

// Classifier resolves an occupation segment against the lexicon. It is
// authoritative over the tokenizer's cue: the cue only says a dictionary
// phrase starts here, the classifier decides how much it consumes.
type Classifier struct {
	lex *lexicon.Lexicon
}

// NewClassifier builds a Classifier. A nil lexicon uses the embedded
// defaults.
func NewClassifier(lex *lexicon.Lexicon) *Classifier {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Classifier{lex: lex}
}

// Classify matches the longest alias phrase at the start of the segment.
// Matching is case-insensitive and ignores token punctuation. remainder is
// the unconsumed tail, returned so the address extractor can try it; when
// no alias matches, the whole text comes back as remainder and the segment
// stays unassigned.
func (c *Classifier) Classify(text string) (canonical, remainder string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", "", false
	}
	consumed, canon, ok := c.lex.MatchOccupation(fields)
	if !ok {
		return "", text, false
	}
	return canon, strings.Join(fields[consumed:], " "), true
}
