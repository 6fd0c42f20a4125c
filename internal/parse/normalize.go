package parse

import (
	"regexp"
	"strings"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
)

// glyphReplacer folds typography that OCR pulls out of historical type back
// to plain ASCII. Curly double quotes become straight ones so ditto
// detection deals with a single glyph family.
var glyphReplacer = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
	"—", "-",
	"–", "-",
	"―", "-",
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"„", `"`,
)

// Normalize cleans one raw line. Conservative: whitespace runs collapse to
// a single space, glyphs fold to ASCII, and O/0 and l/1 confusions are
// repaired only inside tokens whose character mix makes the reading
// unambiguous. Case is preserved; dictionary lookups downstream are
// case-insensitive. Applying Normalize to its own output changes nothing.
func Normalize(line RawLine) NormalizedLine {
	text := glyphReplacer.Replace(line.Text)
	text = reWhitespace.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if text != "" {
		fields := strings.Split(text, " ")
		for i, f := range fields {
			fields[i] = repairToken(f)
		}
		text = strings.Join(fields, " ")
	}
	return NormalizedLine{Text: text, Raw: line.Text, LineNo: line.LineNo}
}

// repairToken fixes O/0 and l/1 confusions using the token's own character
// mix as context. Digit-dominant tokens read as numbers ("1O3" -> "103");
// letter-dominant tokens read as words ("J0hn" -> "John"). Mixed cases with
// no clear majority are left alone.
func repairToken(tok string) string {
	letters, digits := 0, 0
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case isASCIILetter(r):
			letters++
		}
	}
	if digits == 0 || letters == 0 {
		return tok
	}
	if digits >= letters {
		return repairNumeric(tok)
	}
	return repairWord(tok)
}

// repairNumeric maps letter look-alikes to digits in a number-like token.
func repairNumeric(tok string) string {
	runes := []rune(tok)
	for i, r := range runes {
		switch r {
		case 'O', 'o':
			runes[i] = '0'
		case 'l', 'I':
			runes[i] = '1'
		}
	}
	return string(runes)
}

// repairWord maps a stray zero back to the letter o when it sits between
// letters, or to O when it opens a word ("J0hn" -> "John", "0tis" -> "Otis").
func repairWord(tok string) string {
	runes := []rune(tok)
	for i, r := range runes {
		if r != '0' {
			continue
		}
		prevLetter := i > 0 && isASCIILetter(runes[i-1])
		nextLetter := i+1 < len(runes) && isASCIILetter(runes[i+1])
		switch {
		case prevLetter && nextLetter:
			runes[i] = 'o'
		case i == 0 && nextLetter:
			runes[i] = 'O'
		}
	}
	return string(runes)
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
