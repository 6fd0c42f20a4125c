// Package page turns raw OCR page text into entry lines. It drops page
// furniture (break ornaments, section headers, the directory banner),
// merges wrapped continuations back onto their entry, and pulls the
// directory year out of header text. It runs before the line parser and
// never interprets entry contents.
package page

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kwheaton/canvass/internal/lexicon"
)

// Entry is one merged directory entry with the page line it started on.
type Entry struct {
	Text   string
	LineNo int
}

var (
	// Break ornaments between sections: dash runs, dot leaders, "—o—",
	// "—:0:—".
	reBreakRun = regexp.MustCompile(`^[\s\-–—:.oO0]*[-–—:.][\s\-–—:.oO0]*$`)
	// Section headers are set in full capitals: "ST. ANTHONY.", "B".
	// Digits keep real all-caps entry lines out of this rule.
	reSectionHeader = regexp.MustCompile(`^[A-Z][A-Z .,'&\-]*$`)
	reYear          = regexp.MustCompile(`\b(18|19|20)\d{2}\b`)
)

// Skip reasons reported by SkipLine.
const (
	SkipBlank         = "blank"
	SkipBreakRun      = "page-break"
	SkipSectionHeader = "section-header"
	SkipBanner        = "directory-banner"
)

// SkipLine reports whether the line is page furniture and why. The check
// runs on the raw line; entry lines never consist purely of capitals and
// ornaments once a digit or lowercase letter is present.
func SkipLine(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return SkipBlank, true
	case strings.Contains(strings.ToUpper(trimmed), "CITY DIRECTORY"):
		return SkipBanner, true
	case reBreakRun.MatchString(trimmed):
		return SkipBreakRun, true
	case reSectionHeader.MatchString(trimmed):
		return SkipSectionHeader, true
	}
	return "", false
}

// SegmentEntries splits page text into entries. A line opens a new entry
// when it starts with a capitalized token or a ditto glyph; any other line
// is a wrapped continuation and is appended to the current entry with a
// space. LineNo is the 1-based page line the entry started on.
func SegmentEntries(text string, lex *lexicon.Lexicon) []Entry {
	if lex == nil {
		lex = lexicon.Default()
	}
	var entries []Entry
	var current *Entry
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if _, skip := SkipLine(line); skip {
			continue
		}
		if startsEntry(line, lex) || current == nil {
			if current != nil {
				entries = append(entries, *current)
			}
			current = &Entry{Text: line, LineNo: i + 1}
			continue
		}
		current.Text += " " + line
	}
	if current != nil {
		entries = append(entries, *current)
	}
	return entries
}

// startsEntry reports whether the line opens a new entry.
func startsEntry(line string, lex *lexicon.Lexicon) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	if lex.IsDitto(fields[0]) {
		return true
	}
	return unicode.IsUpper([]rune(fields[0])[0])
}

// ExtractYear returns the first plausible directory year in the text, or
// the empty string. Header text from a top crop works best, but the rule
// tolerates whole-page text.
func ExtractYear(text string) string {
	return reYear.FindString(text)
}
