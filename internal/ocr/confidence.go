package ocr

import (
	"strings"
	"unicode"
)

// heuristicConfidence scores recognized text on directory-page signals:
// mostly letters, column-width lines, house numbers present. Used when no
// word-level confidence is available.
func heuristicConfidence(txt string) float32 {
	trimmed := strings.TrimSpace(txt)
	if trimmed == "" {
		return 0
	}
	score := float32(0.2) // base

	var letters, digits, total int
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	if total > 0 && float64(letters)/float64(total) >= 0.6 {
		score += 0.25
	}
	if digits > 0 {
		score += 0.15
	}

	if mean := meanLineLength(trimmed); mean >= 10 && mean <= 90 {
		score += 0.2
	}
	if len(trimmed) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func meanLineLength(txt string) float64 {
	var sum, n int
	for _, ln := range strings.Split(txt, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		sum += len(ln)
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
