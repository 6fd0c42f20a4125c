package entity

// SkippedLine represents a line the parser declined, kept for diagnostics.
type SkippedLine struct {
	LineNo int    `json:"line_no"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// PageOutcome represents the result of processing a single page scan.
type PageOutcome struct {
	Source        string        `json:"source"`
	PageNo        int           `json:"page_no"`
	Year          string        `json:"year,omitempty"`
	Records       []Record      `json:"records"`
	Skipped       []SkippedLine `json:"skipped,omitempty"`
	OCRConfidence float32       `json:"ocr_confidence,omitempty"`
	OCRVariant    string        `json:"ocr_variant,omitempty"`
}
