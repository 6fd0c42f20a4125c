package constants

import "strings"

// SourceFormats holds the allowed values for the source format of a page scan.
var SourceFormats = []string{"PDF", "IMAGE"}

// AllowedExtensions holds the default allowed file extensions for scan ingestion.
// jp2 is accepted but requires an external converter (see ingest.ConvertToPNG).
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"tif":  {},
	"tiff": {},
	"bmp":  {},
	"jp2":  {},
}

// ConvertExtensions holds extensions the Go decoders cannot read directly;
// these go through the external converter before OCR.
var ConvertExtensions = map[string]struct{}{
	"jp2": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FormatForExt maps a normalized extension to its source format.
func FormatForExt(ext string) string {
	if NormalizeExt(ext) == "pdf" {
		return "PDF"
	}
	return "IMAGE"
}

// IsAllowedExt reports whether the extension (with or without dot) is ingestible.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
