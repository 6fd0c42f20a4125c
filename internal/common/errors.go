// Package common holds the error sentinels shared across the module.
package common

import "errors"

// Common application errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrOCRUnavailable    = errors.New("ocr backend unavailable")
	ErrDatabase          = errors.New("database error")
)
