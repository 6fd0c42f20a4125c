// Package export renders parsed directory records as CSV, XLSX and
// console tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kwheaton/canvass/internal/entity"
)

// CSVHeader is the fixed header row of CSV exports. Downstream tooling
// keys on these exact column names.
var CSVHeader = []string{"last", "first", "occupation", "home_addr"}

// WriteCSV writes the core fields of records to w. Partial records are
// written as-is; empty fields stay empty.
func WriteCSV(w io.Writer, records []*entity.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Surname, rec.GivenName, rec.Occupation, rec.HomeAddress}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to path, creating parent directories as
// needed.
func WriteCSVFile(path string, records []*entity.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
