package export

import (
	"github.com/xuri/excelize/v2"

	"github.com/kwheaton/canvass/internal/entity"
)

const sheetName = "Records"

// BuildXLSX renders records into an XLSX workbook and returns its bytes.
// Unlike the CSV export it carries the supplemental columns too, so a
// reviewer can check a parse against the page it came from.
func BuildXLSX(records []*entity.Record) ([]byte, error) {
	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(sheetName); index == -1 {
		if _, err := f.NewSheet(sheetName); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Surname",
		"Given Name",
		"Occupation",
		"Home Address",
		"Residence",
		"Spouse",
		"Carried",
		"Year",
		"Page",
		"Line",
		"Source",
		"Raw Line",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}

		carried := ""
		if r.SurnameCarried {
			carried = "yes"
		}

		write(1, r.Surname)
		write(2, r.GivenName)
		write(3, r.Occupation)
		write(4, r.HomeAddress)
		write(5, r.ResidenceType)
		write(6, r.SpouseName)
		write(7, carried)
		write(8, r.Year)
		write(9, r.PageNo)
		write(10, r.LineNo)
		write(11, r.Source)
		write(12, truncate(r.Raw, 140))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheetName, "A", "B", 16) // names
	_ = f.SetColWidth(sheetName, "C", "C", 22) // occupation
	_ = f.SetColWidth(sheetName, "D", "D", 32) // address
	_ = f.SetColWidth(sheetName, "E", "F", 14) // residence, spouse
	_ = f.SetColWidth(sheetName, "G", "J", 8)  // carried, year, page, line
	_ = f.SetColWidth(sheetName, "K", "K", 28) // source
	_ = f.SetColWidth(sheetName, "L", "L", 60) // raw

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
