package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"rostergen/internal/roster"
)

// XLSX writes one district as a single workbook with six sheets.
type XLSX struct{}

// Export creates dir if needed and writes district.xlsx with one sheet per
// collection, mirroring the CSV column layout.
func (XLSX) Export(dir string, ds *roster.Dataset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, t := range tables(ds) {
		if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.Name, err)
		}
		if err := setRow(f, t.Name, 1, t.Header); err != nil {
			return err
		}
		for i, row := range t.Rows {
			if err := setRow(f, t.Name, i+2, row); err != nil {
				return err
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	path := filepath.Join(dir, "district.xlsx")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, n int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, n, err)
	}
	return nil
}
