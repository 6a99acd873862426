package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"rostergen/internal/roster"
)

// CSV writes one district as six .csv files in a directory.
type CSV struct{}

// Export creates dir if needed and writes schools.csv, teachers.csv,
// staff.csv, students.csv, sections.csv, and enrollments.csv.
func (CSV) Export(dir string, ds *roster.Dataset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, t := range tables(ds) {
		if err := writeCSV(filepath.Join(dir, t.Name+".csv"), t); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, t table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", t.Name, err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write %s row: %w", t.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", t.Name, err)
	}
	return f.Close()
}
