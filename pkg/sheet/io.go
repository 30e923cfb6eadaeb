package sheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load reads a table from disk, dispatching on the path's extension.
func Load(path string) (*Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatExcel:
		return loadExcel(path)
	default:
		return loadCSV(path)
	}
}

// Save writes a table to disk, dispatching on the path's extension. The
// output directory is created if needed.
func Save(t *Table, path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch format {
	case FormatExcel:
		return saveExcel(t, path)
	default:
		return saveCSV(t, path)
	}
}

func loadCSV(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := strings.TrimPrefix(string(data), "\uFEFF")

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

// sniffDelimiter picks the separator that occurs most often in the header
// line, among comma, semicolon and tab. Comma wins ties.
func sniffDelimiter(content string) rune {
	header := content
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		header = content[:i]
	}

	best := ','
	bestCount := strings.Count(header, ",")
	for _, cand := range []rune{';', '\t'} {
		if n := strings.Count(header, string(cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

func saveCSV(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.Rows {
		padded := row
		if len(padded) < len(t.Columns) {
			padded = append(append([]string{}, row...), make([]string, len(t.Columns)-len(row))...)
		}
		if err := w.Write(padded); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func loadExcel(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	return &Table{Columns: rows[0], Rows: rows[1:]}, nil
}

func saveExcel(t *Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(t.Columns))
		for j := range cells {
			if j < len(row) {
				cells[j] = row[j]
			} else {
				cells[j] = ""
			}
		}
		coord, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates for row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheetName, coord, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
