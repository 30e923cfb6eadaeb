package sheet

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the on-disk representation of a table.
type Format int

const (
	// FormatCSV is delimited UTF-8 text (comma, semicolon or tab separated).
	FormatCSV Format = iota
	// FormatExcel is the XLSX spreadsheet binary.
	FormatExcel
)

// DetectFormat infers the table format from the path's extension.
// Legacy .xls binaries are rejected explicitly rather than misread as text.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatExcel, nil
	case ".xls":
		return 0, fmt.Errorf("legacy .xls format is not supported, convert %s to .xlsx or .csv", filepath.Base(path))
	default:
		return FormatCSV, nil
	}
}
