// Package sheet reads and writes the dialog tables the pipelines operate on.
// Two formats are supported, selected by file extension: delimited text
// (.csv and friends) and the XLSX spreadsheet binary.
package sheet

import (
	"fmt"
	"strings"
)

// Table is an in-memory tabular frame: a header row plus data rows addressed
// by position. Rows may be ragged; Get and Set guard short rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the index of the named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// RequireColumns fails if any of the named columns is absent, listing every
// missing name. Callers validate before doing any work.
func (t *Table) RequireColumns(names ...string) error {
	var missing []string
	for _, name := range names {
		if t.ColumnIndex(name) < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// EnsureColumn returns the index of the named column, appending an empty one
// if it does not exist yet.
func (t *Table) EnsureColumn(name string) int {
	if i := t.ColumnIndex(name); i >= 0 {
		return i
	}
	t.Columns = append(t.Columns, name)
	return len(t.Columns) - 1
}

// Get returns the cell value at (row, col), or "" when the row is shorter
// than col.
func (t *Table) Get(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Set writes the cell value at (row, col), padding the row if needed.
func (t *Table) Set(row, col int, value string) {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return
	}
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][col] = value
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
