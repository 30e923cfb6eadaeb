package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireColumns(t *testing.T) {
	table := &Table{Columns: []string{"character_id", "zh_cn"}}

	t.Run("all present", func(t *testing.T) {
		assert.NoError(t, table.RequireColumns("character_id", "zh_cn"))
	})

	t.Run("lists every missing column", func(t *testing.T) {
		err := table.RequireColumns("character_id", "id_id", "en_us")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "id_id")
		assert.Contains(t, err.Error(), "en_us")
		assert.NotContains(t, err.Error(), "character_id")
	})
}

func TestEnsureColumn(t *testing.T) {
	table := &Table{Columns: []string{"a"}, Rows: [][]string{{"x"}}}

	assert.Equal(t, 0, table.EnsureColumn("a"), "existing column keeps its index")

	idx := table.EnsureColumn("b")
	assert.Equal(t, 1, idx)
	assert.Equal(t, []string{"a", "b"}, table.Columns)

	// Rows stay ragged until written; Get guards.
	assert.Equal(t, "", table.Get(0, idx))
	table.Set(0, idx, "y")
	assert.Equal(t, "y", table.Get(0, idx))
}

func TestGetSetBounds(t *testing.T) {
	table := &Table{Columns: []string{"a"}, Rows: [][]string{{"x"}}}

	assert.Equal(t, "", table.Get(5, 0))
	assert.Equal(t, "", table.Get(0, 5))
	assert.Equal(t, "", table.Get(-1, 0))

	table.Set(5, 0, "ignored") // out of range, no-op
	assert.Equal(t, 1, table.Len())
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path   string
		format Format
	}{
		{"dialog.xlsx", FormatExcel},
		{"DIALOG.XLSX", FormatExcel},
		{"macro.xlsm", FormatExcel},
		{"dialog.csv", FormatCSV},
		{"dialog.tsv", FormatCSV},
		{"noext", FormatCSV},
	}
	for _, c := range cases {
		got, err := DetectFormat(c.path)
		require.NoError(t, err, c.path)
		assert.Equal(t, c.format, got, c.path)
	}

	t.Run("legacy xls rejected", func(t *testing.T) {
		_, err := DetectFormat("old.xls")
		assert.Error(t, err)
	})
}
