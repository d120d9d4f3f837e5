package store

import (
	"fmt"
	"slices"

	"github.com/calvinalkan/crm/internal/schema"
)

// Table is an in-memory snapshot of the backing file.
//
// It is disposable: nothing writes a Table back except [Store.Append], which
// reloads from disk first. The zero value is an empty table with no columns,
// which is what [Store.Load] returns before any data exists.
type Table struct {
	Columns []string   // Columns is the header row.
	Rows    [][]string // Rows holds one value per column, in insertion order.
}

// NewTable returns an empty table with the given header.
func NewTable(columns []string) *Table {
	return &Table{Columns: slices.Clone(columns)}
}

// Len returns the number of rows. A nil table has zero rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.Rows)
}

// Index returns the position of col in the header, or -1.
func (t *Table) Index(col string) int {
	if t == nil {
		return -1
	}

	return slices.Index(t.Columns, col)
}

// Value returns the value of col in row i, or "" when col is not a column.
func (t *Table) Value(i int, col string) string {
	idx := t.Index(col)
	if idx < 0 || idx >= len(t.Rows[i]) {
		return ""
	}

	return t.Rows[i][idx]
}


// Records converts the rows to records. The table must carry the schema header;
// an empty table with no columns yields no records.
func (t *Table) Records() ([]schema.Record, error) {
	if t == nil || (len(t.Rows) == 0 && len(t.Columns) == 0) {
		return nil, nil
	}

	if !schema.IsHeader(t.Columns) {
		return nil, fmt.Errorf("records: %w: %q", ErrHeaderMismatch, t.Columns)
	}

	out := make([]schema.Record, 0, len(t.Rows))

	for i, row := range t.Rows {
		rec, err := schema.RecordFromValues(row)
		if err != nil {
			return nil, fmt.Errorf("records: row %d: %w", i+1, err)
		}

		out = append(out, rec)
	}

	return out, nil
}
