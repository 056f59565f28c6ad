// Package dataset obtains the gym exercise dataset from Kaggle and
// exposes it as an in-memory table. Downloads are cached on disk so
// repeated loads are cheap; the most recently loaded table is held for
// the lifetime of the Provider.
package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
)

// Table is a column-oriented view over the dataset CSV. Cells are kept
// as raw strings; RowMap performs numeric coercion on the way out.
type Table struct {
	Columns []string
	Rows    [][]string

	colIndex map[string]int
}

// ParseCSV reads a CSV document into a Table. The first record is the
// header; column names are lower-cased for probing.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{colIndex: map[string]int{}}, nil
	}

	header := records[0]
	columns := make([]string, len(header))
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		columns[i] = normalized
		colIndex[normalized] = i
	}

	return &Table{
		Columns:  columns,
		Rows:     records[1:],
		colIndex: colIndex,
	}, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column resolves the first candidate column name that exists in the
// table. "No match" is a first-class outcome: ok is false and callers
// skip the dimension entirely.
func (t *Table) Column(candidates ...string) (string, bool) {
	for _, name := range candidates {
		if _, exists := t.colIndex[name]; exists {
			return name, true
		}
	}
	return "", false
}

// Cell returns the raw cell for a row/column pair, or "" when the row
// is ragged and the column is missing.
func (t *Table) Cell(row int, column string) string {
	idx, ok := t.colIndex[column]
	if !ok || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}

// RowMap converts a row to a JSON-representable mapping. Empty cells
// and non-finite numeric sentinels are omitted rather than emitted as
// null/NaN; numeric-looking cells become plain numbers.
func (t *Table) RowMap(row int) map[string]any {
	out := make(map[string]any, len(t.Columns))
	for _, col := range t.Columns {
		cell := strings.TrimSpace(t.Cell(row, col))
		if cell == "" || isNaNSentinel(cell) {
			continue
		}
		out[col] = coerceCell(cell)
	}
	return out
}

func isNaNSentinel(cell string) bool {
	switch strings.ToLower(cell) {
	case "nan", "null", "none", "n/a", "na":
		return true
	}
	return false
}

// coerceCell turns numeric-looking cells into plain int/float values.
// Non-finite parses fall back to the original string so the result
// stays serializable.
func coerceCell(cell string) any {
	if n, err := strconv.Atoi(cell); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return cell
		}
		return f
	}
	return cell
}
