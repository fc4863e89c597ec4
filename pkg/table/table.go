// Package table provides the in-memory tabular model the fusion core
// operates on: an ordered set of named columns over rows of string cells.
// Cells hold strings only; extractors quote everything on the way in and
// the spreadsheet boundary re-quotes on the way out.
package table

import (
	"sort"
	"strings"
)

// Source tags where a raw record came from.
type Source string

// Known record sources.
const (
	SourceOCRQR  Source = "OCR_QR"
	SourceScrape Source = "SCRAPE"
	SourceExcel  Source = "EXCEL_OPERATOR"
)

// Row maps column name to cell value. Missing columns read as "".
type Row map[string]string

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered-column collection of rows. Column order is
// deterministic: first registration wins, and columns discovered together
// (from one row's unregistered keys) are registered alphabetically.
type Table struct {
	columns []string
	colSet  map[string]struct{}
	rows    []Row
}

// New creates a table with the given initial column order.
func New(columns ...string) *Table {
	t := &Table{colSet: make(map[string]struct{})}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Columns returns a copy of the current column order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the column is registered.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colSet[name]
	return ok
}

// AddColumn registers a column at the end of the order. No-op if present.
func (t *Table) AddColumn(name string) {
	if name == "" || t.HasColumn(name) {
		return
	}
	t.columns = append(t.columns, name)
	t.colSet[name] = struct{}{}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return len(t.rows) == 0
}

// Append adds a row, registering any columns the table has not seen yet.
// Unregistered keys within one row are added in alphabetical order so the
// resulting column order does not depend on map iteration.
func (t *Table) Append(row Row) {
	var fresh []string
	for k := range row {
		if !t.HasColumn(k) {
			fresh = append(fresh, k)
		}
	}
	sort.Strings(fresh)
	for _, k := range fresh {
		t.AddColumn(k)
	}
	t.rows = append(t.rows, row)
}

// Row returns the i-th row. The returned map is live; mutations stick.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Get returns the cell at (row, column), "" if absent.
func (t *Table) Get(i int, column string) string {
	return t.rows[i][column]
}

// Set writes the cell at (row, column), registering the column if needed.
func (t *Table) Set(i int, column, value string) {
	t.AddColumn(column)
	t.rows[i][column] = value
}

// DropColumns removes columns from the order and from every row.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := t.columns[:0]
	for _, c := range t.columns {
		if _, gone := drop[c]; gone {
			delete(t.colSet, c)
			continue
		}
		kept = append(kept, c)
	}
	t.columns = kept
	for _, row := range t.rows {
		for n := range drop {
			delete(row, n)
		}
	}
}

// Reindex replaces the column order with the given one, registering columns
// the table did not have. Cells for newly introduced columns read as "".
// Existing columns absent from the new order are dropped.
func (t *Table) Reindex(columns []string) {
	keep := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		keep[c] = struct{}{}
	}
	for _, c := range t.Columns() {
		if _, ok := keep[c]; !ok {
			t.DropColumns(c)
		}
	}
	t.columns = t.columns[:0]
	t.colSet = make(map[string]struct{}, len(columns))
	for _, c := range columns {
		t.AddColumn(c)
	}
}

// MoveToFront moves a column to the head of the order, registering it first
// if needed.
func (t *Table) MoveToFront(name string) {
	t.AddColumn(name)
	out := make([]string, 0, len(t.columns))
	out = append(out, name)
	for _, c := range t.columns {
		if c != name {
			out = append(out, c)
		}
	}
	t.columns = out
}

// RemoveRow deletes the i-th row.
func (t *Table) RemoveRow(i int) {
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
}

// SortBy stable-sorts rows by the given columns in order.
func (t *Table) SortBy(columns ...string) {
	sort.SliceStable(t.rows, func(i, j int) bool {
		for _, c := range columns {
			a, b := t.rows[i][c], t.rows[j][c]
			if a != b {
				return a < b
			}
		}
		return false
	})
}

// Transform applies fn to every cell in place.
func (t *Table) Transform(fn func(string) string) {
	for _, row := range t.rows {
		for k, v := range row {
			row[k] = fn(v)
		}
	}
}

// AppendTable concatenates another table's rows (and columns) onto this one.
func (t *Table) AppendTable(other *Table) {
	for _, c := range other.Columns() {
		t.AddColumn(c)
	}
	for _, row := range other.rows {
		t.rows = append(t.rows, row.Clone())
	}
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	out := New(t.columns...)
	for _, row := range t.rows {
		out.rows = append(out.rows, row.Clone())
	}
	return out
}

// Values returns the rows rendered against the current column order, for
// handoff to tabular writers. Every row has exactly one cell per column.
func (t *Table) Values() [][]string {
	out := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		rendered := make([]string, len(t.columns))
		for i, c := range t.columns {
			rendered[i] = row[c]
		}
		out = append(out, rendered)
	}
	return out
}

// NonEmpty reports whether any cell of the row holds a non-blank value.
func (r Row) NonEmpty() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
