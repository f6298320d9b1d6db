// Package dataset holds raw tabular records in memory and moves them between
// CSV, line-delimited JSON and JSON documents on disk.
package dataset

import "maps"

// Row is one record keyed by column name. A missing key is a null cell.
type Row map[string]string

// Get returns the cell value and whether it is present.
func (r Row) Get(col string) (string, bool) {
	v, ok := r[col]
	return v, ok
}

// First returns the first present value among cols.
func (r Row) First(cols ...string) (string, bool) {
	for _, c := range cols {
		if v, ok := r[c]; ok {
			return v, true
		}
	}
	return "", false
}

// Set stores v, or clears the cell when ok is false.
func (r Row) Set(col, v string, ok bool) {
	if !ok {
		delete(r, col)
		return
	}
	r[col] = v
}

func (r Row) Clone() Row {
	return maps.Clone(r)
}

// Table is a header plus its rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// Filter returns the rows for which keep reports true.
func (t Table) Filter(keep func(Row) bool) []Row {
	var out []Row
	for _, r := range t.Rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
