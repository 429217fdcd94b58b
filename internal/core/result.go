package core

import "fmt"

// ResultTable is a fully materialized query result: an ordered column list
// and ordered rows. Cache entries hold complete tables only; a table is
// never stored partially built. Tables are read-only once constructed.
type ResultTable struct {
	Columns []string
	Rows    [][]interface{}
}

// Empty reports whether the table has no data rows.
func (t *ResultTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Grid is the spreadsheet-facing return shape: a two-dimensional array,
// header row first, expanded into cells by the host application.
type Grid [][]interface{}

// Grid renders the table as header row + data rows.
func (t *ResultTable) Grid() Grid {
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	g := make(Grid, 0, len(t.Rows)+1)
	g = append(g, header)
	for _, row := range t.Rows {
		g = append(g, row)
	}
	return g
}

// MessageGrid builds the one-row diagnostic shape used for validation
// failures, store errors and empty results.
func MessageGrid(format string, args ...interface{}) Grid {
	return Grid{{fmt.Sprintf(format, args...)}}
}
