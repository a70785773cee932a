package models

// Cell is a single textual value of a dumped table. Null marks SQL NULL.
type Cell struct {
	Value string
	Null  bool
}

// Table is the full content of a database table.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Cell
}
