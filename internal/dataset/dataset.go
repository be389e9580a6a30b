package dataset

// Dataset is an immutable tabular dataset as uploaded: named columns and
// raw string cells. Typing and coercion happen downstream (validator,
// record conversion), never here.
type Dataset struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// New creates a dataset from columns and rows.
func New(columns []string, rows [][]string) *Dataset {
	d := &Dataset{Columns: columns, Rows: rows}
	d.buildIndex()
	return d
}

func (d *Dataset) buildIndex() {
	d.index = make(map[string]int, len(d.Columns))
	for i, col := range d.Columns {
		// First occurrence wins on duplicate headers.
		if _, exists := d.index[col]; !exists {
			d.index[col] = i
		}
	}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// HasColumn reports whether the dataset carries the named column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

// Cell returns the raw cell at (row, column name). Missing columns and
// short rows read as the empty string.
func (d *Dataset) Cell(row int, name string) string {
	i, ok := d.index[name]
	if !ok || row < 0 || row >= len(d.Rows) || i >= len(d.Rows[row]) {
		return ""
	}
	return d.Rows[row][i]
}

// Column returns a copy of the named column's cells, or nil if absent.
func (d *Dataset) Column(name string) []string {
	i, ok := d.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(d.Rows))
	for r, row := range d.Rows {
		if i < len(row) {
			out[r] = row[i]
		}
	}
	return out
}
