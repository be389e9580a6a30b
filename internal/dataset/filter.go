package dataset

// Filter is a set of column -> value equality constraints applied to raw
// cells before feature building. Empty values and unknown columns are
// ignored rather than rejected.
type Filter map[string]string

// Apply returns a new dataset holding only the rows matching every
// constraint. A nil or empty filter returns the input unchanged.
func (f Filter) Apply(d *Dataset) *Dataset {
	if len(f) == 0 {
		return d
	}

	active := make(map[int]string)
	for col, want := range f {
		if want == "" {
			continue
		}
		if i := d.ColumnIndex(col); i >= 0 {
			active[i] = want
		}
	}
	if len(active) == 0 {
		return d
	}

	var rows [][]string
	for _, row := range d.Rows {
		match := true
		for i, want := range active {
			var got string
			if i < len(row) {
				got = row[i]
			}
			if got != want {
				match = false
				break
			}
		}
		if match {
			rows = append(rows, row)
		}
	}

	return New(d.Columns, rows)
}
