package survey

// DefaultSentinel is the code the ENEF files use for "no answer"
const DefaultSentinel = 99

// NormalizeMissing returns a copy of t in which every cell whose numeric value
// equals sentinel is absent. Other cells are copied unchanged; t is not modified.
func NormalizeMissing(t *Table, sentinel float64) *Table {
	if t == nil {
		return &Table{}
	}

	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Value, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cells := make([]Value, len(row))
		for j, v := range row {
			if n, ok := v.Number(); ok && n == sentinel {
				cells[j] = Missing()
				continue
			}
			cells[j] = v
		}
		out.Rows[i] = cells
	}
	return out
}
