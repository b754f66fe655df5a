package survey

import (
	"math"
	"strconv"
	"strings"

	"enefviz/internal/errors"
)

// Value is a single cell. Absent marks a missing observation; Raw is kept
// as read so non-numeric categories survive untouched.
type Value struct {
	Raw    string
	Absent bool
}

// Present wraps a raw cell value
func Present(raw string) Value {
	return Value{Raw: raw}
}

// Missing is the explicit absent marker
func Missing() Value {
	return Value{Absent: true}
}

// naSpellings are the cell texts read as missing, the same set pandas
// treats as NA by default
var naSpellings = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true,
	"-1.#IND": true, "-1.#QNAN": true, "-NaN": true, "-nan": true,
	"1.#IND": true, "1.#QNAN": true, "<NA>": true, "N/A": true,
	"NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true, "<nil>": true,
}

// ParseCell turns raw file text into a cell; NA spellings become absent
func ParseCell(raw string) Value {
	raw = strings.TrimSpace(raw)
	if naSpellings[raw] {
		return Missing()
	}
	return Present(raw)
}

// Number parses the cell as a finite float. Absent, NaN and infinite
// cells never parse.
func (v Value) Number() (float64, bool) {
	if v.Absent {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsMissing reports whether the cell holds no observation: absent, or a
// present cell whose text is a NaN
func (v Value) IsMissing() bool {
	if v.Absent {
		return true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Raw), 64)
	return err == nil && math.IsNaN(f)
}

func (v Value) String() string {
	if v.Absent {
		return "NA"
	}
	return v.Raw
}

// Table is a header plus rows of cells, one row per respondent
type Table struct {
	Columns []string
	Rows    [][]Value
}

// NewTable builds a table, padding short rows with absent cells
func NewTable(columns []string, rows [][]Value) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	t.Rows = make([][]Value, len(rows))
	for i, row := range rows {
		cells := make([]Value, len(columns))
		for j := range cells {
			if j < len(row) {
				cells[j] = row[j]
			} else {
				cells[j] = Missing()
			}
		}
		t.Rows[i] = cells
	}
	return t
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex resolves a column name to its position
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, col := range t.Columns {
		if col == name {
			return i, nil
		}
	}
	return -1, errors.InvalidInput("column " + strconv.Quote(name) + " not found in table")
}

// Column returns a copy of the named column's cells
func (t *Table) Column(name string) ([]Value, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// DropColumnAt returns a new table without the column at idx
func (t *Table) DropColumnAt(idx int) (*Table, error) {
	if idx < 0 || idx >= len(t.Columns) {
		return nil, errors.InvalidInput("column index " + strconv.Itoa(idx) + " out of range")
	}

	columns := make([]string, 0, len(t.Columns)-1)
	columns = append(columns, t.Columns[:idx]...)
	columns = append(columns, t.Columns[idx+1:]...)

	rows := make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]Value, 0, len(row)-1)
		cells = append(cells, row[:idx]...)
		cells = append(cells, row[idx+1:]...)
		rows[i] = cells
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

// CountAbsent reports how many cells are absent, for load diagnostics
func (t *Table) CountAbsent() int {
	n := 0
	for _, row := range t.Rows {
		for _, v := range row {
			if v.Absent {
				n++
			}
		}
	}
	return n
}
