package survey

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Category is one level of a categorical variable. Key is the canonical
// spelling ("1" for both "1" and "1.0"); Code orders numeric levels.
type Category struct {
	Key     string  `json:"key"`
	Code    float64 `json:"code"`
	Numeric bool    `json:"numeric"`
}

// CategoryOf derives the category of a present cell
func CategoryOf(v Value) Category {
	if n, ok := v.Number(); ok {
		return Category{Key: strconv.FormatFloat(n, 'f', -1, 64), Code: n, Numeric: true}
	}
	return Category{Key: strings.TrimSpace(v.Raw)}
}

// Less orders numeric codes ascending, then non-numeric keys lexically
func (c Category) Less(o Category) bool {
	switch {
	case c.Numeric && o.Numeric:
		return c.Code < o.Code
	case c.Numeric != o.Numeric:
		return c.Numeric
	default:
		return c.Key < o.Key
	}
}

// Distribution is the response profile of one grouping value
type Distribution struct {
	Group      Category   `json:"group"`
	Categories []Category `json:"categories"`
	Shares     []float64  `json:"shares"`
	Counts     []int      `json:"counts"`
	Total      int        `json:"total"`
}

// Share returns the proportion of a category, zero when unobserved
func (d Distribution) Share(key string) float64 {
	for i, c := range d.Categories {
		if c.Key == key {
			return d.Shares[i]
		}
	}
	return 0
}

// Count returns the raw count of a category, zero when unobserved
func (d Distribution) Count(key string) int {
	for i, c := range d.Categories {
		if c.Key == key {
			return d.Counts[i]
		}
	}
	return 0
}

// Sum adds up the shares; 1 for any non-empty distribution
func (d Distribution) Sum() float64 {
	return floats.Sum(d.Shares)
}

// FrequencyTable is a row-normalized cross-tabulation. It is built once and
// never mutated.
type FrequencyTable struct {
	GroupColumn    string         `json:"group_column"`
	ResponseColumn string         `json:"response_column"`
	Categories     []Category     `json:"categories"`
	Groups         []Distribution `json:"groups"`
	Eligible       int            `json:"eligible_rows"`
	Excluded       int            `json:"excluded_rows"`
}

// IsEmpty reports whether no row was eligible
func (f *FrequencyTable) IsEmpty() bool {
	return len(f.Groups) == 0
}

// Distribution looks up a grouping value by key
func (f *FrequencyTable) Distribution(groupKey string) (Distribution, bool) {
	for _, d := range f.Groups {
		if d.Group.Key == groupKey {
			return d, true
		}
	}
	return Distribution{}, false
}

// Proportion returns the share of category within group, zero if either is unknown
func (f *FrequencyTable) Proportion(groupKey, categoryKey string) float64 {
	d, ok := f.Distribution(groupKey)
	if !ok {
		return 0
	}
	return d.Share(categoryKey)
}

// Count returns the raw count behind a proportion
func (f *FrequencyTable) Count(groupKey, categoryKey string) int {
	d, ok := f.Distribution(groupKey)
	if !ok {
		return 0
	}
	return d.Count(categoryKey)
}

// Mapping flattens the table into group key → category key → proportion
func (f *FrequencyTable) Mapping() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(f.Groups))
	for _, d := range f.Groups {
		inner := make(map[string]float64, len(d.Categories))
		for i, c := range d.Categories {
			inner[c.Key] = d.Shares[i]
		}
		out[d.Group.Key] = inner
	}
	return out
}

// CrossTab counts (group, response) pairs and normalizes each group's counts
// to proportions. Rows missing in either column are skipped, so a grouping
// value with no eligible rows never appears in the result.
func CrossTab(t *Table, groupColumn, responseColumn string) (*FrequencyTable, error) {
	ft := &FrequencyTable{GroupColumn: groupColumn, ResponseColumn: responseColumn}
	if t == nil {
		return ft, nil
	}

	gIdx, err := t.ColumnIndex(groupColumn)
	if err != nil {
		return nil, err
	}
	rIdx, err := t.ColumnIndex(responseColumn)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]Category)
	categories := make(map[string]Category)
	counts := make(map[string]map[string]int)

	for _, row := range t.Rows {
		g, r := row[gIdx], row[rIdx]
		if g.IsMissing() || r.IsMissing() {
			ft.Excluded++
			continue
		}
		gc, rc := CategoryOf(g), CategoryOf(r)
		groups[gc.Key] = gc
		categories[rc.Key] = rc
		if counts[gc.Key] == nil {
			counts[gc.Key] = make(map[string]int)
		}
		counts[gc.Key][rc.Key]++
		ft.Eligible++
	}

	ft.Categories = sortedCategories(categories)

	for _, gc := range sortedCategories(groups) {
		d := Distribution{Group: gc}
		for _, rc := range ft.Categories {
			n, ok := counts[gc.Key][rc.Key]
			if !ok {
				continue
			}
			d.Categories = append(d.Categories, rc)
			d.Counts = append(d.Counts, n)
			d.Shares = append(d.Shares, float64(n))
			d.Total += n
		}
		if d.Total == 0 {
			continue
		}
		floats.Scale(1/float64(d.Total), d.Shares)
		ft.Groups = append(ft.Groups, d)
	}

	return ft, nil
}

func sortedCategories(set map[string]Category) []Category {
	out := make([]Category, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
