package series

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"enefviz/domain/survey"
	"enefviz/internal/errors"
)

// TrendDataset is the wide wave-level file: one row per wave with a date,
// a display label and one column per selectable indicator.
type TrendDataset struct {
	series map[string]Series
	keys   []string
}

// NewTrendDataset extracts the given value columns from a wave table.
// A row whose date does not parse fails the whole load; absent values only
// leave a gap in their own series.
func NewTrendDataset(t *survey.Table, dateColumn, labelColumn string, valueColumns []string) (*TrendDataset, error) {
	dateIdx, err := t.ColumnIndex(dateColumn)
	if err != nil {
		return nil, err
	}
	labelIdx, err := t.ColumnIndex(labelColumn)
	if err != nil {
		return nil, err
	}

	ds := &TrendDataset{series: make(map[string]Series, len(valueColumns))}
	for _, col := range valueColumns {
		idx, err := t.ColumnIndex(col)
		if err != nil {
			return nil, err
		}

		s := Series{Key: col, Name: col}
		for rowNum, row := range t.Rows {
			date, err := parseDate(row[dateIdx], rowNum)
			if err != nil {
				return nil, err
			}
			v, ok := row[idx].Number()
			if !ok {
				continue
			}
			label := row[labelIdx].Raw
			if row[labelIdx].Absent {
				label = MonthLabel(date)
			}
			s.Points = append(s.Points, Point{Date: date, Label: label, Value: v})
		}
		sortPoints(s.Points)

		ds.series[col] = s
		ds.keys = append(ds.keys, col)
	}
	return ds, nil
}

// Series returns the points of one indicator
func (d *TrendDataset) Series(key string) (Series, error) {
	s, ok := d.series[key]
	if !ok {
		return Series{}, errors.NotFound(fmt.Sprintf("series %q", key))
	}
	return s, nil
}

// Keys lists the indicators in load order
func (d *TrendDataset) Keys() []string {
	return append([]string(nil), d.keys...)
}

// GroupedSeries splits a long table (one row per wave and modality) into one
// series per modality, ordered by modality code.
func GroupedSeries(t *survey.Table, groupColumn, valueColumn, dateColumn string) ([]Series, error) {
	groupIdx, err := t.ColumnIndex(groupColumn)
	if err != nil {
		return nil, err
	}
	valueIdx, err := t.ColumnIndex(valueColumn)
	if err != nil {
		return nil, err
	}
	dateIdx, err := t.ColumnIndex(dateColumn)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[string]*Series)
	var categories []survey.Category
	for rowNum, row := range t.Rows {
		if row[groupIdx].IsMissing() {
			continue
		}
		v, ok := row[valueIdx].Number()
		if !ok {
			continue
		}
		date, err := parseDate(row[dateIdx], rowNum)
		if err != nil {
			return nil, err
		}

		cat := survey.CategoryOf(row[groupIdx])
		s, exists := byGroup[cat.Key]
		if !exists {
			s = &Series{Key: cat.Key, Name: cat.Key}
			byGroup[cat.Key] = s
			categories = append(categories, cat)
		}
		s.Points = append(s.Points, Point{Date: date, Label: MonthLabel(date), Value: v})
	}

	sortCategories(categories)
	out := make([]Series, 0, len(categories))
	for _, c := range categories {
		s := byGroup[c.Key]
		sortPoints(s.Points)
		out = append(out, *s)
	}
	return out, nil
}

func sortCategories(cats []survey.Category) {
	sort.Slice(cats, func(i, j int) bool { return cats[i].Less(cats[j]) })
}

func parseDate(v survey.Value, rowNum int) (time.Time, error) {
	if v.Absent {
		return time.Time{}, errors.DataFormat(fmt.Sprintf("row %d: missing wave date", rowNum+1))
	}
	date, err := time.Parse(DateLayout, strings.TrimSpace(v.Raw))
	if err != nil {
		return time.Time{}, errors.WithCode(errors.CodeDataFormat, errors.Wrapf(err, "row %d: invalid wave date %q", rowNum+1, v.Raw))
	}
	return date, nil
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// MonthLabel formats a wave date as "avril 2024"
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", frenchMonths[t.Month()-1], t.Year())
}
