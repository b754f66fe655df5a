package series

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"enefviz/domain/survey"
	apperrors "enefviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(columns []string, rows ...[]string) *survey.Table {
	cells := make([][]survey.Value, len(rows))
	for i, raw := range rows {
		row := make([]survey.Value, len(raw))
		for j, s := range raw {
			if s == "" {
				row[j] = survey.Missing()
			} else {
				row[j] = survey.Present(s)
			}
		}
		cells[i] = row
	}
	return survey.NewTable(columns, cells)
}

func trendTable() *survey.Table {
	return table([]string{"date", "vague", "INTEURST", "INDPART"},
		[]string{"2024-04-15", "Vague 6", "56.9", "44.9"},
		[]string{"2023-06-20", "Vague 1", "52.1", ""},
		[]string{"2023-10-10", "", "54.0", "41.3"},
	)
}

func TestNewTrendDataset_OrdersByDate(t *testing.T) {
	ds, err := NewTrendDataset(trendTable(), "date", "vague", []string{"INTEURST", "INDPART"})
	require.NoError(t, err)
	assert.Equal(t, []string{"INTEURST", "INDPART"}, ds.Keys())

	inter, err := ds.Series("INTEURST")
	require.NoError(t, err)
	assert.Equal(t, []float64{52.1, 54.0, 56.9}, inter.Values())
	assert.Equal(t, "Vague 1", inter.Points[0].Label)
	assert.Equal(t, "octobre 2023", inter.Points[1].Label, "missing labels fall back to the month")

	part, err := ds.Series("INDPART")
	require.NoError(t, err)
	assert.Equal(t, 2, part.Len(), "absent values leave a gap")
	last, ok := part.Last()
	require.True(t, ok)
	assert.Equal(t, 44.9, last.Value)

	_, err = ds.Series("CERT")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestNewTrendDataset_Errors(t *testing.T) {
	_, err := NewTrendDataset(trendTable(), "date", "vague", []string{"INTEURST", "MISSING"})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	bad := table([]string{"date", "vague", "A"}, []string{"15/04/2024", "V6", "1"})
	_, err = NewTrendDataset(bad, "date", "vague", []string{"A"})
	assert.Equal(t, apperrors.CodeDataFormat, apperrors.GetCode(err))
}

func TestGroupedSeries(t *testing.T) {
	in := table([]string{"SEXEST", "CERTST3", "pct", "VAGUE"},
		[]string{"2", "1", "48.5", "2023-06-20"},
		[]string{"1", "1", "51.25", "2023-06-20"},
		[]string{"1", "1", "53.0", "2024-04-15"},
		[]string{"", "1", "12.0", "2024-04-15"},
		[]string{"2", "1", "", "2024-04-15"},
	)

	out, err := GroupedSeries(in, "SEXEST", "pct", "VAGUE")
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "1", out[0].Key)
	assert.Equal(t, []float64{51.25, 53.0}, out[0].Values())
	assert.Equal(t, "juin 2023", out[0].Points[0].Label)
	assert.Equal(t, "2", out[1].Key)
	assert.Equal(t, 1, out[1].Len())
	assert.Equal(t, time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC), out[1].Dates()[0])
}

func TestSelector(t *testing.T) {
	s, err := NewSelector([]string{"INTEURST", "INDPART"}, "INTEURST")
	require.NoError(t, err)
	assert.Equal(t, "INTEURST", s.Current())

	changed, err := s.Select("INDPART")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "INDPART", s.Current())

	changed, err = s.Select("INDPART")
	require.NoError(t, err)
	assert.False(t, changed, "reselecting the current option is not a change")

	changed, err = s.Select("CERT")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	assert.False(t, changed)
	assert.Equal(t, "INDPART", s.Current(), "rejected selection keeps the previous one")

	got, changed, err := s.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "INDPART", got)
	assert.False(t, changed)

	got, changed, err = s.Resolve(" INTEURST ")
	require.NoError(t, err)
	assert.Equal(t, "INTEURST", got)
	assert.True(t, changed)
}

func TestSelector_ConcurrentChangesCountedOnce(t *testing.T) {
	s, err := NewSelector([]string{"INTEURST", "INDPART"}, "INTEURST")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var changes atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if changed, err := s.Select("INDPART"); err == nil && changed {
				changes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), changes.Load())
	assert.Equal(t, "INDPART", s.Current())
}

func TestNewSelector_Rejects(t *testing.T) {
	_, err := NewSelector([]string{"A"}, "A")
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	_, err = NewSelector([]string{"A", "A"}, "A")
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	_, err = NewSelector([]string{"A", "B"}, "C")
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}
