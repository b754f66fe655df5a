package dashboard

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"enefviz/adapters/chart"
	"enefviz/adapters/tabular"
	"enefviz/domain/catalog"
	apperrors "enefviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trendCSV = "date,vague,INTEURST,INDPART\n" +
	"2023-06-20,Vague 1,52.1,41.0\n" +
	"2024-04-15,Vague 6,56.9,44.9\n"

const sexeCSV = ",SEXEST,CERTST3,pct,n,unweighted_n,VAGUE\n" +
	"0,1,1,51.25,800,790,2023-06-20\n" +
	"1,2,1,48.5,820,830,2023-06-20\n" +
	"2,1,1,53.0,810,805,2024-04-15\n" +
	"3,2,1,50.2,815,812,2024-04-15\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newDashboard(t *testing.T) *Dashboard {
	t.Helper()
	dir := t.TempDir()
	trend := writeFile(t, dir, "onglet_2.csv", trendCSV)
	writeFile(t, dir, "T_certst3_sexest.csv", sexeCSV)

	c, err := catalog.Default()
	require.NoError(t, err)

	d, err := New(context.Background(), c, Options{
		TrendSource:   tabular.NewDataReader(trend, tabular.Options{}),
		DateColumn:    "date",
		LabelColumn:   "vague",
		DefaultSeries: "INTEURST",
		CrossesDir:    dir,
		Open:          tabular.Opener(','),
	})
	require.NoError(t, err)
	return d
}

func TestTrend_SelectionFlow(t *testing.T) {
	d := newDashboard(t)

	view, err := d.Trend("")
	require.NoError(t, err)
	assert.Equal(t, "INTEURST", view.Selected)
	assert.Equal(t, []float64{52.1, 56.9}, view.Series.Values())
	assert.Len(t, view.Options, 2)

	view, err = d.Trend("INDPART")
	require.NoError(t, err)
	assert.Equal(t, "INDPART", view.Selected)
	assert.Equal(t, view.Option.Label, view.Series.Name)

	_, err = d.Trend("Y3CERT")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	view, err = d.Trend("")
	require.NoError(t, err)
	assert.Equal(t, "INDPART", view.Selected, "a rejected selection keeps the last valid one")
}

func TestTrendFor_SessionsAreIndependent(t *testing.T) {
	d := newDashboard(t)

	view, err := d.TrendFor("visitor-a", "INDPART")
	require.NoError(t, err)
	assert.Equal(t, "INDPART", view.Selected)

	view, err = d.TrendFor("visitor-b", "")
	require.NoError(t, err)
	assert.Equal(t, "INTEURST", view.Selected, "a new session starts on the default")

	view, err = d.TrendFor("visitor-a", "")
	require.NoError(t, err)
	assert.Equal(t, "INDPART", view.Selected)

	view, err = d.Trend("")
	require.NoError(t, err)
	assert.Equal(t, "INTEURST", view.Selected, "sessions leave the process selection alone")
}

func TestNew_SingleWave(t *testing.T) {
	dir := t.TempDir()
	trend := writeFile(t, dir, "onglet_2.csv", `date,vague,INTEURST,INDPART
2024-04-15,Vague 6,56.9,44.9
`)
	writeFile(t, dir, "T_certst3_sexest.csv", `,SEXEST,CERTST3,pct,VAGUE
0,1,1,51.2,2023-06-20
1,2,1,48.5,2023-06-20
`)

	c, err := catalog.Default()
	require.NoError(t, err)
	d, err := New(context.Background(), c, Options{
		TrendSource:   tabular.NewDataReader(trend, tabular.Options{}),
		DateColumn:    "date",
		LabelColumn:   "vague",
		DefaultSeries: "INTEURST",
		CrossesDir:    dir,
		Open:          tabular.Opener(','),
	})
	require.NoError(t, err, "a one-wave trend file still renders at startup")

	var buf bytes.Buffer
	require.NoError(t, d.RenderTrend(&buf, "INDPART", chart.SVG))
	buf.Reset()
	require.NoError(t, d.RenderCrosses(&buf, "SEXEST", chart.PNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRenderTrend(t *testing.T) {
	d := newDashboard(t)

	var buf bytes.Buffer
	require.NoError(t, d.RenderTrend(&buf, "INDPART", chart.PNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestCrosses_MissingFilesDisableOptions(t *testing.T) {
	d := newDashboard(t)

	options := d.CrossOptions()
	require.Len(t, options, len(d.Catalog().CrossVariables()))
	available := 0
	for _, o := range options {
		if o.Available {
			available++
			assert.Equal(t, "SEXEST", o.Variable.Code)
		}
	}
	assert.Equal(t, 1, available)

	view, err := d.Crosses("")
	require.NoError(t, err)
	assert.Equal(t, "SEXEST", view.Variable.Code)
	assert.Equal(t, "Certitude d'aller voter en fonction du genre", view.Title)
	require.Len(t, view.Series, 2)
	assert.Equal(t, "Homme", view.Series[0].Name)
	assert.Equal(t, []float64{51.25, 53.0}, view.Series[0].Values())

	_, err = d.Crosses("agerst")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	_, err = d.Crosses("Y3SEXE")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestRenderCrosses(t *testing.T) {
	d := newDashboard(t)

	var buf bytes.Buffer
	require.NoError(t, d.RenderCrosses(&buf, "sexest", chart.SVG))
	assert.Contains(t, buf.String(), "<svg")
}

func TestNew_Errors(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	dir := t.TempDir()

	_, err = New(context.Background(), c, Options{DefaultSeries: "INTEURST"})
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	_, err = New(context.Background(), c, Options{
		TrendSource:   tabular.NewDataReader(filepath.Join(dir, "absent.csv"), tabular.Options{}),
		DefaultSeries: "INTEURST",
	})
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	trend := writeFile(t, dir, "onglet_2.csv", trendCSV)
	_, err = New(context.Background(), c, Options{
		TrendSource:   tabular.NewDataReader(trend, tabular.Options{}),
		DateColumn:    "date",
		LabelColumn:   "vague",
		DefaultSeries: "Y3CERT",
	})
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	writeFile(t, dir, "T_certst3_agerst.csv", ",AGERST,pct\n0,1,50\n")
	_, err = New(context.Background(), c, Options{
		TrendSource:   tabular.NewDataReader(trend, tabular.Options{}),
		DateColumn:    "date",
		LabelColumn:   "vague",
		DefaultSeries: "INTEURST",
		CrossesDir:    dir,
		Open:          tabular.Opener(','),
	})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err), "a malformed cross file fails startup")
}
