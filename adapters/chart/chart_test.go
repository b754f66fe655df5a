package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"enefviz/domain/catalog"
	"enefviz/domain/series"
	"enefviz/domain/survey"
	apperrors "enefviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func frequencyTable(t *testing.T) *survey.FrequencyTable {
	t.Helper()
	rows := [][]survey.Value{
		{survey.Present("1"), survey.Present("10")},
		{survey.Present("1"), survey.Present("9")},
		{survey.Present("2"), survey.Present("10")},
		{survey.Present("2"), survey.Present("10")},
		{survey.Present("2"), survey.Missing()},
	}
	ft, err := survey.CrossTab(survey.NewTable([]string{"Y3SEXE", "Y3CERT"}, rows), "Y3SEXE", "Y3CERT")
	require.NoError(t, err)
	return ft
}

func TestMirroredBarsFromTable(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	bars := MirroredBarsFromTable(frequencyTable(t), c.VariableOrDefault("Y3SEXE"), c.VariableOrDefault("Y3CERT"))
	require.Len(t, bars.Categories, 2)
	require.Len(t, bars.Panels, 2)
	assert.Equal(t, "Homme", bars.Panels[0].Name)
	assert.Equal(t, "Femme", bars.Panels[1].Name)
	assert.Equal(t, []float64{0.5, 0.5}, bars.Panels[0].Shares)
	assert.Equal(t, []float64{0, 1}, bars.Panels[1].Shares, "unobserved categories still get a zero bar")
}

func TestRenderMirroredBars(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	bars := MirroredBarsFromTable(frequencyTable(t), c.VariableOrDefault("Y3SEXE"), c.VariableOrDefault("Y3CERT"))
	bars.Title = "Certitude d'aller voter selon le genre"
	bars.Source = "Source : Enquête électorale française"

	var png bytes.Buffer
	require.NoError(t, RenderMirroredBars(&png, bars, PNG))
	assert.True(t, bytes.HasPrefix(png.Bytes(), pngSignature))

	var svg bytes.Buffer
	require.NoError(t, RenderMirroredBars(&svg, bars, SVG))
	assert.Contains(t, svg.String(), "<svg")
}

func TestRenderMirroredBars_Rejects(t *testing.T) {
	var buf bytes.Buffer
	err := RenderMirroredBars(&buf, MirroredBars{}, PNG)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	err = RenderMirroredBars(&buf, MirroredBars{
		Categories: []string{"a", "b"},
		Panels:     []BarPanel{{Name: "x", Shares: []float64{1}}},
	}, PNG)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	assert.Zero(t, buf.Len())
}

func wave(day string, label string, v float64) series.Point {
	d, _ := time.Parse(series.DateLayout, day)
	return series.Point{Date: d, Label: label, Value: v}
}

func TestRenderLines(t *testing.T) {
	lines := Lines{
		Title:  "Intérêt pour les élections européennes",
		YLabel: "Pourcentage de répondants (%)",
		YRange: []float64{30, 70},
		Series: []series.Series{{
			Key:  "INTEURST",
			Name: "Intérêt",
			Points: []series.Point{
				wave("2023-06-20", "Vague 1", 52.1),
				wave("2024-04-15", "Vague 6", 56.9),
			},
		}},
		Annotate: true,
	}

	var png bytes.Buffer
	require.NoError(t, RenderLines(&png, lines, PNG))
	assert.True(t, bytes.HasPrefix(png.Bytes(), pngSignature))

	var svg bytes.Buffer
	require.NoError(t, RenderLines(&svg, lines, SVG))
	assert.True(t, strings.Contains(svg.String(), "<svg"))
}

func TestRenderLines_SingleWave(t *testing.T) {
	lines := Lines{Series: []series.Series{{
		Key:    "INDPART",
		Name:   "Participation",
		Points: []series.Point{wave("2024-04-15", "Vague 6", 44.9)},
	}}}

	var buf bytes.Buffer
	require.NoError(t, RenderLines(&buf, lines, PNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngSignature))
}

func TestRenderLines_SingleWaveSeveralSeries(t *testing.T) {
	lines := Lines{
		YRange:   []float64{0, 100},
		Annotate: true,
		Series: []series.Series{
			{Key: "1", Name: "Homme", Points: []series.Point{wave("2023-06-20", "juin 2023", 51.2)}},
			{Key: "2", Name: "Femme", Points: []series.Point{wave("2023-06-20", "juin 2023", 48.5)}},
		},
	}

	var svg bytes.Buffer
	require.NoError(t, RenderLines(&svg, lines, SVG))
	assert.Contains(t, svg.String(), "juin 2023")
}

func TestRenderLines_Rejects(t *testing.T) {
	var buf bytes.Buffer
	err := RenderLines(&buf, Lines{Series: []series.Series{{Key: "empty"}}}, PNG)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	lines := Lines{
		YRange: []float64{70, 30},
		Series: []series.Series{{Key: "A", Points: []series.Point{wave("2024-04-15", "V6", 1)}}},
	}
	err = RenderLines(&buf, lines, PNG)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)

	f, err = FormatFromPath("out/report.SVG")
	require.NoError(t, err)
	assert.Equal(t, SVG, f)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	_, err = ParseFormat("gif")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}
