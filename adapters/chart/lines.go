package chart

import (
	"fmt"
	"io"
	"sort"
	"time"

	"enefviz/domain/series"
	"enefviz/internal/errors"
	"enefviz/internal/metrics"

	"github.com/montanaflynn/stats"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var lineColors = []drawing.Color{
	drawing.ColorFromHex("636EFA"),
	drawing.ColorFromHex("EF553B"),
	drawing.ColorFromHex("00CC96"),
	drawing.ColorFromHex("AB63FA"),
	drawing.ColorFromHex("FFA15A"),
	drawing.ColorFromHex("19D3F3"),
	drawing.ColorFromHex("FF6692"),
	drawing.ColorFromHex("B6E880"),
}

// Lines is the input of a date-indexed line chart
type Lines struct {
	Title  string
	XLabel string
	YLabel string
	Series []series.Series
	// YRange fixes the y axis as [min, max]; empty means fit to the data
	YRange []float64
	// Annotate writes each point's value next to it
	Annotate bool
	Width    int
	Height   int
}

// RenderLines draws one line per series with one labelled tick per wave date
func RenderLines(w io.Writer, lines Lines, format Format) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRender("lines", start, err) }()

	var all []float64
	ticks := map[int64]gochart.Tick{}
	var plotted []gochart.Series
	var notes []gochart.Value2
	for i, s := range lines.Series {
		if s.Len() == 0 {
			continue
		}
		dates, values := s.Dates(), s.Values()
		for _, p := range s.Points {
			x := gochart.TimeToFloat64(p.Date)
			ticks[p.Date.Unix()] = gochart.Tick{Value: x, Label: p.Label}
			if lines.Annotate {
				notes = append(notes, gochart.Value2{XValue: x, YValue: p.Value, Label: fmt.Sprintf("%.1f", p.Value)})
			}
		}
		all = append(all, values...)

		// go-chart needs two x values per series
		if len(dates) == 1 {
			dates = append(dates, dates[0].Add(time.Second))
			values = append(values, values[0])
		}
		color := lineColors[i%len(lineColors)]
		plotted = append(plotted, gochart.TimeSeries{
			Name:    s.Name,
			XValues: dates,
			YValues: values,
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    4,
			},
		})
	}
	if len(plotted) == 0 {
		return errors.InvalidInput("nothing to plot: every series is empty")
	}
	if len(notes) > 0 {
		plotted = append(plotted, gochart.AnnotationSeries{Annotations: notes})
	}

	yRange, err := lineRange(lines.YRange, all)
	if err != nil {
		return err
	}

	xAxis := gochart.XAxis{Name: lines.XLabel, Ticks: sortedTicks(ticks)}
	if len(ticks) == 1 {
		// go-chart takes the x range from the ticks, so a single wave gets
		// unlabelled ticks half a month either side
		only := xAxis.Ticks[0]
		pad := gochart.TimeToFloat64(time.Unix(0, 0).Add(15*24*time.Hour)) - gochart.TimeToFloat64(time.Unix(0, 0))
		xAxis.Ticks = []gochart.Tick{{Value: only.Value - pad}, only, {Value: only.Value + pad}}
	}

	width, height := lines.Width, lines.Height
	if width == 0 {
		width = 1024
	}
	if height == 0 {
		height = 520
	}
	graph := gochart.Chart{
		Title:  lines.Title,
		Width:  width,
		Height: height,
		Background: gochart.Style{
			FillColor: drawing.Color{R: 248, G: 248, B: 255, A: 255},
			Padding:   gochart.Box{Top: 48, Left: 16, Right: 24, Bottom: 24},
		},
		XAxis:  xAxis,
		YAxis:  gochart.YAxis{Name: lines.YLabel, Range: yRange},
		Series: plotted,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	provider := gochart.PNG
	if format == SVG {
		provider = gochart.SVG
	}
	if err := graph.Render(provider, w); err != nil {
		return errors.RenderError("lines", err)
	}
	return nil
}

// lineRange returns the preset range, or the data extent padded by a tenth
func lineRange(preset, values []float64) (*gochart.ContinuousRange, error) {
	if len(preset) == 2 {
		if preset[0] >= preset[1] {
			return nil, errors.InvalidInput(fmt.Sprintf("y range %v is empty", preset))
		}
		return &gochart.ContinuousRange{Min: preset[0], Max: preset[1]}, nil
	}
	if len(preset) != 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("y range needs two bounds, got %d", len(preset)))
	}
	lo, err := stats.Min(values)
	if err != nil {
		return nil, errors.InvalidInput("no values to scale")
	}
	hi, _ := stats.Max(values)
	pad := (hi - lo) / 10
	if pad == 0 {
		pad = 1
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}, nil
}

func sortedTicks(byDate map[int64]gochart.Tick) []gochart.Tick {
	out := make([]gochart.Tick, 0, len(byDate))
	for _, t := range byDate {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
