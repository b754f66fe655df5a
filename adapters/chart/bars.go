package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"enefviz/domain/catalog"
	"enefviz/domain/survey"
	"enefviz/internal/errors"
	"enefviz/internal/metrics"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

var (
	paperColor  = color.RGBA{R: 248, G: 248, B: 255, A: 255}
	labelColor  = color.RGBA{R: 50, G: 171, B: 96, A: 255}
	sourceColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	panelColors = []color.Color{
		color.RGBA{R: 99, G: 110, B: 250, A: 255},
		color.RGBA{R: 239, G: 85, B: 59, A: 255},
		color.RGBA{R: 0, G: 204, B: 150, A: 255},
		color.RGBA{R: 171, G: 99, B: 250, A: 255},
	}
)

const (
	// labelOffset is the gap, in share units, between a bar end and its label
	labelOffset = 0.02
	margin      = vg.Length(10)
)

// BarPanel holds one grouping value's bars
type BarPanel struct {
	Name   string
	Shares []float64
}

// MirroredBars is the input of the side-by-side bar chart. Categories form
// the shared y axis in ascending code order and every panel carries one
// share per category, in the same order.
type MirroredBars struct {
	Title      string
	Source     string
	Categories []string
	Panels     []BarPanel
	Width      vg.Length
	Height     vg.Length
}

// MirroredBarsFromTable lays a frequency table out as one panel per grouping value
func MirroredBarsFromTable(ft *survey.FrequencyTable, group, response catalog.Variable) MirroredBars {
	bars := MirroredBars{Categories: make([]string, len(ft.Categories))}
	for i, c := range ft.Categories {
		bars.Categories[i] = response.ModalityLabel(c.Key)
	}
	for _, d := range ft.Groups {
		shares := make([]float64, len(ft.Categories))
		for i, c := range ft.Categories {
			shares[i] = d.Share(c.Key)
		}
		bars.Panels = append(bars.Panels, BarPanel{Name: group.ModalityLabel(d.Group.Key), Shares: shares})
	}
	return bars
}

// RenderMirroredBars draws the panels side by side, each bar annotated with
// its share as a percentage.
func RenderMirroredBars(w io.Writer, bars MirroredBars, format Format) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRender("mirrored_bars", start, err) }()

	if len(bars.Categories) == 0 || len(bars.Panels) == 0 {
		return errors.InvalidInput("nothing to plot: frequency table is empty")
	}

	xMax := 0.0
	for _, panel := range bars.Panels {
		if len(panel.Shares) != len(bars.Categories) {
			return errors.InvalidInput(fmt.Sprintf("panel %q has %d shares for %d categories", panel.Name, len(panel.Shares), len(bars.Categories)))
		}
		for _, s := range panel.Shares {
			xMax = math.Max(xMax, s)
		}
	}
	// room for the labels right of the longest bar
	xMax += 0.15

	row := make([]*plot.Plot, len(bars.Panels))
	for i, panel := range bars.Panels {
		p, err := barPanel(panel, bars.Categories, xMax, panelColors[i%len(panelColors)])
		if err != nil {
			return errors.RenderError("mirrored bars", err)
		}
		row[i] = p
	}

	width, height := bars.Width, bars.Height
	if width == 0 {
		width = 12 * vg.Inch
	}
	if height == 0 {
		height = vg.Length(2+0.45*float64(len(bars.Categories))) * vg.Inch
	}

	canvas, out := newCanvas(width, height, format)
	dc := draw.New(canvas)
	dc.SetColor(paperColor)
	dc.Fill(dc.Rectangle.Path())

	var header, footer vg.Length
	titleStyle := row[0].Title.TextStyle
	titleStyle.Font.Size = vg.Points(16)
	titleStyle.XAlign = draw.XLeft
	titleStyle.YAlign = draw.YTop
	if bars.Title != "" {
		header = vg.Points(36)
	}
	sourceStyle := row[0].X.Label.TextStyle
	sourceStyle.Color = sourceColor
	sourceStyle.Font.Size = vg.Points(9)
	sourceStyle.XAlign = draw.XLeft
	sourceStyle.YAlign = draw.YBottom
	if bars.Source != "" {
		footer = vg.Points(24)
	}

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(row),
		PadX:      vg.Millimeter * 6,
		PadTop:    margin,
		PadBottom: margin,
		PadLeft:   margin,
		PadRight:  margin,
	}
	body := draw.Crop(dc, 0, 0, footer, -header)
	canvases := plot.Align([][]*plot.Plot{row}, tiles, body)
	for j, p := range row {
		p.Draw(canvases[0][j])
	}

	if bars.Title != "" {
		dc.FillText(titleStyle, vg.Point{X: dc.Min.X + margin, Y: dc.Max.Y - margin}, bars.Title)
	}
	if bars.Source != "" {
		dc.FillText(sourceStyle, vg.Point{X: dc.Min.X + margin, Y: dc.Min.Y + margin}, bars.Source)
	}

	if _, err := out.WriteTo(w); err != nil {
		return errors.RenderError("mirrored bars", err)
	}
	return nil
}

func barPanel(panel BarPanel, categories []string, xMax float64, fill color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = panel.Name
	p.Title.TextStyle.Font.Size = vg.Points(13)
	p.BackgroundColor = paperColor
	p.X.Min = 0
	p.X.Max = xMax
	p.X.Tick.Marker = percentTicks{}

	bars, err := plotter.NewBarChart(plotter.Values(panel.Shares), vg.Points(16))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = fill
	bars.LineStyle.Width = vg.Length(0)

	grid := plotter.NewGrid()
	grid.Horizontal.Color = nil

	xys := make(plotter.XYs, len(panel.Shares))
	labels := make([]string, len(panel.Shares))
	for i, share := range panel.Shares {
		xys[i] = plotter.XY{X: share + labelOffset, Y: float64(i)}
		labels[i] = survey.PercentLabel(share)
	}
	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].Color = labelColor
		annotations.TextStyle[i].Font.Size = vg.Points(11)
		annotations.TextStyle[i].YAlign = draw.YCenter
	}

	p.Add(grid, bars, annotations)
	p.NominalY(categories...)
	return p, nil
}

// percentTicks labels share axes as whole percentages
type percentTicks struct{}

func (percentTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = fmt.Sprintf("%.0f%%", ticks[i].Value*100)
		}
	}
	return ticks
}

func newCanvas(width, height vg.Length, format Format) (vg.CanvasSizer, io.WriterTo) {
	if format == SVG {
		c := vgsvg.New(width, height)
		return c, c
	}
	c := vgimg.New(width, height)
	return c, vgimg.PngCanvas{Canvas: c}
}
