// Package report produces the static comparison chart: the response
// distribution of one survey question, one panel per grouping value.
package report

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"enefviz/adapters/chart"
	"enefviz/adapters/tabular"
	"enefviz/domain/catalog"
	"enefviz/domain/core"
	"enefviz/domain/run"
	"enefviz/domain/survey"
	"enefviz/internal"
	"enefviz/internal/errors"
	"enefviz/ports"
)

// Request describes one report run
type Request struct {
	Source         ports.TableSource
	Sentinel       float64
	GroupColumn    string
	ResponseColumn string
	OutputDir      string
	Format         chart.Format
	// Workbook also writes the frequency table as an xlsx file
	Workbook bool
}

// Frame is the in-memory result of the load, normalize and cross-tabulate stages
type Frame struct {
	Rows        int
	Missing     int
	Frequencies *survey.FrequencyTable
	Chart       chart.MirroredBars
}

// Result lists the files a run produced
type Result struct {
	Manifest     *run.Manifest
	ChartPath    string
	ManifestPath string
	WorkbookPath string
	Frequencies  *survey.FrequencyTable
}

// Service runs the static report pipeline. It holds no per-run state.
type Service struct {
	catalog *catalog.Catalog
	logger  *internal.Logger
	now     func() time.Time
}

// NewService creates a report service labelling charts from the catalogue
func NewService(c *catalog.Catalog) *Service {
	return &Service{
		catalog: c,
		logger:  internal.NewComponentLogger("ReportService"),
		now:     time.Now,
	}
}

// Build loads the source, recodes the sentinel to missing and cross-tabulates
// the two columns.
func (s *Service) Build(ctx context.Context, src ports.TableSource, sentinel float64, groupColumn, responseColumn string) (*Frame, error) {
	if src == nil {
		return nil, errors.InvalidInput("no survey file configured")
	}

	table, err := src.ReadTable()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", src.Path())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	missingBefore := table.CountAbsent()
	table = survey.NormalizeMissing(table, sentinel)
	s.logger.Info("Recoded %d sentinel cells (%v) to missing", table.CountAbsent()-missingBefore, sentinel)

	ft, err := survey.CrossTab(table, groupColumn, responseColumn)
	if err != nil {
		return nil, err
	}
	if ft.IsEmpty() {
		return nil, errors.InvalidInput("no row has both " + groupColumn + " and " + responseColumn)
	}
	s.logger.Info("Cross-tabulated %s x %s: %d groups, %d categories, %d rows excluded",
		groupColumn, responseColumn, len(ft.Groups), len(ft.Categories), ft.Excluded)

	bars := chart.MirroredBarsFromTable(ft, s.catalog.VariableOrDefault(groupColumn), s.catalog.VariableOrDefault(responseColumn))
	bars.Title = s.catalog.Report.Title
	if s.catalog.Source != "" {
		bars.Source = "Source : " + s.catalog.Source
	}

	return &Frame{
		Rows:        table.Len(),
		Missing:     table.CountAbsent(),
		Frequencies: ft,
		Chart:       bars,
	}, nil
}

// Render builds the frame and writes only the chart
func (s *Service) Render(ctx context.Context, w io.Writer, req Request) error {
	frame, err := s.Build(ctx, req.Source, req.Sentinel, req.GroupColumn, req.ResponseColumn)
	if err != nil {
		return err
	}
	return chart.RenderMirroredBars(w, frame.Chart, req.Format)
}

// Generate runs the whole pipeline and writes the chart, the optional
// workbook and the manifest into req.OutputDir. Any failure aborts the run.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	started := s.now()
	reportID := core.NewReportID()
	s.logger.Info("Starting report %s", reportID)

	if req.Format == "" {
		req.Format = chart.PNG
	}
	frame, err := s.Build(ctx, req.Source, req.Sentinel, req.GroupColumn, req.ResponseColumn)
	if err != nil {
		return nil, err
	}

	inputHash, err := core.HashFile(req.Source.Path())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to hash %s", req.Source.Path())
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", req.OutputDir)
	}
	base := filepath.Join(req.OutputDir, "report-"+reportID.String())
	result := &Result{
		ChartPath:    base + "." + string(req.Format),
		ManifestPath: base + ".manifest.json",
		Frequencies:  frame.Frequencies,
	}

	var buf bytes.Buffer
	renderStart := time.Now()
	if err := chart.RenderMirroredBars(&buf, frame.Chart, req.Format); err != nil {
		return nil, err
	}
	if err := os.WriteFile(result.ChartPath, buf.Bytes(), 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write chart %s", result.ChartPath)
	}
	s.logger.Info("Chart written to %s in %.2fms", result.ChartPath, float64(time.Since(renderStart).Nanoseconds())/1e6)
	outputs := []string{filepath.Base(result.ChartPath)}

	if req.Workbook {
		result.WorkbookPath = base + ".xlsx"
		group := s.catalog.VariableOrDefault(req.GroupColumn)
		response := s.catalog.VariableOrDefault(req.ResponseColumn)
		if err := tabular.WriteFrequencyWorkbook(result.WorkbookPath, frame.Frequencies, group, response); err != nil {
			return nil, err
		}
		outputs = append(outputs, filepath.Base(result.WorkbookPath))
	}

	manifest := &run.Manifest{
		ReportID:     reportID,
		InputFile:    req.Source.Path(),
		Rows:         frame.Rows,
		MissingCells: frame.Missing,
		EligibleRows: frame.Frequencies.Eligible,
		ExcludedRows: frame.Frequencies.Excluded,
		Groups:       keys(frame.Frequencies.Groups),
		Categories:   categoryKeys(frame.Frequencies.Categories),
		Outputs:      outputs,
		Fingerprint:  run.NewFingerprint(inputHash, req.Sentinel, req.GroupColumn, req.ResponseColumn, run.CodeVersion),
		StartedAt:    started,
	}
	manifest.Complete(s.now())
	if err := manifest.Write(result.ManifestPath); err != nil {
		return nil, err
	}
	result.Manifest = manifest

	s.logger.Info("Report %s done (%s, input %s)", reportID, strings.Join(outputs, ", "), inputHash.Short())
	return result, nil
}

func keys(groups []survey.Distribution) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Group.Key
	}
	return out
}

func categoryKeys(cats []survey.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Key
	}
	return out
}
