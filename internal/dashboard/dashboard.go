// Package dashboard serves the interactive views: the two-option trend
// selector and the certainty-to-vote lines by socio-demographic variable.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"enefviz/adapters/chart"
	"enefviz/domain/catalog"
	"enefviz/domain/series"
	"enefviz/internal"
	"enefviz/internal/errors"
	"enefviz/internal/metrics"
	"enefviz/ports"

	"golang.org/x/sync/errgroup"
)

// Cross file columns besides the variable itself
const (
	crossValueColumn = "pct"
	crossDateColumn  = "VAGUE"
	trendSelector    = "trend"
	crossesSelector  = "crosses"
	yAxisLabel       = "Pourcentage de répondants (%)"

	// maxSessions bounds the per-visitor selectors kept in memory
	maxSessions = 10000
)

// Options locates the dashboard inputs
type Options struct {
	TrendSource   ports.TableSource
	DateColumn    string
	LabelColumn   string
	DefaultSeries string
	CrossesDir    string
	Open          ports.TableOpener
}

// Dashboard holds the loaded datasets. Everything but the trend selection is
// read-only after New returns.
type Dashboard struct {
	catalog  *catalog.Catalog
	trend    *series.TrendDataset
	selector *series.Selector
	crosses  map[string][]series.Series
	logger   *internal.Logger

	options       []string
	defaultSeries string
	sessionsMu    sync.Mutex
	sessions      map[string]*series.Selector
}

// CrossOption is one radio entry of the crosses view
type CrossOption struct {
	Variable  catalog.Variable
	Available bool
}

// TrendView is what the trend page shows for one selection
type TrendView struct {
	Selected string
	Option   catalog.TrendOption
	Options  []catalog.TrendOption
	Title    string
	Series   series.Series
}

// CrossesView is what the crosses page shows for one variable
type CrossesView struct {
	Variable catalog.Variable
	Title    string
	Series   []series.Series
}

// New loads the trend file and every cross file. Cross files are read
// concurrently; a missing one disables its variable.
func New(ctx context.Context, c *catalog.Catalog, opts Options) (*Dashboard, error) {
	d := &Dashboard{
		catalog:  c,
		crosses:  make(map[string][]series.Series),
		logger:   internal.NewComponentLogger("Dashboard"),
		sessions: make(map[string]*series.Selector),
	}

	codes := make([]string, len(c.Trend.Options))
	for i, o := range c.Trend.Options {
		codes[i] = o.Code
	}
	selector, err := series.NewSelector(codes, opts.DefaultSeries)
	if err != nil {
		return nil, err
	}
	d.selector = selector
	d.options = codes
	d.defaultSeries = opts.DefaultSeries

	if opts.TrendSource == nil {
		return nil, errors.ConfigInvalid("no trend file configured")
	}
	table, err := opts.TrendSource.ReadTable()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load trend file %s", opts.TrendSource.Path())
	}
	d.trend, err = series.NewTrendDataset(table, opts.DateColumn, opts.LabelColumn, codes)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read trend file %s", opts.TrendSource.Path())
	}
	metrics.SetDatasetRows(trendSelector, table.Len())
	d.logger.Info("Trend dataset loaded: %d waves, options %s", table.Len(), strings.Join(codes, ", "))

	start := time.Now()
	if err := d.RenderTrend(io.Discard, "", chart.PNG); err != nil {
		return nil, errors.Wrap(err, "initial trend render failed")
	}
	d.logger.Info("Initial render of %s in %dms", d.selector.Current(), time.Since(start).Milliseconds())

	if opts.Open != nil && opts.CrossesDir != "" {
		if err := d.loadCrosses(ctx, opts); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Dashboard) loadCrosses(ctx context.Context, opts Options) error {
	start := time.Now()
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for _, v := range d.catalog.CrossVariables() {
		v := v
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(opts.CrossesDir, d.catalog.CrossesFile(v.Code))
			table, err := opts.Open(path, true).ReadTable()
			if errors.GetCode(err) == errors.CodeNotFound {
				d.logger.Warn("Cross file %s missing, %s disabled", path, v.Code)
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "failed to load cross file %s", path)
			}

			lines, err := series.GroupedSeries(table, v.Code, crossValueColumn, crossDateColumn)
			if err != nil {
				return errors.Wrapf(err, "failed to read cross file %s", path)
			}
			for i := range lines {
				lines[i].Name = v.ModalityLabel(lines[i].Key)
			}

			mu.Lock()
			d.crosses[v.Code] = lines
			mu.Unlock()
			metrics.SetDatasetRows(crossesSelector+"_"+strings.ToLower(v.Code), table.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	d.logger.Info("Loaded %d of %d cross files in %.2fms",
		len(d.crosses), len(d.catalog.CrossVariables()), float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}

// Catalog returns the metadata the dashboard labels charts with
func (d *Dashboard) Catalog() *catalog.Catalog {
	return d.catalog
}

// TrendSeries returns the loaded series of one trend option
func (d *Dashboard) TrendSeries(code string) (series.Series, error) {
	return d.trend.Series(code)
}

// Trend resolves a selection against the process-wide selector and returns
// its view. An empty selection keeps the current one; an invalid one is
// rejected without changing it.
func (d *Dashboard) Trend(selection string) (*TrendView, error) {
	return d.TrendFor("", selection)
}

// TrendFor is Trend scoped to one visitor session. Each session starts on
// the default option; an empty session uses the process-wide selector.
func (d *Dashboard) TrendFor(session, selection string) (*TrendView, error) {
	selected, changed, err := d.selectorFor(session).Resolve(selection)
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.ObserveSelection(trendSelector, selected)
	}

	s, err := d.trend.Series(selected)
	if err != nil {
		return nil, err
	}
	option, _ := d.catalog.TrendOption(selected)
	if option.Label != "" {
		s.Name = option.Label
	}
	return &TrendView{
		Selected: selected,
		Option:   option,
		Options:  d.catalog.Trend.Options,
		Title:    d.catalog.Trend.Title,
		Series:   s,
	}, nil
}

func (d *Dashboard) selectorFor(session string) *series.Selector {
	if session == "" {
		return d.selector
	}
	d.sessionsMu.Lock()
	defer d.sessionsMu.Unlock()
	if sel, ok := d.sessions[session]; ok {
		return sel
	}
	if len(d.sessions) >= maxSessions {
		for id := range d.sessions {
			delete(d.sessions, id)
			break
		}
	}
	// options and default were validated by New
	sel, _ := series.NewSelector(d.options, d.defaultSeries)
	d.sessions[session] = sel
	return sel
}

// RenderTrend draws the line of the resolved selection
func (d *Dashboard) RenderTrend(w io.Writer, selection string, format chart.Format) error {
	return d.RenderTrendFor(w, "", selection, format)
}

// RenderTrendFor draws the line of a session's resolved selection
func (d *Dashboard) RenderTrendFor(w io.Writer, session, selection string, format chart.Format) error {
	view, err := d.TrendFor(session, selection)
	if err != nil {
		return err
	}
	return chart.RenderLines(w, chart.Lines{
		Title:    view.Title,
		XLabel:   "Vague de l'enquête",
		YLabel:   yAxisLabel,
		Series:   []series.Series{view.Series},
		YRange:   d.catalog.Trend.YRange,
		Annotate: true,
	}, format)
}

// CrossOptions lists the crosses radio entries in catalogue order
func (d *Dashboard) CrossOptions() []CrossOption {
	vars := d.catalog.CrossVariables()
	out := make([]CrossOption, len(vars))
	for i, v := range vars {
		_, ok := d.crosses[v.Code]
		out[i] = CrossOption{Variable: v, Available: ok}
	}
	return out
}

// Crosses returns the view of one variable; empty means the first available
func (d *Dashboard) Crosses(code string) (*CrossesView, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		for _, o := range d.CrossOptions() {
			if o.Available {
				code = o.Variable.Code
				break
			}
		}
		if code == "" {
			return nil, errors.NotFound("cross-tabulated series")
		}
	}

	v, ok := d.catalog.Variable(code)
	if !ok || !v.Cross {
		return nil, errors.InvalidInput(fmt.Sprintf("%q is not a cross variable", code))
	}
	metrics.ObserveSelection(crossesSelector, v.Code)
	lines, ok := d.crosses[v.Code]
	if !ok {
		return nil, errors.NotFound("series for " + v.Code)
	}
	return &CrossesView{
		Variable: v,
		Title:    d.catalog.Crosses.TitlePrefix + " " + v.TitleFragment,
		Series:   lines,
	}, nil
}

// RenderCrosses draws one line per modality of the variable
func (d *Dashboard) RenderCrosses(w io.Writer, code string, format chart.Format) error {
	view, err := d.Crosses(code)
	if err != nil {
		return err
	}
	return chart.RenderLines(w, chart.Lines{
		Title:  view.Title,
		YLabel: yAxisLabel,
		Series: view.Series,
		YRange: view.Variable.YRange,
	}, format)
}
