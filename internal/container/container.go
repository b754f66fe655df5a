package container

import (
	"context"
	"fmt"
	"log"

	"enefviz/adapters/chart"
	"enefviz/adapters/tabular"
	"enefviz/domain/catalog"
	"enefviz/internal/config"
	"enefviz/internal/dashboard"
	"enefviz/internal/report"
	"enefviz/ports"
)

// Container holds the application dependencies shared by the binaries
type Container struct {
	Config  *config.Config
	Catalog *catalog.Catalog

	Reports   *report.Service
	Dashboard *dashboard.Dashboard
}

// New builds the catalogue and the report service. The dashboard is loaded
// separately by InitDashboard since only the servers need it.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:  cfg,
		Catalog: cat,
		Reports: report.NewService(cat),
	}, nil
}

// InitDashboard loads the trend file and the cross files
func (c *Container) InitDashboard(ctx context.Context) error {
	d, err := dashboard.New(ctx, c.Catalog, dashboard.Options{
		TrendSource:   c.TrendSource(),
		DateColumn:    c.Config.Trend.DateColumn,
		LabelColumn:   c.Config.Trend.LabelColumn,
		DefaultSeries: c.Config.Trend.DefaultSeries,
		CrossesDir:    c.Config.Paths.CrossesDir,
		Open:          tabular.Opener(c.Config.Trend.Delimiter),
	})
	if err != nil {
		return err
	}
	c.Dashboard = d
	return nil
}

// SurveySource opens the respondent-level file; nil when none is configured
func (c *Container) SurveySource() ports.TableSource {
	if c.Config.Survey.File == "" {
		return nil
	}
	return tabular.NewDataReader(c.Config.Survey.File, tabular.Options{
		Delimiter:       c.Config.Survey.Delimiter,
		DropIndexColumn: true,
	})
}

// TrendSource opens the wave-level file; nil when none is configured
func (c *Container) TrendSource() ports.TableSource {
	if c.Config.Trend.File == "" {
		log.Printf("[Container] TREND_FILE is not set")
		return nil
	}
	return tabular.NewDataReader(c.Config.Trend.File, tabular.Options{Delimiter: c.Config.Trend.Delimiter})
}

// ReportRequest fills a report request from the configuration
func (c *Container) ReportRequest(format chart.Format, workbook bool) report.Request {
	return report.Request{
		Source:         c.SurveySource(),
		Sentinel:       c.Config.Survey.Sentinel,
		GroupColumn:    c.Config.Survey.GroupColumn,
		ResponseColumn: c.Config.Survey.ResponseColumn,
		OutputDir:      c.Config.Paths.ReportDir,
		Format:         format,
		Workbook:       workbook,
	}
}
