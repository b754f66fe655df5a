package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"enefviz/adapters/chart"
	"enefviz/domain/survey"
	"enefviz/internal/config"
	"enefviz/internal/container"

	"github.com/spf13/cobra"
)

// surveyFlags override the SURVEY_* environment for one invocation
type surveyFlags struct {
	file     string
	group    string
	response string
	sentinel float64
}

func (f *surveyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "Respondent-level CSV or XLSX file (default $SURVEY_FILE)")
	cmd.Flags().StringVar(&f.group, "group", "", "Grouping column (default $SURVEY_GROUP_COLUMN)")
	cmd.Flags().StringVar(&f.response, "response", "", "Response column (default $SURVEY_RESPONSE_COLUMN)")
	cmd.Flags().Float64Var(&f.sentinel, "sentinel", 0, "Missing-value code (default $SURVEY_SENTINEL)")
}

// load reads the configuration and applies the flags on top of it
func (f *surveyFlags) load(cmd *cobra.Command) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if f.file != "" {
		cfg.Survey.File = f.file
	}
	if f.group != "" {
		cfg.Survey.GroupColumn = f.group
	}
	if f.response != "" {
		cfg.Survey.ResponseColumn = f.response
	}
	if cmd.Flags().Changed("sentinel") {
		cfg.Survey.Sentinel = f.sentinel
	}
	return container.New(cfg)
}

func newReportCmd() *cobra.Command {
	var flags surveyFlags
	var outDir, format string
	var workbook bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the mirrored bar report and its manifest",
		Long: `Load the respondent-level file, recode the missing-value code, cross-tabulate
the grouping and response columns, and write the chart plus a JSON manifest.

Example: enefviz report --file data/FR03Final.csv --out reports --xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.load(cmd)
			if err != nil {
				return err
			}
			f, err := chart.ParseFormat(format)
			if err != nil {
				return err
			}
			req := c.ReportRequest(f, workbook)
			if outDir != "" {
				req.OutputDir = outDir
			}

			res, err := c.Reports.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Report %s\n", res.Manifest.ReportID)
			fmt.Fprintf(out, "  chart:    %s\n", res.ChartPath)
			if res.WorkbookPath != "" {
				fmt.Fprintf(out, "  workbook: %s\n", res.WorkbookPath)
			}
			fmt.Fprintf(out, "  manifest: %s\n", res.ManifestPath)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default $REPORT_DIR)")
	cmd.Flags().StringVar(&format, "format", "png", "Image format: png or svg")
	cmd.Flags().BoolVar(&workbook, "xlsx", false, "Also write the frequency table as an xlsx workbook")
	return cmd
}

func newCrossTabCmd() *cobra.Command {
	var flags surveyFlags

	cmd := &cobra.Command{
		Use:   "crosstab",
		Short: "Print the row-normalized frequency table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.load(cmd)
			if err != nil {
				return err
			}
			req := c.ReportRequest(chart.PNG, false)
			frame, err := c.Reports.Build(cmd.Context(), req.Source, req.Sentinel, req.GroupColumn, req.ResponseColumn)
			if err != nil {
				return err
			}

			group := c.Catalog.VariableOrDefault(req.GroupColumn)
			response := c.Catalog.VariableOrDefault(req.ResponseColumn)
			ft := frame.Frequencies

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(w, "%s\t", response.Label)
			for _, d := range ft.Groups {
				fmt.Fprintf(w, "%s\t", group.ModalityLabel(d.Group.Key))
			}
			fmt.Fprintln(w)
			for _, cat := range ft.Categories {
				fmt.Fprintf(w, "%s\t", response.ModalityLabel(cat.Key))
				for _, d := range ft.Groups {
					fmt.Fprintf(w, "%s\t", survey.PercentLabel(d.Share(cat.Key)))
				}
				fmt.Fprintln(w)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows kept, %d excluded\n", ft.Eligible, ft.Excluded)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newTrendCmd() *cobra.Command {
	var file, out string

	cmd := &cobra.Command{
		Use:   "trend [series]",
		Short: "Render the line chart of one trend option",
		Long: `Render one of the two dashboard indicators to an image file. Without an
argument the default selection ($TREND_DEFAULT_SERIES) is drawn.

Example: enefviz trend INDPART --file data/onglet_2.csv --out indpart.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if file != "" {
				cfg.Trend.File = file
			}
			// cross files are not needed for a single trend chart
			cfg.Paths.CrossesDir = ""

			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			if err := c.InitDashboard(cmd.Context()); err != nil {
				return err
			}

			selection := ""
			if len(args) == 1 {
				selection = args[0]
			}
			format, err := chart.FormatFromPath(out)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := c.Dashboard.RenderTrend(&buf, selection, format); err != nil {
				return err
			}
			if dir := filepath.Dir(out); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trend %s written to %s\n", c.Dashboard.Catalog().Trend.Title, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Wave-level CSV or XLSX file (default $TREND_FILE)")
	cmd.Flags().StringVar(&out, "out", "trend.png", "Output image; the extension picks png or svg")
	return cmd
}
