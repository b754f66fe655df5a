package ui

import (
	"bytes"
	"io"
	"log"
	"net/http"

	"enefviz/adapters/chart"
	"enefviz/domain/survey"
	"enefviz/internal/errors"

	"github.com/go-chi/chi/v5"
)

type reportRow struct {
	Category string
	Cells    []string
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "index.html", map[string]interface{}{
		"Title":        "Présentation",
		"Active":       "presentation",
		"Presentation": a.presentation,
	})
}

// handleTrend renders the dropdown page; ?series= is a selection event for
// the visitor's session
func (a *App) handleTrend(w http.ResponseWriter, r *http.Request) {
	view, err := a.dashboard.TrendFor(sessionID(w, r), r.URL.Query().Get("series"))
	if err != nil {
		a.renderError(w, "trend", err)
		return
	}

	data := map[string]interface{}{
		"Title":  view.Title,
		"Active": "trend",
		"View":   view,
	}
	if last, ok := view.Series.Last(); ok {
		data["Latest"] = last
	}
	a.renderTemplate(w, http.StatusOK, "trend.html", data)
}

func (a *App) handleCrosses(w http.ResponseWriter, r *http.Request) {
	view, err := a.dashboard.Crosses(r.URL.Query().Get("var"))
	if err != nil {
		a.renderError(w, "crosses", err)
		return
	}
	a.renderTemplate(w, http.StatusOK, "crosses.html", map[string]interface{}{
		"Title":       view.Title,
		"Active":      "crosses",
		"View":        view,
		"Options":     a.dashboard.CrossOptions(),
		"Description": a.dashboard.Catalog().Crosses.Description,
	})
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	cat := a.dashboard.Catalog()
	data := map[string]interface{}{
		"Title":  cat.Report.Title,
		"Active": "report",
	}
	if a.reports == nil || a.reportRequest.Source == nil {
		data["Notice"] = "Aucun fichier d'enquête n'est configuré (SURVEY_FILE)."
		a.renderTemplate(w, http.StatusOK, "report.html", data)
		return
	}

	req := a.reportRequest
	frame, err := a.reports.Build(r.Context(), req.Source, req.Sentinel, req.GroupColumn, req.ResponseColumn)
	if err != nil {
		a.renderError(w, "report", err)
		return
	}

	ft := frame.Frequencies
	group := cat.VariableOrDefault(req.GroupColumn)
	response := cat.VariableOrDefault(req.ResponseColumn)

	columns := make([]string, len(ft.Groups))
	for i, d := range ft.Groups {
		columns[i] = group.ModalityLabel(d.Group.Key)
	}
	rows := make([]reportRow, len(ft.Categories))
	for i, c := range ft.Categories {
		row := reportRow{Category: response.ModalityLabel(c.Key), Cells: make([]string, len(ft.Groups))}
		for j, d := range ft.Groups {
			row.Cells[j] = survey.PercentLabel(d.Share(c.Key))
		}
		rows[i] = row
	}

	data["Group"] = group.Label
	data["Response"] = response.Label
	data["Columns"] = columns
	data["Rows"] = rows
	data["Eligible"] = ft.Eligible
	data["Excluded"] = ft.Excluded
	a.renderTemplate(w, http.StatusOK, "report.html", data)
}

func (a *App) handleTrendChart(w http.ResponseWriter, r *http.Request) {
	session := sessionID(w, r)
	a.serveChart(w, r, func(out io.Writer, format chart.Format) error {
		return a.dashboard.RenderTrendFor(out, session, r.URL.Query().Get("series"), format)
	})
}

func (a *App) handleCrossesChart(w http.ResponseWriter, r *http.Request) {
	a.serveChart(w, r, func(out io.Writer, format chart.Format) error {
		return a.dashboard.RenderCrosses(out, r.URL.Query().Get("var"), format)
	})
}

func (a *App) handleReportChart(w http.ResponseWriter, r *http.Request) {
	a.serveChart(w, r, func(out io.Writer, format chart.Format) error {
		if a.reports == nil {
			return errors.NotFound("survey report")
		}
		req := a.reportRequest
		req.Format = format
		return a.reports.Render(r.Context(), out, req)
	})
}

// serveChart renders into memory first so a failed render still gets a
// proper status code
func (a *App) serveChart(w http.ResponseWriter, r *http.Request, render func(io.Writer, chart.Format) error) {
	format, err := chart.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, err.Error(), errors.HTTPStatus(err))
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, format); err != nil {
		log.Printf("[UI] Chart %s failed: %v", r.URL.Path, err)
		http.Error(w, err.Error(), errors.HTTPStatus(err))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[UI] Error writing chart %s: %v", r.URL.Path, err)
	}
}

func (a *App) renderError(w http.ResponseWriter, active string, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[UI] %s page failed: %v", active, err)
	}
	a.renderTemplate(w, status, "error.html", map[string]interface{}{
		"Title":   http.StatusText(status),
		"Active":  active,
		"Status":  status,
		"Message": err.Error(),
	})
}
