package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"enefviz/internal/dashboard"
	"enefviz/internal/metrics"
	"enefviz/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html static/* content/*.md
var embeddedFiles embed.FS

// App represents the dashboard web application
type App struct {
	router        *chi.Mux
	server        *http.Server
	dashboard     *dashboard.Dashboard
	reports       *report.Service
	reportRequest report.Request
	templates     *template.Template
	presentation  template.HTML
}

// Config holds UI application configuration
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Dashboard *dashboard.Dashboard
	// Reports and ReportRequest drive the live report page; a request
	// without a source shows a notice instead of the chart.
	Reports       *report.Service
	ReportRequest report.Request
}

// NewApp creates a new UI application
func NewApp(config Config) (*App, error) {
	if config.Dashboard == nil {
		return nil, fmt.Errorf("dashboard is required")
	}

	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	presentation, err := renderPresentation()
	if err != nil {
		return nil, err
	}

	app := &App{
		router:        chi.NewRouter(),
		dashboard:     config.Dashboard,
		reports:       config.Reports,
		reportRequest: config.ReportRequest,
		templates:     templates,
		presentation:  presentation,
	}
	app.server = &http.Server{
		Addr:         ":" + config.Port,
		Handler:      app.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	if err := app.setupMiddleware(); err != nil {
		return nil, err
	}
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() error {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	staticFiles, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to open static files: %w", err)
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFiles))))
	return nil
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Pages
	a.router.Get("/", a.handleIndex)
	a.router.Get("/trend", a.handleTrend)
	a.router.Get("/crosses", a.handleCrosses)
	a.router.Get("/report", a.handleReport)

	// Chart images, png or svg
	a.router.Get("/charts/trend.{format}", a.handleTrendChart)
	a.router.Get("/charts/crosses.{format}", a.handleCrossesChart)
	a.router.Get("/charts/report.{format}", a.handleReportChart)

	// Operations
	a.router.Handle("/metrics", metrics.Handler())
	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
}

// Handler exposes the router, for tests and embedding
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	log.Printf("[UI] Starting dashboard on %s", a.server.Addr)
	return a.server.ListenAndServe()
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, status int, templateName string, data map[string]interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("[UI] Template error for %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[UI] Error writing %s: %v", templateName, err)
	}
}
