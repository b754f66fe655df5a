// Package api serves the survey tables as JSON.
package api

import (
	"log"
	"net/http"
	"time"

	"enefviz/domain/catalog"
	"enefviz/internal/dashboard"
	"enefviz/internal/errors"
	"enefviz/internal/report"

	"github.com/gin-gonic/gin"
)

// Config wires the API to the loaded services. Dashboard may be nil, in
// which case the series endpoints answer 404.
type Config struct {
	Port         string
	GinMode      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Catalog       *catalog.Catalog
	Dashboard     *dashboard.Dashboard
	Reports       *report.Service
	ReportRequest report.Request
}

// Server is the JSON API
type Server struct {
	router    *gin.Engine
	server    *http.Server
	catalog   *catalog.Catalog
	dashboard *dashboard.Dashboard
	reports   *report.Service
	request   report.Request
}

// NewServer builds the gin engine and registers the routes
func NewServer(cfg Config) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		router:    router,
		catalog:   cfg.Catalog,
		dashboard: cfg.Dashboard,
		reports:   cfg.Reports,
		request:   cfg.ReportRequest,
	}
	s.server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	api.GET("/catalog", s.handleCatalog)
	api.GET("/crosstab", s.handleCrossTab)
	api.GET("/trend/:series", s.handleTrend)
	api.GET("/crosses/:var", s.handleCrosses)
}

// Handler exposes the engine, for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("[API] Starting JSON API on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

func writeError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
