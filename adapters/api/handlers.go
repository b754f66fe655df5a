package api

import (
	"net/http"
	"strings"

	"enefviz/domain/catalog"
	"enefviz/domain/series"
	"enefviz/domain/survey"
	"enefviz/internal/errors"

	"github.com/gin-gonic/gin"
)

type variableRef struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type categoryJSON struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type groupJSON struct {
	Key         string             `json:"key"`
	Label       string             `json:"label"`
	Total       int                `json:"total"`
	Proportions map[string]float64 `json:"proportions"`
	Percentages map[string]string  `json:"percentages"`
	Counts      map[string]int     `json:"counts"`
}

type crossTabResponse struct {
	Group      variableRef    `json:"group"`
	Response   variableRef    `json:"response"`
	Eligible   int            `json:"eligible_rows"`
	Excluded   int            `json:"excluded_rows"`
	Categories []categoryJSON `json:"categories"`
	Groups     []groupJSON    `json:"groups"`
}

type seriesResponse struct {
	Key    string         `json:"key"`
	Name   string         `json:"name"`
	Points []series.Point `json:"points"`
}

func (s *Server) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog)
}

// handleCrossTab answers GET /api/crosstab?group=&response=; missing
// parameters fall back to the configured columns
func (s *Server) handleCrossTab(c *gin.Context) {
	if s.reports == nil {
		writeError(c, errors.NotFound("survey report"))
		return
	}
	group := strings.TrimSpace(c.DefaultQuery("group", s.request.GroupColumn))
	response := strings.TrimSpace(c.DefaultQuery("response", s.request.ResponseColumn))
	if group == response {
		writeError(c, errors.InvalidInput("group and response must differ"))
		return
	}

	frame, err := s.reports.Build(c.Request.Context(), s.request.Source, s.request.Sentinel, group, response)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCrossTabResponse(frame.Frequencies, s.catalog.VariableOrDefault(group), s.catalog.VariableOrDefault(response)))
}

func newCrossTabResponse(ft *survey.FrequencyTable, group, response catalog.Variable) crossTabResponse {
	out := crossTabResponse{
		Group:      variableRef{Code: group.Code, Label: group.Label},
		Response:   variableRef{Code: response.Code, Label: response.Label},
		Eligible:   ft.Eligible,
		Excluded:   ft.Excluded,
		Categories: make([]categoryJSON, len(ft.Categories)),
		Groups:     make([]groupJSON, len(ft.Groups)),
	}
	for i, cat := range ft.Categories {
		out.Categories[i] = categoryJSON{Key: cat.Key, Label: response.ModalityLabel(cat.Key)}
	}
	for i, d := range ft.Groups {
		g := groupJSON{
			Key:         d.Group.Key,
			Label:       group.ModalityLabel(d.Group.Key),
			Total:       d.Total,
			Proportions: make(map[string]float64, len(d.Categories)),
			Percentages: make(map[string]string, len(d.Categories)),
			Counts:      make(map[string]int, len(d.Categories)),
		}
		for j, cat := range d.Categories {
			g.Proportions[cat.Key] = d.Shares[j]
			g.Percentages[cat.Key] = survey.PercentLabel(d.Shares[j])
			g.Counts[cat.Key] = d.Counts[j]
		}
		out.Groups[i] = g
	}
	return out
}

// handleTrend returns one trend option without touching the dashboard selection
func (s *Server) handleTrend(c *gin.Context) {
	if s.dashboard == nil {
		writeError(c, errors.NotFound("trend dataset"))
		return
	}
	code := strings.ToUpper(c.Param("series"))
	if _, ok := s.catalog.TrendOption(code); !ok {
		writeError(c, errors.NotFound("trend option "+code))
		return
	}
	ts, err := s.dashboard.TrendSeries(code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seriesResponse{Key: ts.Key, Name: ts.Name, Points: ts.Points})
}

func (s *Server) handleCrosses(c *gin.Context) {
	if s.dashboard == nil {
		writeError(c, errors.NotFound("crosses dataset"))
		return
	}
	view, err := s.dashboard.Crosses(c.Param("var"))
	if err != nil {
		writeError(c, err)
		return
	}
	lines := make([]seriesResponse, len(view.Series))
	for i, l := range view.Series {
		lines[i] = seriesResponse{Key: l.Key, Name: l.Name, Points: l.Points}
	}
	c.JSON(http.StatusOK, gin.H{
		"variable": variableRef{Code: view.Variable.Code, Label: view.Variable.Label},
		"title":    view.Title,
		"series":   lines,
	})
}
