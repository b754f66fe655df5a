// Package metrics exposes render and selection counters for the HTTP surfaces.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "enefviz"

var (
	// Registry holds every collector of the process
	Registry = prometheus.NewRegistry()

	chartRenders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chart_renders_total",
		Help:      "Charts rendered, by chart kind and outcome.",
	}, []string{"chart", "outcome"})

	chartRenderSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chart_render_seconds",
		Help:      "Time spent rendering a chart.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"chart"})

	selections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "selections_total",
		Help:      "Dashboard selection events, by selector and chosen option.",
	}, []string{"selector", "option"})

	rowsLoaded = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_rows",
		Help:      "Rows in each loaded dataset.",
	}, []string{"dataset"})
)

func init() {
	Registry.MustRegister(
		chartRenders,
		chartRenderSeconds,
		selections,
		rowsLoaded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveRender records one render attempt started at start
func ObserveRender(chart string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	chartRenders.WithLabelValues(chart, outcome).Inc()
	chartRenderSeconds.WithLabelValues(chart).Observe(time.Since(start).Seconds())
}

// ObserveSelection counts a selector change
func ObserveSelection(selector, option string) {
	selections.WithLabelValues(selector, option).Inc()
}

// SetDatasetRows records the size of a loaded dataset
func SetDatasetRows(dataset string, rows int) {
	rowsLoaded.WithLabelValues(dataset).Set(float64(rows))
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
