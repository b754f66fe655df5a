package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRender(t *testing.T) {
	before := testutil.ToFloat64(chartRenders.WithLabelValues("test_chart", "error"))

	ObserveRender("test_chart", time.Now(), nil)
	ObserveRender("test_chart", time.Now(), errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(chartRenders.WithLabelValues("test_chart", "error")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(chartRenders.WithLabelValues("test_chart", "ok")), 1.0)
}

func TestSelectionAndRows(t *testing.T) {
	ObserveSelection("test_selector", "INDPART")
	assert.Equal(t, 1.0, testutil.ToFloat64(selections.WithLabelValues("test_selector", "INDPART")))

	SetDatasetRows("test_dataset", 42)
	assert.Equal(t, 42.0, testutil.ToFloat64(rowsLoaded.WithLabelValues("test_dataset")))
}

func TestHandler(t *testing.T) {
	SetDatasetRows("trend", 6)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `enefviz_dataset_rows{dataset="trend"} 6`)
}
