package observability

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropsevai/cropsevai-hub/internal/observability/metrics"
)

// findMetric returns the metric in family name whose labels include all of
// the given label pairs.
func findMetric(t *testing.T, m *Metrics, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if hasLabels(metric, labels) {
				return metric
			}
		}
	}
	return nil
}

func hasLabels(metric *dto.Metric, want map[string]string) bool {
	matched := 0
	for _, lp := range metric.GetLabel() {
		if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

func TestNewMetricsConcurrency(t *testing.T) {
	const numGoroutines = 20

	var wg sync.WaitGroup
	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := NewMetrics()
			if err != nil {
				t.Errorf("NewMetrics failed: %v", err)
				return
			}
			if m.HTTP == nil || m.Datastore == nil || m.Auth == nil {
				t.Error("metric group is nil")
			}
		}()
	}
	wg.Wait()
}

func TestHTTPMetricsRecorded(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.HTTP.RecordHTTPRequest("GET", "/api/crop/:id", 404, 0.01)
	m.HTTP.RecordHTTPRequest("GET", "/api/crop/:id", 404, 0.02)
	m.HTTP.RecordHTTPRequestError("GET", "/api/crop/:id", "not_found")

	metric := findMetric(t, m, "http_requests_total", map[string]string{
		"method": "GET", "path": "/api/crop/:id", "status_code": "404",
	})
	require.NotNil(t, metric)
	assert.InDelta(t, 2, metric.GetCounter().GetValue(), 0)

	hist := findMetric(t, m, "http_request_duration_seconds", map[string]string{"path": "/api/crop/:id"})
	require.NotNil(t, hist)
	assert.Equal(t, uint64(2), hist.GetHistogram().GetSampleCount())

	errs := findMetric(t, m, "http_request_errors_total", map[string]string{"error_type": "not_found"})
	require.NotNil(t, errs)
	assert.InDelta(t, 1, errs.GetCounter().GetValue(), 0)
}

func TestDatastoreMetricsImplementRecorder(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	var rec metrics.Recorder = m.Datastore
	rec.RecordOperation("count_crops", metrics.StatusSuccess)
	rec.RecordDuration("count_crops", 0.003)
	rec.RecordError("count_crops", "timeout")

	ops := findMetric(t, m, "datastore_db_operations_total", map[string]string{
		"operation": "count_crops", "status": "success",
	})
	require.NotNil(t, ops)
	assert.InDelta(t, 1, ops.GetCounter().GetValue(), 0)

	errs := findMetric(t, m, "datastore_db_operation_errors_total", map[string]string{"error_type": "timeout"})
	require.NotNil(t, errs)

	m.Datastore.UpdatePoolStats(sql.DBStats{MaxOpenConnections: 10, OpenConnections: 3, InUse: 1, Idle: 2})
	open := findMetric(t, m, "datastore_db_connections_open", nil)
	require.NotNil(t, open)
	assert.InDelta(t, 3, open.GetGauge().GetValue(), 0)

	m.Datastore.SetDatabaseUp(true)
	up := findMetric(t, m, "datastore_db_up", nil)
	require.NotNil(t, up)
	assert.InDelta(t, 1, up.GetGauge().GetValue(), 0)

	m.Datastore.RecordCacheLookup("dashboard", false)
	miss := findMetric(t, m, "datastore_cache_operations_total", map[string]string{"result": "miss"})
	require.NotNil(t, miss)
}

func TestAuthMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.Auth.RecordLogin(metrics.LoginInvalidCredentials, 0.05)
	m.Auth.RecordTokenValidation("missing")

	logins := findMetric(t, m, "auth_login_attempts_total", map[string]string{"result": "invalid_credentials"})
	require.NotNil(t, logins)
	assert.InDelta(t, 1, logins.GetCounter().GetValue(), 0)
}

func TestHandlerServesExposition(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	m.HTTP.RecordHTTPRequest("GET", "/health", 200, 0.001)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/health",status_code="200"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
