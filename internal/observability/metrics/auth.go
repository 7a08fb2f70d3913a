package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Login outcomes.
const (
	LoginSuccess            = "success"
	LoginProvisioned        = "provisioned"
	LoginInvalidCredentials = "invalid_credentials"
	LoginRateLimited        = "rate_limited"
	LoginError              = "error"
)

// AuthMetrics contains Prometheus metrics for login and token checks
type AuthMetrics struct {
	registry *prometheus.Registry

	loginAttemptsTotal   *prometheus.CounterVec
	loginDuration        prometheus.Histogram
	tokenValidationTotal *prometheus.CounterVec
}

// NewAuthMetrics creates and registers new authentication metrics
func NewAuthMetrics(registry *prometheus.Registry) (*AuthMetrics, error) {
	m := &AuthMetrics{registry: registry}

	m.loginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"result"},
	)
	m.loginDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auth_login_duration_seconds",
			Help:    "Time taken to process a login, including password hashing",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
		},
	)
	m.tokenValidationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_validations_total",
			Help: "Total number of bearer token validations",
		},
		[]string{"result"}, // result: valid, invalid, missing
	)

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AuthMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{m.loginAttemptsTotal, m.loginDuration, m.tokenValidationTotal}
}

// Describe implements prometheus.Collector
func (m *AuthMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *AuthMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordLogin records a login outcome and how long it took.
func (m *AuthMetrics) RecordLogin(result string, seconds float64) {
	m.loginAttemptsTotal.WithLabelValues(result).Inc()
	m.loginDuration.Observe(seconds)
}

// RecordTokenValidation records a bearer token check.
func (m *AuthMetrics) RecordTokenValidation(result string) {
	m.tokenValidationTotal.WithLabelValues(result).Inc()
}
