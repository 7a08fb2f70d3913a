package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cropsevai/cropsevai-hub/internal/observability/metrics"
)

// unmatchedRoute labels requests that did not match any registered route,
// keeping arbitrary URLs out of metric labels.
const unmatchedRoute = "unmatched"

// NewMetrics records request count, latency, response size and in-flight
// requests. Errors are handed to the echo error handler here so the
// recorded status matches the response sent.
func NewMetrics(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if m == nil {
			return next
		}
		return func(c echo.Context) error {
			m.IncInFlight()
			defer m.DecInFlight()

			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			path := c.Path()
			if path == "" {
				path = unmatchedRoute
			}
			status := c.Response().Status

			m.RecordHTTPRequest(req.Method, path, status, time.Since(start).Seconds())
			m.RecordHTTPResponseSize(req.Method, path, c.Response().Size)
			if status >= 500 {
				m.RecordHTTPRequestError(req.Method, path, strconv.Itoa(status))
			}
			return nil
		}
	}
}
