package auth

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropsevai/cropsevai-hub/internal/datastore"
	"github.com/cropsevai/cropsevai-hub/internal/errors"
	"github.com/cropsevai/cropsevai-hub/internal/observability/metrics"
)

type tokenOutcomes struct {
	mu      sync.Mutex
	results []string
}

func (r *tokenOutcomes) RecordTokenValidation(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireToken(t *testing.T) {
	ts := newTestTokens(t)
	valid, _, err := ts.Issue(&datastore.User{ID: 9, Email: "agronomist@farm.in", Role: "user"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantErr    error
		wantResult string
	}{
		{"valid token", "Bearer " + valid, nil, TokenValid},
		{"lowercase scheme", "bearer " + valid, nil, TokenValid},
		{"no header", "", ErrMissingToken, TokenMissing},
		{"basic scheme", "Basic dXNlcjpwYXNz", ErrMissingToken, TokenMissing},
		{"empty bearer", "Bearer ", ErrMissingToken, TokenMissing},
		{"bad token", "Bearer abc.def.ghi", ErrInvalidToken, TokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/crops", http.NoBody)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			outcomes := &tokenOutcomes{}

			err := RequireToken(ts, outcomes)(okHandler)(c)

			assert.Equal(t, []string{tt.wantResult}, outcomes.results)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, errors.IsCategory(err, errors.CategoryAuthentication))
				_, ok := ClaimsFromContext(c)
				assert.False(t, ok)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)
			claims, ok := ClaimsFromContext(c)
			require.True(t, ok)
			assert.Equal(t, uint(9), claims.UserID)
		})
	}
}

func TestLoginRateLimiter(t *testing.T) {
	rec := &loginOutcomes{}
	limiter := NewLoginRateLimiter(RateLimitConfig{Rate: 0.001, Burst: 2, Recorder: rec})
	e := echo.New()

	// The limiter hands denials to c.Error rather than returning them.
	var handled error
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		handled = err
		_ = c.NoContent(http.StatusTooManyRequests)
	}

	call := func(ip string) (int, error) {
		handled = nil
		req := httptest.NewRequest(http.MethodPost, "/login", http.NoBody)
		req.RemoteAddr = ip + ":4000"
		w := httptest.NewRecorder()
		c := e.NewContext(req, w)
		if err := limiter(okHandler)(c); err != nil {
			return w.Code, err
		}
		return w.Code, handled
	}

	for range 2 {
		code, err := call("198.51.100.7")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, code)
	}

	code, err := call("198.51.100.7")
	require.ErrorIs(t, err, ErrRateLimited)
	assert.True(t, errors.IsCategory(err, errors.CategoryLimit))
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, []string{metrics.LoginRateLimited}, rec.results)

	// Other clients keep their own budget.
	code, err = call("198.51.100.8")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
}

func TestLoginRateLimiterDisabled(t *testing.T) {
	limiter := NewLoginRateLimiter(RateLimitConfig{Rate: 0})
	e := echo.New()

	for range 50 {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", http.NoBody), httptest.NewRecorder())
		require.NoError(t, limiter(okHandler)(c))
	}
}
