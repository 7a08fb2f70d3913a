package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cropsevai/cropsevai-hub/internal/errors"
)

// bearerTokenParts is the expected number of parts when splitting the
// Authorization header.
const bearerTokenParts = 2

// CtxKeyClaims holds the verified *Claims in echo.Context.
const CtxKeyClaims = "auth:claims"

// Token validation results reported to TokenRecorder.
const (
	TokenValid   = "valid"
	TokenMissing = "missing"
	TokenInvalid = "invalid"
)

// ErrMissingToken is returned when a protected route has no bearer token.
var ErrMissingToken = errors.NewStd("missing bearer token")

// TokenRecorder receives token validation outcomes.
type TokenRecorder interface {
	RecordTokenValidation(result string)
}

// RequireToken returns middleware that rejects requests without a valid
// "Authorization: Bearer <token>" header. The verified claims are stored
// under CtxKeyClaims. recorder may be nil.
func RequireToken(tokens *TokenService, recorder TokenRecorder) echo.MiddlewareFunc {
	record := func(result string) {
		if recorder != nil {
			recorder.RecordTokenValidation(result)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			parts := strings.SplitN(header, " ", bearerTokenParts)
			if len(parts) != bearerTokenParts || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				record(TokenMissing)
				return errors.New(ErrMissingToken).
					Component("auth").
					Category(errors.CategoryAuthentication).
					Build()
			}

			claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				record(TokenInvalid)
				return err
			}

			record(TokenValid)
			c.Set(CtxKeyClaims, claims)
			return next(c)
		}
	}
}

// ClaimsFromContext returns the claims stored by RequireToken.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(CtxKeyClaims).(*Claims)
	return claims, ok
}
