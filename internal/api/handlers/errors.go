package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cropsevai/cropsevai-hub/internal/datastore"
	"github.com/cropsevai/cropsevai-hub/internal/errors"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
)

// Fixed client messages for store failures. Driver errors never reach
// the response body.
const (
	MsgDatabaseUnavailable = "Database unavailable. Please try again later."
	MsgDatabaseTimeout     = "Database request timed out"
	MsgInternalError       = "Internal server error"
	MsgRequestCanceled     = "Request cancelled"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates an error body with a fresh correlation id.
func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:         http.StatusText(code),
		Message:       message,
		Code:          code,
		CorrelationID: uuid.NewString(),
	}
}

// classify maps an error to its HTTP status and client message.
func classify(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, datastore.ErrQueryCanceled), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, MsgRequestCanceled
	case errors.Is(err, datastore.ErrQueryTimeout), errors.IsCategory(err, errors.CategoryTimeout):
		return http.StatusGatewayTimeout, MsgDatabaseTimeout
	case errors.Is(err, datastore.ErrStoreUnavailable), errors.IsCategory(err, errors.CategoryDatabase):
		return http.StatusServiceUnavailable, MsgDatabaseUnavailable
	case errors.Is(err, datastore.ErrCropNotFound):
		return http.StatusNotFound, "Crop not found"
	case errors.Is(err, datastore.ErrDiseaseNotFound):
		return http.StatusNotFound, "Disease not found"
	case errors.IsNotFound(err):
		return http.StatusNotFound, "Resource not found"
	case errors.IsCategory(err, errors.CategoryValidation):
		return http.StatusBadRequest, err.Error()
	case errors.IsCategory(err, errors.CategoryAuthentication):
		return http.StatusUnauthorized, err.Error()
	case errors.IsCategory(err, errors.CategoryLimit):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, datastore.ErrDuplicateKey), errors.IsCategory(err, errors.CategoryConflict):
		return http.StatusConflict, "Resource already exists"
	case errors.As(err, &he):
		if he.Code >= http.StatusInternalServerError {
			return he.Code, MsgInternalError
		}
		return he.Code, fmt.Sprint(he.Message)
	default:
		return http.StatusInternalServerError, MsgInternalError
	}
}

// HandleError writes the JSON error response for err. Server side failures
// are logged with the correlation id; client errors only at debug.
func (c *Controller) HandleError(ctx echo.Context, err error) error {
	code, message := classify(err)
	resp := NewErrorResponse(code, message)

	log := c.logger.WithContext(ctx.Request().Context())
	fields := []logger.Field{
		logger.String("correlation_id", resp.CorrelationID),
		logger.String("method", ctx.Request().Method),
		logger.String("path", ctx.Path()),
		logger.Int("status", code),
		logger.String("ip", ctx.RealIP()),
	}
	switch {
	case errors.Is(err, context.Canceled):
		// The client is gone; nothing failed on our side.
		log.Debug("API request cancelled by client", fields...)
	case code >= http.StatusInternalServerError:
		log.Error("API error", append(fields, logger.Error(err))...)
	default:
		log.Debug("API request rejected", append(fields, logger.String("reason", err.Error()))...)
	}

	if ctx.Request().Method == http.MethodHead {
		return ctx.NoContent(code)
	}
	return ctx.JSON(code, resp)
}

// HTTPErrorHandler renders errors returned by middleware and unmatched
// routes in the same JSON shape as handler errors.
func (c *Controller) HTTPErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}
	if herr := c.HandleError(ctx, err); herr != nil {
		c.logger.Warn("Failed to write error response", logger.Error(herr))
	}
}
