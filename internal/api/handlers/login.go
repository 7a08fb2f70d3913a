package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cropsevai/cropsevai-hub/internal/errors"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login handles POST /login and returns {success, token, user}.
func (c *Controller) Login(ctx echo.Context) error {
	var req LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, errors.Newf("invalid login request body").
			Component("api").
			Category(errors.CategoryValidation).
			Build())
	}

	result, err := c.Auth.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, result)
}
