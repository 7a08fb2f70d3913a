package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetDashboard handles GET /api/dashboard.
func (c *Controller) GetDashboard(ctx echo.Context) error {
	dashboard, err := c.Advisory.Dashboard(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dashboard)
}

// GetAlerts handles GET /api/alerts.
func (c *Controller) GetAlerts(ctx echo.Context) error {
	alerts, err := c.Advisory.Alerts(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, alerts)
}
