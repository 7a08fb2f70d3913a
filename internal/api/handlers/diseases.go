package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListDiseases handles GET /api/diseases.
func (c *Controller) ListDiseases(ctx echo.Context) error {
	diseases, err := c.Store.ListDiseases(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, diseases)
}

// GetDisease handles GET /api/disease/:id and includes the crop name.
func (c *Controller) GetDisease(ctx echo.Context) error {
	id, err := parseID(ctx, "disease", "id")
	if err != nil {
		return c.HandleError(ctx, err)
	}

	disease, err := c.Store.GetDiseaseWithCrop(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, disease)
}

// ListSolutions handles GET /api/disease/:id/solutions and
// GET /api/solutions/:diseaseId.
func (c *Controller) ListSolutions(ctx echo.Context) error {
	id, err := parseID(ctx, "disease", "id", "diseaseId")
	if err != nil {
		return c.HandleError(ctx, err)
	}

	solutions, err := c.Store.ListSolutionsByDisease(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, solutions)
}
