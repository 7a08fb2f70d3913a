package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListCrops handles GET /api/crops.
func (c *Controller) ListCrops(ctx echo.Context) error {
	crops, err := c.Store.ListCrops(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, crops)
}

// GetCrop handles GET /api/crops/:id. An unknown id is a 404.
func (c *Controller) GetCrop(ctx echo.Context) error {
	id, err := parseID(ctx, "crop", "id")
	if err != nil {
		return c.HandleError(ctx, err)
	}

	crop, err := c.Store.GetCrop(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, crop)
}

// ListCropDiseases handles GET /api/crops/:id/diseases.
func (c *Controller) ListCropDiseases(ctx echo.Context) error {
	id, err := parseID(ctx, "crop", "id")
	if err != nil {
		return c.HandleError(ctx, err)
	}

	diseases, err := c.Store.ListDiseasesByCrop(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, diseases)
}

// ListCropFertilizers handles GET /api/crops/:id/fertilizers.
func (c *Controller) ListCropFertilizers(ctx echo.Context) error {
	id, err := parseID(ctx, "crop", "id")
	if err != nil {
		return c.HandleError(ctx, err)
	}

	fertilizers, err := c.Store.ListFertilizersByCrop(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, fertilizers)
}

// ListCropAdvisory handles GET /api/crops/:id/advisory.
func (c *Controller) ListCropAdvisory(ctx echo.Context) error {
	id, err := parseID(ctx, "crop", "id")
	if err != nil {
		return c.HandleError(ctx, err)
	}

	records, err := c.Store.ListAdvisoryByCrop(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, records)
}

// ListFertilizers handles GET /api/fertilizers.
func (c *Controller) ListFertilizers(ctx echo.Context) error {
	fertilizers, err := c.Store.ListFertilizers(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, fertilizers)
}

// ListUsers handles GET /api/users. Password hashes are not serialized.
func (c *Controller) ListUsers(ctx echo.Context) error {
	users, err := c.Store.ListUsers(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, users)
}
