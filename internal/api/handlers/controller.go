// Package handlers implements the JSON endpoints of the CropSevai Hub API.
package handlers

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cropsevai/cropsevai-hub/internal/advisory"
	"github.com/cropsevai/cropsevai-hub/internal/auth"
	"github.com/cropsevai/cropsevai-hub/internal/datastore"
	"github.com/cropsevai/cropsevai-hub/internal/errors"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
)

// Store is the read side of the datastore used by the handlers.
type Store interface {
	ListCrops(ctx context.Context) ([]datastore.Crop, error)
	GetCrop(ctx context.Context, id uint) (*datastore.Crop, error)
	ListDiseases(ctx context.Context) ([]datastore.Disease, error)
	ListDiseasesByCrop(ctx context.Context, cropID uint) ([]datastore.Disease, error)
	GetDiseaseWithCrop(ctx context.Context, id uint) (*datastore.DiseaseWithCrop, error)
	ListSolutionsByDisease(ctx context.Context, diseaseID uint) ([]datastore.Solution, error)
	ListFertilizers(ctx context.Context) ([]datastore.Fertilizer, error)
	ListFertilizersByCrop(ctx context.Context, cropID uint) ([]datastore.Fertilizer, error)
	ListAdvisoryByCrop(ctx context.Context, cropID uint) ([]datastore.Advisory, error)
	ListUsers(ctx context.Context) ([]datastore.User, error)
}

// Controller holds the dependencies of the API handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	Store    Store
	Advisory *advisory.Service
	Auth     *auth.Service

	logger         logger.Logger
	authMiddleware echo.MiddlewareFunc
	loginLimiter   echo.MiddlewareFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAuthMiddleware protects every /api route with mw.
func WithAuthMiddleware(mw echo.MiddlewareFunc) Option {
	return func(c *Controller) { c.authMiddleware = mw }
}

// WithLoginLimiter applies mw to the login route.
func WithLoginLimiter(mw echo.MiddlewareFunc) Option {
	return func(c *Controller) { c.loginLimiter = mw }
}

// New creates the controller and registers its routes on e.
func New(e *echo.Echo, store Store, advisorySvc *advisory.Service, authSvc *auth.Service, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, errors.Newf("handlers: store is required").
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}

	c := &Controller{
		Echo:     e,
		Store:    store,
		Advisory: advisorySvc,
		Auth:     authSvc,
		logger:   logger.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Module("api")

	c.initRoutes()
	return c, nil
}

func (c *Controller) initRoutes() {
	if c.Auth != nil {
		var mws []echo.MiddlewareFunc
		if c.loginLimiter != nil {
			mws = append(mws, c.loginLimiter)
		}
		c.Echo.POST("/login", c.Login, mws...)
	}

	c.Group = c.Echo.Group("/api")
	if c.authMiddleware != nil {
		c.Group.Use(c.authMiddleware)
	}

	if c.Advisory != nil {
		c.Group.GET("/dashboard", c.GetDashboard)
		c.Group.GET("/alerts", c.GetAlerts)
	}

	c.Group.GET("/crops", c.ListCrops)
	c.Group.GET("/crops/:id", c.GetCrop)
	c.Group.GET("/crops/:id/diseases", c.ListCropDiseases)
	c.Group.GET("/crops/:id/fertilizers", c.ListCropFertilizers)
	c.Group.GET("/crops/:id/advisory", c.ListCropAdvisory)

	c.Group.GET("/diseases", c.ListDiseases)
	c.Group.GET("/disease/:id", c.GetDisease)
	c.Group.GET("/disease/:id/solutions", c.ListSolutions)
	c.Group.GET("/solutions/:diseaseId", c.ListSolutions)

	c.Group.GET("/fertilizers", c.ListFertilizers)
	c.Group.GET("/users", c.ListUsers)
}

// parseID reads a positive integer path parameter. The first non-empty
// of names is used.
func parseID(ctx echo.Context, what string, names ...string) (uint, error) {
	var raw string
	for _, name := range names {
		if raw = ctx.Param(name); raw != "" {
			break
		}
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.Newf("invalid %s id %q", what, raw).
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}
	return uint(id), nil
}
