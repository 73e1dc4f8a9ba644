// Package api exposes the HTTP surface. It is a thin collaborator: handlers
// translate between HTTP and the core components and hold no business
// logic of their own.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/netsentry/netsentry/internal/audit"
	"github.com/netsentry/netsentry/internal/datastore"
	"github.com/netsentry/netsentry/internal/datastore/repository"
	"github.com/netsentry/netsentry/internal/errors"
	"github.com/netsentry/netsentry/internal/ingest"
	"github.com/netsentry/netsentry/internal/logger"
	"github.com/netsentry/netsentry/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultListLimit = 200

// Controller wires the HTTP routes to the core components.
type Controller struct {
	echo     *echo.Echo
	store    *datastore.Store
	ingestor *ingest.Ingestor
	rules    *audit.Engine
	metrics  *metrics.Metrics
	log      logger.Logger
}

// New creates the HTTP controller and registers all routes.
func New(store *datastore.Store, ingestor *ingest.Ingestor, rules *audit.Engine, m *metrics.Metrics, log logger.Logger) *Controller {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	c := &Controller{
		echo:     e,
		store:    store,
		ingestor: ingestor,
		rules:    rules,
		metrics:  m,
		log:      log.With(logger.String("component", "api")),
	}

	e.GET("/health", c.Health)

	e.POST("/api/alerts", c.PostAlert)
	e.GET("/api/alerts", c.ListAlerts)

	e.GET("/api/rules", c.ListRules)
	e.POST("/api/rules", c.CreateRule)
	e.PUT("/api/rules/:id", c.UpdateRule)
	e.DELETE("/api/rules/:id", c.DeleteRule)

	e.GET("/api/audit", c.ListAudit)
	e.GET("/api/rules/:id/audit", c.ListRuleAudit)

	e.GET("/api/notifications/pending", c.ListPendingNotifications)

	if registry := m.Registry(); registry != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return c
}

// Echo exposes the router for tests.
func (c *Controller) Echo() *echo.Echo {
	return c.echo
}

// Start begins serving on the given address. Blocks until shutdown.
func (c *Controller) Start(bind string) error {
	err := c.echo.Start(bind)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (c *Controller) Shutdown(ctx context.Context) error {
	return c.echo.Shutdown(ctx)
}

// Health reports liveness.
func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// handleError maps core errors to HTTP outcomes: validation failures are
// client rejections, missing rules are 404, everything else is an internal
// failure that gets logged.
func (c *Controller) handleError(ctx echo.Context, err error) error {
	if errors.IsValidation(err) {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if errors.Is(err, repository.ErrRuleNotFound) {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "not_found"})
	}
	c.log.Error("request failed",
		logger.String("path", ctx.Path()),
		logger.Error(err))
	return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "internal_error"})
}
