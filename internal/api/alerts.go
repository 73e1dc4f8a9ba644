package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/netsentry/netsentry/internal/datastore/repository"
	"github.com/netsentry/netsentry/internal/ingest"
)

// PostAlert ingests one alert synchronously, returning the assigned ID.
func (c *Controller) PostAlert(ctx echo.Context) error {
	var raw ingest.RawEvent
	if err := ctx.Bind(&raw); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	id, err := c.ingestor.Ingest(ctx.Request().Context(), raw)
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, map[string]any{"status": "ok", "id": id})
}

// ListAlerts returns recent alerts, newest first.
func (c *Controller) ListAlerts(ctx echo.Context) error {
	alerts, err := c.store.Alerts().List(ctx.Request().Context(), repository.AlertFilter{
		Severity: ctx.QueryParam("severity"),
		Limit:    defaultListLimit,
	})
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, alerts)
}
