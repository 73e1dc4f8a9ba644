package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListPendingNotifications returns queue entries awaiting the external
// consumer, newest first.
func (c *Controller) ListPendingNotifications(ctx echo.Context) error {
	entries, err := c.store.Queue().ListPending(ctx.Request().Context(), defaultListLimit)
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, entries)
}
