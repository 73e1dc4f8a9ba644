package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/netsentry/netsentry/internal/audit"
	"github.com/netsentry/netsentry/internal/datastore/entities"
	"github.com/netsentry/netsentry/internal/datastore/repository"
)

type createRuleRequest struct {
	audit.RuleInput
	ActorID *uint `json:"actor_id"`
}

type updateRuleRequest struct {
	audit.RulePatch
	ActorID *uint `json:"actor_id"`
}

type deleteRuleRequest struct {
	ActorID *uint `json:"actor_id"`
}

// actor builds the pass-through actor reference plus caller-context
// metadata recorded on audit entries.
func actor(ctx echo.Context, actorID *uint) audit.Actor {
	return audit.Actor{
		ID:       actorID,
		Metadata: map[string]any{"ip": ctx.RealIP()},
	}
}

// ListRules returns all rules, most recently updated first.
func (c *Controller) ListRules(ctx echo.Context) error {
	rules, err := c.rules.List(ctx.Request().Context())
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, rules)
}

// CreateRule creates a rule through the audit engine.
func (c *Controller) CreateRule(ctx echo.Context) error {
	var req createRuleRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	rule, err := c.rules.Create(ctx.Request().Context(), req.RuleInput, actor(ctx, req.ActorID))
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, rule)
}

// UpdateRule applies a partial patch through the audit engine.
func (c *Controller) UpdateRule(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid rule id"})
	}

	var req updateRuleRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	rule, err := c.rules.Update(ctx.Request().Context(), id, req.RulePatch, actor(ctx, req.ActorID))
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, rule)
}

// DeleteRule removes a rule through the audit engine.
func (c *Controller) DeleteRule(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid rule id"})
	}

	var req deleteRuleRequest
	// Body is optional on delete.
	_ = ctx.Bind(&req)

	if err := c.rules.Delete(ctx.Request().Context(), id, actor(ctx, req.ActorID)); err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// ListAudit returns the global audit trail, newest first.
func (c *Controller) ListAudit(ctx echo.Context) error {
	entries, err := c.store.Audit().List(ctx.Request().Context(), repository.AuditFilter{
		Limit: 500,
	})
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, entries)
}

// ListRuleAudit returns the audit trail for one rule.
func (c *Controller) ListRuleAudit(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid rule id"})
	}

	entries, err := c.store.Audit().List(ctx.Request().Context(), repository.AuditFilter{
		TargetType: entities.TargetTypeRule,
		TargetID:   id,
	})
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, entries)
}

func parseIDParam(ctx echo.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
