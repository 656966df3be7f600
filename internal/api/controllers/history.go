package controllers

import (
	"net/http"
	"strconv"

	"github.com/datallboy/gofetch/internal/app"
	"github.com/labstack/echo/v5"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type HistoryController struct {
	App *app.Context
}

func (ctrl *HistoryController) List(c *echo.Context) error {
	if ctrl.App.Store == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "history is disabled"})
	}

	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = min(n, maxHistoryLimit)
	}

	ctx := c.Request().Context()
	items, err := ctrl.App.Store.RecentTransfers(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	totals, err := ctrl.App.Store.CountByOutcome(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, HistoryResponse{Items: items, Totals: totals})
}
