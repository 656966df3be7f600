package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/datallboy/gofetch/internal/app"
	"github.com/datallboy/gofetch/internal/domain"
	"github.com/labstack/echo/v5"
)

// Intake is the orchestrator entry point used to queue URLs.
type Intake interface {
	Fetch(ctx context.Context, rawURL string, opts domain.FetchOptions) (domain.Outcome, error)
}

type QueueController struct {
	App    *app.Context
	Intake Intake
}

// Enqueue accepts {"urls": [...]} and appends every valid URL to the queue file.
func (ctrl *QueueController) Enqueue(c *echo.Context) error {
	var req EnqueueRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
	}
	if len(req.URLs) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no URLs provided"})
	}

	resp := EnqueueResponse{Rejected: []int{}}
	opts := domain.FetchOptions{Queue: domain.QueueOn}

	for i, u := range req.URLs {
		outcome, _ := ctrl.Intake.Fetch(c.Request().Context(), u, opts)
		if outcome == domain.OutcomeQueued {
			resp.Accepted++
		} else {
			resp.Rejected = append(resp.Rejected, i)
		}
	}

	pending, err := ctrl.App.Queue.Len()
	if err != nil {
		ctrl.App.Logger.Warn("Could not count queue: %v", err)
	}
	resp.Pending = pending

	status := http.StatusAccepted
	if resp.Accepted == 0 {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, resp)
}

// Status reports how many entries are waiting for the next processor pass.
func (ctrl *QueueController) Status(c *echo.Context) error {
	pending, err := ctrl.App.Queue.Len()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, QueueStatus{Pending: pending})
}
