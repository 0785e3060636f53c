package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/digest-scheduler/internal/scheduler"
	"github.com/onurcolak/digest-scheduler/pkg/response"
	"github.com/onurcolak/digest-scheduler/pkg/validator"
)

type tickLoop interface {
	StartWithParams(ctx context.Context, intervalSeconds int, alertThreshold int) error
	Stop() error
	IsRunning() bool
	GetStatus() scheduler.SchedulerStatus
}

type SchedulerHandler struct {
	scheduler tickLoop
	ctx       context.Context
}

type StartSchedulerRequest struct {
	Interval       *int `json:"interval,omitempty" validate:"omitempty,min=1,max=3600"`
	AlertThreshold *int `json:"alertThreshold,omitempty" validate:"omitempty,min=1"`
}

func NewSchedulerHandler(sched tickLoop, ctx context.Context) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: sched,
		ctx:       ctx,
	}
}

// StartScheduler godoc
// @Summary Start the tick loop
// @Description Starts draining commands and evaluating schedules. Interval is in seconds.
// @Tags scheduler
// @Accept json
// @Produce json
// @Param x-digest-auth-key header string true "Control API key"
// @Param request body StartSchedulerRequest false "Scheduler parameters (optional)"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduler/start [post]
func (h *SchedulerHandler) StartScheduler(c echo.Context) error {
	if h.scheduler.IsRunning() {
		return response.OkWithMessage(c, "Scheduler is already running", h.scheduler.GetStatus())
	}

	var req StartSchedulerRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	interval, threshold := 0, 0
	if req.Interval != nil {
		interval = *req.Interval
	}
	if req.AlertThreshold != nil {
		threshold = *req.AlertThreshold
	}

	// The loop outlives this request, so it runs on the server context.
	if err := h.scheduler.StartWithParams(h.ctx, interval, threshold); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Scheduler started successfully", h.scheduler.GetStatus())
}

// StopScheduler godoc
// @Summary Stop the tick loop
// @Description Stops the loop after the current tick finishes
// @Tags scheduler
// @Accept json
// @Produce json
// @Param x-digest-auth-key header string true "Control API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduler/stop [post]
func (h *SchedulerHandler) StopScheduler(c echo.Context) error {
	if !h.scheduler.IsRunning() {
		return response.OkWithMessage(c, "Scheduler is already stopped", h.scheduler.GetStatus())
	}

	if err := h.scheduler.Stop(); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Scheduler stopped successfully", h.scheduler.GetStatus())
}

// GetSchedulerStatus godoc
// @Summary Get scheduler status
// @Description Returns tick counters, failure streak and last alert time
// @Tags scheduler
// @Accept json
// @Produce json
// @Param x-digest-auth-key header string true "Control API key"
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/scheduler/status [get]
func (h *SchedulerHandler) GetSchedulerStatus(c echo.Context) error {
	return response.Ok(c, h.scheduler.GetStatus())
}
