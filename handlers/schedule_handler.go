package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/internal/service"
	"github.com/onurcolak/digest-scheduler/pkg/response"
)

type scheduleService interface {
	ListActive(ctx context.Context) ([]service.ScheduleView, error)
}

type reportHistory interface {
	History(ctx context.Context, ownerID string, page, pageSize int) ([]domain.ReportRecord, int64, error)
}

type chatLister interface {
	List(ctx context.Context) ([]domain.Chat, error)
}

// ScheduleHandler serves read-only views of schedules, chats and reports.
// Schedules themselves are edited elsewhere.
type ScheduleHandler struct {
	schedules scheduleService
	reports   reportHistory
	chats     chatLister
}

func NewScheduleHandler(schedules scheduleService, reports reportHistory, chats chatLister) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, reports: reports, chats: chats}
}

// ListSchedules godoc
// @Summary List active schedules
// @Description Returns active schedules with their next fire time in the scheduler timezone
// @Tags schedules
// @Produce json
// @Param x-digest-auth-key header string true "Control API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/schedules [get]
func (h *ScheduleHandler) ListSchedules(c echo.Context) error {
	views, err := h.schedules.ListActive(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, views)
}

// ListReports godoc
// @Summary List generated reports
// @Description Retrieves a paginated list of generated digests, newest first
// @Tags reports
// @Produce json
// @Param x-digest-auth-key header string true "Control API key"
// @Param ownerId query string false "Filter by owner"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/reports [get]
func (h *ScheduleHandler) ListReports(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	reports, totalCount, err := h.reports.History(c.Request().Context(), c.QueryParam("ownerId"), page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, reports, page, pageSize, totalCount)
}

// ListChats godoc
// @Summary List synced chats
// @Description Returns the group chats stored by the last SYNC_CHATS command
// @Tags chats
// @Produce json
// @Param x-digest-auth-key header string true "Control API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/chats [get]
func (h *ScheduleHandler) ListChats(c echo.Context) error {
	chats, err := h.chats.List(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, chats)
}
