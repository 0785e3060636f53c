package handlers

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/internal/repository"
	"github.com/onurcolak/digest-scheduler/pkg/database"
	"github.com/onurcolak/digest-scheduler/pkg/response"
	"github.com/onurcolak/digest-scheduler/pkg/validator"
)

type statusService interface {
	Get(ctx context.Context) (*domain.SystemStatus, error)
	Set(ctx context.Context, status domain.ConnectionStatus, qrPayload *string) error
	RequestLogout(ctx context.Context) error
}

type StatusHandler struct {
	service statusService
}

func NewStatusHandler(service statusService) *StatusHandler {
	return &StatusHandler{service: service}
}

type UpdateStatusRequest struct {
	Status    domain.ConnectionStatus `json:"status" validate:"required,oneof=INIT QR_READY READY DISCONNECTED"`
	QRPayload *string                 `json:"qrPayload,omitempty"`
}

// GetStatus godoc
// @Summary Get transport connection status
// @Tags status
// @Produce json
// @Param x-digest-auth-key header string true "Bridge or control API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/status [get]
func (h *StatusHandler) GetStatus(c echo.Context) error {
	st, err := h.service.Get(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || database.IsMissingTable(err) {
			return response.NotFound(c, "no status reported yet")
		}
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, st)
}

// UpdateStatus godoc
// @Summary Report transport connection status
// @Description Called by the chat bridge as its session moves through INIT, QR_READY, READY and DISCONNECTED
// @Tags status
// @Accept json
// @Produce json
// @Param x-digest-auth-key header string true "Bridge or control API key"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/status [put]
func (h *StatusHandler) UpdateStatus(c echo.Context) error {
	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	if err := h.service.Set(c.Request().Context(), req.Status, req.QRPayload); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Status updated", map[string]any{"status": req.Status})
}

// RequestLogout godoc
// @Summary Request a transport logout
// @Description Marks the session for logout; the tick loop logs out and reconnects on its next pass before running any other command
// @Tags status
// @Produce json
// @Param x-digest-auth-key header string true "Control API key"
// @Success 202 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/status/logout [post]
func (h *StatusHandler) RequestLogout(c echo.Context) error {
	if err := h.service.RequestLogout(c.Request().Context()); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Accepted(c, "Logout requested", map[string]any{"status": domain.ConnectionLogoutRequest})
}
