package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/internal/repository"
	"github.com/onurcolak/digest-scheduler/pkg/response"
	"github.com/onurcolak/digest-scheduler/pkg/validator"
)

type commandService interface {
	Enqueue(ctx context.Context, cmdType domain.CommandType, payload json.RawMessage) (*domain.Command, error)
	Get(ctx context.Context, id string) (*domain.Command, error)
	List(ctx context.Context, status *domain.CommandStatus, page, pageSize int) ([]domain.Command, int64, error)
}

type CommandHandler struct {
	service commandService
}

func NewCommandHandler(service commandService) *CommandHandler {
	return &CommandHandler{service: service}
}

type CreateCommandRequest struct {
	Type    domain.CommandType `json:"type" validate:"required,oneof=SEND_MESSAGE SYNC_CHATS TRIGGER_REPORT"`
	Payload json.RawMessage    `json:"payload,omitempty" swaggertype:"object"`
}

// CreateCommand godoc
// @Summary Enqueue a command
// @Description Queues a command for the tick loop. SEND_MESSAGE takes {to, text} (to may be "self"); SYNC_CHATS takes no payload; TRIGGER_REPORT takes {schedule_id} or {all: true}.
// @Tags commands
// @Accept json
// @Produce json
// @Param x-digest-auth-key header string true "Control API key"
// @Param command body CreateCommandRequest true "Command to enqueue"
// @Success 202 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/commands [post]
func (h *CommandHandler) CreateCommand(c echo.Context) error {
	var req CreateCommandRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	cmd, err := h.service.Enqueue(c.Request().Context(), req.Type, req.Payload)
	if err != nil {
		var payloadErr *domain.PayloadError
		switch {
		case errors.As(err, &payloadErr):
			var ve *validator.ValidationError
			if errors.As(payloadErr.Err, &ve) {
				return validator.HandleValidationError(c, ve)
			}
			return response.UnprocessableEntity(c, err)
		case errors.Is(err, domain.ErrUnknownCommand):
			return response.BadRequest(c, err)
		}
		return response.InternalServerError(c, err)
	}

	return response.Accepted(c, "Command queued", cmd)
}

// ListCommands godoc
// @Summary List commands
// @Description Retrieves a paginated list of queued commands, newest first, with an optional status filter
// @Tags commands
// @Accept json
// @Produce json
// @Param x-digest-auth-key header string true "Control API key"
// @Param status query string false "Filter by status (PENDING, PROCESSING, COMPLETED, FAILED)"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/commands [get]
func (h *CommandHandler) ListCommands(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	var status *domain.CommandStatus
	if s := c.QueryParam("status"); s != "" {
		parsed := domain.CommandStatus(s)
		if !parsed.Valid() {
			return response.BadRequest(c, fmt.Errorf("unknown status %q", s))
		}
		status = &parsed
	}

	commands, totalCount, err := h.service.List(c.Request().Context(), status, page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, commands, page, pageSize, totalCount)
}

// GetCommand godoc
// @Summary Get a command
// @Description Returns one command with its current status and error, if any
// @Tags commands
// @Accept json
// @Produce json
// @Param x-digest-auth-key header string true "Control API key"
// @Param id path string true "Command ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/commands/{id} [get]
func (h *CommandHandler) GetCommand(c echo.Context) error {
	cmd, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "command not found")
		}
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, cmd)
}
