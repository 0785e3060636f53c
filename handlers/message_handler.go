package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/pkg/response"
	"github.com/onurcolak/digest-scheduler/pkg/validator"
)

type messageService interface {
	Ingest(ctx context.Context, msg domain.Message, chatName string) error
	List(ctx context.Context, chatID string, page, pageSize int) ([]domain.Message, int64, error)
}

type MessageHandler struct {
	service messageService
}

func NewMessageHandler(service messageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// IngestMessageRequest is one message observed by the chat bridge.
type IngestMessageRequest struct {
	TransportID string    `json:"transportId" validate:"required"`
	ChatID      string    `json:"chatId" validate:"required"`
	ChatName    string    `json:"chatName,omitempty"`
	Sender      string    `json:"sender" validate:"required"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp" validate:"required"`
	MediaURL    *string   `json:"mediaUrl,omitempty" validate:"omitempty,url"`
}

// IngestMessage godoc
// @Summary Ingest a chat message
// @Description Stores a message seen by the chat bridge. Re-sending the same transportId updates the stored row instead of adding a new one.
// @Tags messages
// @Accept json
// @Produce json
// @Param x-digest-auth-key header string true "Bridge or control API key"
// @Param message body IngestMessageRequest true "Message to store"
// @Success 201 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/messages [post]
func (h *MessageHandler) IngestMessage(c echo.Context) error {
	var req IngestMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	msg := domain.Message{
		TransportID: req.TransportID,
		ChatID:      req.ChatID,
		Sender:      req.Sender,
		Content:     req.Content,
		Timestamp:   req.Timestamp,
		MediaURL:    req.MediaURL,
	}

	if err := h.service.Ingest(c.Request().Context(), msg, req.ChatName); err != nil {
		if errors.Is(err, domain.ErrMissingTransportID) {
			return response.UnprocessableEntity(c, err)
		}
		return response.InternalServerError(c, err)
	}

	return response.Created(c, "Message stored", map[string]any{
		"transportId": msg.TransportID,
	})
}

// ListMessages godoc
// @Summary List ingested messages
// @Description Retrieves a paginated list of stored messages, newest first, optionally for one chat
// @Tags messages
// @Accept json
// @Produce json
// @Param x-digest-auth-key header string true "Bridge or control API key"
// @Param chatId query string false "Filter by chat id"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/messages [get]
func (h *MessageHandler) ListMessages(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	messages, totalCount, err := h.service.List(c.Request().Context(), c.QueryParam("chatId"), page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, messages, page, pageSize, totalCount)
}
