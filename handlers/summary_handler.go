package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/digest-scheduler/internal/service"
	"github.com/onurcolak/digest-scheduler/pkg/response"
	"github.com/onurcolak/digest-scheduler/pkg/validator"
)

const (
	dateLayout = "2006-01-02"
	anyFilter  = "all"
)

type summarizer interface {
	Summarize(ctx context.Context, q service.SummaryQuery) (service.Summary, error)
}

// SummaryHandler generates digests on request, outside any schedule.
type SummaryHandler struct {
	summaries summarizer
}

func NewSummaryHandler(summaries summarizer) *SummaryHandler {
	return &SummaryHandler{summaries: summaries}
}

// SummarizeRequest selects the messages to summarize. "all" or an empty
// value leaves a filter off; dates are whole days in the scheduler timezone.
type SummarizeRequest struct {
	GroupID   string `json:"groupId"`
	Sender    string `json:"sender"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// Summarize godoc
// @Summary Summarize messages on demand
// @Description Generates a digest for the selected chat, sender and date range and returns it. Nothing is delivered or recorded in report history.
// @Tags reports
// @Accept json
// @Produce json
// @Param x-digest-auth-key header string true "Control API key"
// @Param request body SummarizeRequest true "Message selection"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/summaries [post]
func (h *SummaryHandler) Summarize(c echo.Context) error {
	var req SummarizeRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	q := service.SummaryQuery{
		ChatID: optionalFilter(req.GroupID),
		Sender: optionalFilter(req.Sender),
	}
	if req.StartDate != "" {
		from, _ := time.Parse(dateLayout, req.StartDate)
		q.From = &from
	}
	if req.EndDate != "" {
		to, _ := time.Parse(dateLayout, req.EndDate)
		q.To = &to
	}

	summary, err := h.summaries.Summarize(c.Request().Context(), q)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSummaryRange) {
			return response.BadRequest(c, err)
		}
		return response.InternalServerError(c, err)
	}

	if summary.Count == 0 {
		return response.OkWithMessage(c, "No messages found to summarize for the selected criteria.", summary)
	}

	return response.Ok(c, summary)
}

func optionalFilter(v string) string {
	if v == anyFilter {
		return ""
	}
	return v
}
