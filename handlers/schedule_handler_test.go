package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/internal/service"
	"github.com/onurcolak/digest-scheduler/pkg/response"
)

type fakeScheduleViews struct{}

func (fakeScheduleViews) ListActive(ctx context.Context) ([]service.ScheduleView, error) {
	next := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	return []service.ScheduleView{{
		Schedule:  domain.Schedule{ID: "s1", TimeOfDay: "09:00", TargetType: domain.TargetSelf, IsActive: true},
		NextRunAt: &next,
	}}, nil
}

type fakeReportHistory struct {
	owner string
}

func (f *fakeReportHistory) History(ctx context.Context, ownerID string, page, pageSize int) ([]domain.ReportRecord, int64, error) {
	f.owner = ownerID
	return []domain.ReportRecord{{ID: "r1", Text: "digest"}}, 1, nil
}

type fakeChatLister struct{}

func (fakeChatLister) List(ctx context.Context) ([]domain.Chat, error) {
	return []domain.Chat{{ID: "1@g.us", DisplayName: "Crew"}}, nil
}

func TestListSchedules_IncludesNextRun(t *testing.T) {
	e := echo.New()
	handler := NewScheduleHandler(fakeScheduleViews{}, &fakeReportHistory{}, fakeChatLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil)
	rec := httptest.NewRecorder()
	if err := handler.ListSchedules(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ListSchedules returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0]["id"] != "s1" || resp.Data[0]["nextRunAt"] != "2024-03-11T09:00:00Z" {
		t.Errorf("unexpected schedules: %v", resp.Data)
	}
}

func TestListReports_Paginated(t *testing.T) {
	e := echo.New()
	history := &fakeReportHistory{}
	handler := NewScheduleHandler(fakeScheduleViews{}, history, fakeChatLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports?ownerId=u1&pageSize=5", nil)
	rec := httptest.NewRecorder()
	if err := handler.ListReports(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ListReports returned error: %v", err)
	}

	var resp response.PaginatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if history.owner != "u1" || resp.TotalCount != 1 || resp.TotalPages != 1 || resp.PageSize != 5 {
		t.Errorf("unexpected response %+v owner=%q", resp, history.owner)
	}
}

func TestListChats(t *testing.T) {
	e := echo.New()
	handler := NewScheduleHandler(fakeScheduleViews{}, &fakeReportHistory{}, fakeChatLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
	rec := httptest.NewRecorder()
	if err := handler.ListChats(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ListChats returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
