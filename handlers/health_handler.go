package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/digest-scheduler/pkg/response"
)

type dbPinger interface {
	PingContext(ctx context.Context) error
}

type lockPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health checks.
type HealthHandler struct {
	db           dbPinger
	lock         lockPinger
	checkTimeout time.Duration
}

// NewHealthHandler takes a nil lock when the leader lock is disabled.
func NewHealthHandler(db dbPinger, lock lockPinger) *HealthHandler {
	return &HealthHandler{
		db:           db,
		lock:         lock,
		checkTimeout: 2 * time.Second,
	}
}

// Health returns overall status and basic component statuses (DB and Valkey).
// @Summary Health check
// @Description Returns overall status with DB and Valkey connectivity results. Responds 503 when the database is unreachable.
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	dbStatus := "up"
	if h.db == nil {
		dbStatus = "down"
		overallStatus = "down"
	} else if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "down"
		overallStatus = "down"
	}

	lockStatus := "disabled"
	if h.lock != nil {
		if err := h.lock.Ping(ctx); err != nil {
			lockStatus = "down"
			if overallStatus == "ok" {
				overallStatus = "degraded"
			}
		} else {
			lockStatus = "up"
		}
	}

	body := map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"database": map[string]any{
				"status": dbStatus,
			},
			"valkey": map[string]any{
				"status": lockStatus,
			},
		},
	}

	if overallStatus == "down" {
		return response.ServiceUnavailable(c, body)
	}
	return c.JSON(http.StatusOK, body)
}
