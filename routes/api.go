package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/onurcolak/digest-scheduler/environments"
	"github.com/onurcolak/digest-scheduler/handlers"
	"github.com/onurcolak/digest-scheduler/internal/middlewares"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Message   *handlers.MessageHandler
	Command   *handlers.CommandHandler
	Status    *handlers.StatusHandler
	Schedule  *handlers.ScheduleHandler
	Summary   *handlers.SummaryHandler
	Scheduler *handlers.SchedulerHandler
}

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(e *echo.Echo, h Handlers, cfg *environments.Config) {
	e.GET("/health", h.Health.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 base group
	v1 := e.Group("/api/v1")

	control := middlewares.APIKeyAuth(cfg.Auth.ControlAPIKey)
	// The chat bridge may use its own key; operators can always use theirs.
	bridge := middlewares.APIKeyAuth(cfg.Auth.BridgeAPIKey, cfg.Auth.ControlAPIKey)

	messages := v1.Group("/messages", bridge)
	messages.POST("", h.Message.IngestMessage)
	messages.GET("", h.Message.ListMessages)

	status := v1.Group("/status")
	status.GET("", h.Status.GetStatus, bridge)
	status.PUT("", h.Status.UpdateStatus, bridge)
	status.POST("/logout", h.Status.RequestLogout, control)

	commands := v1.Group("/commands", control)
	commands.POST("", h.Command.CreateCommand)
	commands.GET("", h.Command.ListCommands)
	commands.GET("/:id", h.Command.GetCommand)

	v1.GET("/schedules", h.Schedule.ListSchedules, control)
	v1.GET("/reports", h.Schedule.ListReports, control)
	v1.GET("/chats", h.Schedule.ListChats, control)
	v1.POST("/summaries", h.Summary.Summarize, control)

	schedulerGroup := v1.Group("/scheduler", control)
	schedulerGroup.POST("/start", h.Scheduler.StartScheduler)
	schedulerGroup.POST("/stop", h.Scheduler.StopScheduler)
	schedulerGroup.GET("/status", h.Scheduler.GetSchedulerStatus)
}
