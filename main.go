package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/onurcolak/digest-scheduler/environments"
	"github.com/onurcolak/digest-scheduler/handlers"
	"github.com/onurcolak/digest-scheduler/internal/middlewares"
	"github.com/onurcolak/digest-scheduler/internal/repository"
	"github.com/onurcolak/digest-scheduler/internal/scheduler"
	"github.com/onurcolak/digest-scheduler/internal/service"
	"github.com/onurcolak/digest-scheduler/pkg/database"
	"github.com/onurcolak/digest-scheduler/pkg/gemini"
	"github.com/onurcolak/digest-scheduler/pkg/logger"
	"github.com/onurcolak/digest-scheduler/pkg/redis"
	"github.com/onurcolak/digest-scheduler/pkg/telegram"
	"github.com/onurcolak/digest-scheduler/pkg/transport"
	"github.com/onurcolak/digest-scheduler/pkg/validator"
	"github.com/onurcolak/digest-scheduler/pkg/webhook"
	"github.com/onurcolak/digest-scheduler/routes"

	_ "github.com/onurcolak/digest-scheduler/docs" // swagger docs
)

// @title Digest Scheduler API
// @version 1.0
// @description Daily chat digest scheduling and command orchestration

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	cfg, err := environments.Load()
	if err != nil {
		// Logger is not configured yet; use defaults so the error is visible.
		logger.Init(logger.Options{Level: "info"})
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer logger.Sync()

	// Hard-fail if required secrets are missing
	if cfg.Auth.ControlAPIKey == "" {
		logger.Fatalf("CONTROL_API_KEY is required but not set")
	}
	if len(cfg.Generation.APIKeys) == 0 {
		logger.Fatalf("GEMINI_API_KEYS (or GEMINI_API_KEY) is required but not set")
	}

	logger.Infof("Starting Digest Scheduler...")

	loc := cfg.Scheduler.Location()
	logger.Infof("Scheduler timezone: %s", loc)

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Leader lock is optional; without it this must be the only instance.
	var lockClient *redis.Client
	if cfg.Redis.Enabled {
		lockClient, err = redis.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Warnf("Valkey not available, tick lock disabled: %v", err)
			lockClient = nil
		}
	}

	chatTransport, err := newTransport(cfg.Transport)
	if err != nil {
		logger.Fatalf("Failed to initialize transport: %v", err)
	}

	generator := gemini.NewClient(gemini.Config{Model: cfg.Generation.Model})
	logger.Infof("Generation model: %s (%d credential(s))", generator.Model(), len(cfg.Generation.APIKeys))

	// Initialize repositories
	messageRepo := repository.NewMessageRepository(db)
	chatRepo := repository.NewChatRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	commandRepo := repository.NewCommandRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Initialize services
	reportService := service.NewReportService(
		messageRepo,
		chatRepo,
		reportRepo,
		generator,
		chatTransport,
		cfg.Generation.APIKeys,
		loc,
	)
	chatService := service.NewChatService(chatRepo, chatTransport, cfg.Scheduler.OwnerID)
	messageService := service.NewMessageService(messageRepo, chatRepo, cfg.Scheduler.OwnerID)
	statusService := service.NewStatusService(statusRepo, cfg.Scheduler.StatusID)
	scheduleService := service.NewScheduleService(scheduleRepo, loc)
	validate := validator.New()
	commandService := service.NewCommandService(
		commandRepo,
		statusRepo,
		scheduleRepo,
		reportService,
		chatService,
		chatTransport,
		validate,
		service.CommandConfig{
			StatusID:   cfg.Scheduler.StatusID,
			StaleAfter: cfg.Scheduler.StaleAfter,
			Location:   loc,
		},
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize tick loop
	evaluator := scheduler.NewEvaluator(scheduleRepo, reportService, loc)
	sched := scheduler.NewScheduler(commandService, evaluator, scheduler.Config{
		Interval:       cfg.Scheduler.TickInterval,
		LockKey:        cfg.Redis.LockKey,
		LockTTL:        cfg.Redis.LockTTL,
		AlertThreshold: cfg.Alert.IterationCount,
	})
	if lockClient != nil {
		sched.WithLocker(lockClient)
	}
	if cfg.Alert.WebhookURL != "" {
		alerts := webhook.NewWebhookClient(cfg.Alert.WebhookURL, 10*time.Second)
		sched.WithAlerter(alerts)
		logger.Infof("Alert webhook configured: %s", alerts.GetURL())
	}

	// Initialize handlers
	var healthHandler *handlers.HealthHandler
	if lockClient != nil {
		healthHandler = handlers.NewHealthHandler(db, lockClient)
	} else {
		healthHandler = handlers.NewHealthHandler(db, nil)
	}

	if cfg.Scheduler.AutoStart {
		logger.Infof("Auto-starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			logger.Warnf("Failed to auto-start scheduler: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			middlewares.APIKeyHeader,
		},
	}))

	routes.RegisterRoutes(e, routes.Handlers{
		Health:    healthHandler,
		Message:   handlers.NewMessageHandler(messageService),
		Command:   handlers.NewCommandHandler(commandService),
		Status:    handlers.NewStatusHandler(statusService),
		Schedule:  handlers.NewScheduleHandler(scheduleService, reportService, chatService),
		Summary:   handlers.NewSummaryHandler(reportService),
		Scheduler: handlers.NewSchedulerHandler(sched, ctx),
	}, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Stop the tick loop first so no report is cut off mid-send.
	if sched.IsRunning() {
		logger.Infof("Stopping scheduler...")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()

		done := make(chan error, 1)
		go func() {
			done <- sched.Stop()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Errorf("Error stopping scheduler: %v", err)
			} else {
				logger.Infof("Scheduler stopped successfully")
			}
		case <-stopCtx.Done():
			logger.Warnf("Scheduler stop timeout, forcing shutdown")
		}
	}

	cancel()

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	logger.Infof("Closing database connection...")
	if err := db.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	}

	if lockClient != nil {
		logger.Infof("Closing Valkey connection...")
		if err := lockClient.Close(); err != nil {
			logger.Errorf("Error closing Valkey: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}

// newTransport picks the chat session backend.
func newTransport(cfg environments.TransportConfig) (service.Transport, error) {
	switch cfg.Kind {
	case "telegram":
		client, err := telegram.NewClient(telegram.Config{
			Token:   cfg.TelegramToken,
			ChatIDs: cfg.TelegramChatIDs,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		client := transport.NewClient(transport.Config{
			URL:     cfg.URL,
			AuthKey: cfg.AuthKey,
			Timeout: cfg.Timeout,
		})
		logger.Infof("Chat bridge configured: %s", client.URL())
		return client, nil
	}
}
