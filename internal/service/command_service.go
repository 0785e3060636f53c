package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/internal/repository"
	"github.com/onurcolak/digest-scheduler/pkg/database"
	"github.com/onurcolak/digest-scheduler/pkg/logger"
)

// SelfTarget is the SEND_MESSAGE recipient that means the session itself.
const SelfTarget = "self"

const staleCommandError = "interrupted: command was left PROCESSING by a previous run"

type commandQueue interface {
	Create(ctx context.Context, cmdType domain.CommandType, payload json.RawMessage) (*domain.Command, error)
	ListPending(ctx context.Context) ([]domain.Command, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, message string) error
	FailStale(ctx context.Context, olderThan time.Time, message string) (int64, error)
	GetByID(ctx context.Context, id string) (*domain.Command, error)
	List(ctx context.Context, status *domain.CommandStatus, page, pageSize int) ([]domain.Command, int64, error)
}

type statusReader interface {
	Get(ctx context.Context, id string) (*domain.SystemStatus, error)
	Set(ctx context.Context, id string, status domain.ConnectionStatus, qrPayload *string) error
}

type activeScheduleReader interface {
	ListActive(ctx context.Context) ([]domain.Schedule, error)
	GetActiveByID(ctx context.Context, id string) (*domain.Schedule, error)
}

type reportRunner interface {
	GenerateAndDeliver(ctx context.Context, target domain.Target, window domain.Window) (domain.ReportOutcome, error)
}

type chatSyncer interface {
	SyncChats(ctx context.Context) (int, error)
}

type CommandConfig struct {
	StatusID   string
	StaleAfter time.Duration
	Location   *time.Location
}

// DrainResult summarizes one pass over the queue.
type DrainResult struct {
	Processed int  `json:"processed"`
	Completed int  `json:"completed"`
	Failed    int  `json:"failed"`
	Recovered int  `json:"recovered"`
	LoggedOut bool `json:"loggedOut"`

	// LogoutFailed means a logout was requested but did not go through; it is
	// retried on the next pass.
	LogoutFailed bool `json:"logoutFailed"`
}

// SessionClosing reports whether the pass stopped for a logout request.
// Nothing else may be sent on the session in the same tick.
func (r DrainResult) SessionClosing() bool {
	return r.LoggedOut || r.LogoutFailed
}

// CommandService drains the durable command queue, one command at a time.
type CommandService struct {
	queue     commandQueue
	status    statusReader
	schedules activeScheduleReader
	reports   reportRunner
	chats     chatSyncer
	transport Transport
	validator domain.StructValidator
	config    CommandConfig
	now       func() time.Time
}

func NewCommandService(
	queue commandQueue,
	status statusReader,
	schedules activeScheduleReader,
	reports reportRunner,
	chats chatSyncer,
	transport Transport,
	validator domain.StructValidator,
	config CommandConfig,
) *CommandService {
	if config.Location == nil {
		config.Location = time.Local
	}

	return &CommandService{
		queue:     queue,
		status:    status,
		schedules: schedules,
		reports:   reports,
		chats:     chats,
		transport: transport,
		validator: validator,
		config:    config,
		now:       time.Now,
	}
}

// Drain handles a pending logout request first, then every PENDING command in
// creation order. A logout request ends the pass, even when the logout
// itself failed, so nothing is sent on a session being torn down.
func (s *CommandService) Drain(ctx context.Context) (DrainResult, error) {
	var result DrainResult

	requested, err := s.checkLogout(ctx)
	if requested {
		if err != nil {
			result.LogoutFailed = true
			return result, err
		}
		result.LoggedOut = true
		return result, nil
	}
	if err != nil {
		logger.Errorf("Error checking logout command: %v", err)
	}

	if s.config.StaleAfter > 0 {
		n, err := s.queue.FailStale(ctx, s.now().Add(-s.config.StaleAfter), staleCommandError)
		if err != nil {
			logger.Errorf("Failed to recover stale commands: %v", err)
		} else if n > 0 {
			logger.Warnf("Marked %d stale PROCESSING command(s) as FAILED", n)
			result.Recovered = int(n)
		}
	}

	commands, err := s.queue.ListPending(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list pending commands: %w", err)
	}

	for _, cmd := range commands {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		ok, claimed := s.process(ctx, cmd)
		if !claimed {
			continue
		}

		result.Processed++
		if ok {
			result.Completed++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

// checkLogout reports whether a logout was requested. A non-nil error with
// requested set means the logout failed and the status still asks for it.
func (s *CommandService) checkLogout(ctx context.Context) (bool, error) {
	st, err := s.status.Get(ctx, s.config.StatusID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || database.IsMissingTable(err) {
			return false, nil
		}
		return false, err
	}

	if st.Status != domain.ConnectionLogoutRequest {
		return false, nil
	}

	logger.Infof("Received LOGOUT_REQUEST. Logging out...")

	if err := s.transport.Logout(ctx); err != nil {
		return true, fmt.Errorf("failed to log out: %w", err)
	}
	logger.Infof("Client logged out")

	if err := s.status.Set(ctx, s.config.StatusID, domain.ConnectionDisconnected, nil); err != nil {
		logger.Errorf("Failed to mark status DISCONNECTED: %v", err)
	}

	if err := s.transport.Reconnect(ctx); err != nil {
		logger.Errorf("Failed to reinitialize transport after logout: %v", err)
	}

	return true, nil
}

// process runs one command through its lifecycle. claimed is false when the
// command was not ours to run.
func (s *CommandService) process(ctx context.Context, cmd domain.Command) (ok, claimed bool) {
	if err := s.queue.MarkProcessing(ctx, cmd.ID); err != nil {
		if errors.Is(err, repository.ErrAlreadyClaimed) {
			logger.Debugf("Command %s already claimed, skipping", cmd.ID)
		} else {
			logger.Errorf("Failed to claim command %s: %v", cmd.ID, err)
		}
		return false, false
	}

	logger.Infof("Processing command %s (%s)", cmd.ID, cmd.Type)

	err := Safely(func() error { return s.dispatch(ctx, cmd) })
	if err != nil {
		logger.Errorf("Command %s (%s) failed: %v", cmd.ID, cmd.Type, err)
		if markErr := s.queue.MarkFailed(ctx, cmd.ID, err.Error()); markErr != nil {
			logger.Errorf("Failed to mark command %s as failed: %v", cmd.ID, markErr)
		}
		return false, true
	}

	if markErr := s.queue.MarkCompleted(ctx, cmd.ID); markErr != nil {
		logger.Errorf("Failed to mark command %s as completed: %v", cmd.ID, markErr)
		return false, true
	}

	logger.Infof("Command %s completed", cmd.ID)
	return true, true
}

func (s *CommandService) dispatch(ctx context.Context, cmd domain.Command) error {
	payload, err := domain.DecodeCommand(cmd, s.validator)
	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case domain.SendMessage:
		return s.sendMessage(ctx, p)
	case domain.SyncChats:
		n, err := s.chats.SyncChats(ctx)
		if err != nil {
			return err
		}
		logger.Infof("Synced %d group chats", n)
		return nil
	case domain.TriggerReport:
		return s.triggerReports(ctx, p)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownCommand, cmd.Type)
	}
}

func (s *CommandService) sendMessage(ctx context.Context, p domain.SendMessage) error {
	to := p.To
	if to == SelfTarget {
		self, err := s.transport.SelfID(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve own address: %w", err)
		}
		to = self
	}

	if err := s.transport.SendMessage(ctx, to, p.Text); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// triggerReports runs reports outside the daily slot; last_run_at is left
// alone. Per-schedule failures are isolated and only fail the command when no
// schedule succeeded.
func (s *CommandService) triggerReports(ctx context.Context, p domain.TriggerReport) error {
	var schedules []domain.Schedule
	if p.AllSchedules() {
		list, err := s.schedules.ListActive(ctx)
		if err != nil {
			return err
		}
		schedules = list
	} else {
		sched, err := s.schedules.GetActiveByID(ctx, p.ScheduleID)
		if err != nil {
			return err
		}
		schedules = []domain.Schedule{*sched}
	}

	if len(schedules) == 0 {
		logger.Infof("No active schedules to trigger")
		return nil
	}

	window := domain.DayWindow(s.now().In(s.config.Location))

	var lastErr error
	failures := 0
	for _, sched := range schedules {
		err := Safely(func() error {
			outcome, err := s.reports.GenerateAndDeliver(ctx, sched.Target(), window)
			if err == nil {
				logger.Infof("Forced report for schedule %s: %s", sched.ID, outcome)
			}
			return err
		})
		if err != nil {
			logger.Errorf("Forced report for schedule %s failed: %v", sched.ID, err)
			lastErr = err
			failures++
		}
	}

	if failures == len(schedules) {
		return lastErr
	}
	return nil
}

// Enqueue validates a command before it is written to the queue.
func (s *CommandService) Enqueue(ctx context.Context, cmdType domain.CommandType, payload json.RawMessage) (*domain.Command, error) {
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	if _, err := domain.DecodeCommand(domain.Command{Type: cmdType, Payload: types.JSONText(payload)}, s.validator); err != nil {
		return nil, err
	}

	return s.queue.Create(ctx, cmdType, payload)
}

func (s *CommandService) Get(ctx context.Context, id string) (*domain.Command, error) {
	return s.queue.GetByID(ctx, id)
}

func (s *CommandService) List(ctx context.Context, status *domain.CommandStatus, page, pageSize int) ([]domain.Command, int64, error) {
	return s.queue.List(ctx, status, page, pageSize)
}
