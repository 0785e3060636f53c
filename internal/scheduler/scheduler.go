package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onurcolak/digest-scheduler/internal/service"
	"github.com/onurcolak/digest-scheduler/pkg/logger"
	"github.com/onurcolak/digest-scheduler/pkg/webhook"
)

const DefaultInterval = 5 * time.Second

// commandDrainer matches CommandService.Drain.
type commandDrainer interface {
	Drain(ctx context.Context) (service.DrainResult, error)
}

type scheduleEvaluator interface {
	Evaluate(ctx context.Context, now time.Time) (EvaluateResult, error)
}

// locker guards a tick across processes sharing one transport session.
type locker interface {
	TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, token string) error
}

type alerter interface {
	SendAlert(ctx context.Context, alert webhook.Alert) error
}

type Config struct {
	Interval       time.Duration
	LockKey        string
	LockTTL        time.Duration
	AlertThreshold int // consecutive failing ticks before an alert
}

// Scheduler is the tick loop: every interval it drains the command queue and
// then evaluates schedules, one after the other.
type Scheduler struct {
	commands  commandDrainer
	evaluator scheduleEvaluator
	locker    locker
	alerter   alerter
	config    Config
	now       func() time.Time

	// Internal state
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
	mu       sync.RWMutex

	// Statistics
	lastRunAt         time.Time
	runsCount         int64
	skippedTicks      int64
	commandsProcessed int64
	commandsFailed    int64
	reportsTriggered  int64
	reportsFailed     int64
	lastError         string

	// Alert tracking
	consecutiveFailures int
	lastAlertSentAt     time.Time
}

func NewScheduler(commands commandDrainer, evaluator scheduleEvaluator, config Config) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.LockTTL <= 0 {
		config.LockTTL = 2 * time.Minute
	}

	return &Scheduler{
		commands:  commands,
		evaluator: evaluator,
		config:    config,
		now:       time.Now,
	}
}

// WithLocker makes every tick acquire config.LockKey first.
func (s *Scheduler) WithLocker(l locker) *Scheduler {
	s.locker = l
	return s
}

func (s *Scheduler) WithAlerter(a alerter) *Scheduler {
	s.alerter = a
	return s
}

// StartWithParams starts the loop with a new interval. Non-positive values
// keep the current one.
func (s *Scheduler) StartWithParams(ctx context.Context, intervalSeconds int, alertThreshold int) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is already running")
		return nil
	}
	if intervalSeconds > 0 {
		s.config.Interval = time.Duration(intervalSeconds) * time.Second
	}
	if alertThreshold > 0 {
		s.config.AlertThreshold = alertThreshold
	}
	s.consecutiveFailures = 0
	s.mu.Unlock()

	return s.Start(ctx)
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is already running")
		return nil
	}

	s.running = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	interval := s.config.Interval
	s.mu.Unlock()

	logger.Infof("Starting scheduler with interval: %v", interval)

	go s.run(ctx, interval)

	return nil
}

func (s *Scheduler) run(ctx context.Context, interval time.Duration) {
	defer close(s.doneChan)

	s.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)

		case <-s.stopChan:
			logger.Warnf("Scheduler received stop signal")
			return

		case <-ctx.Done():
			logger.Warnf("Scheduler context cancelled")
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		}
	}
}

// tick runs one pass. Each phase has its own panic boundary so a failure in
// the command queue never stops schedule evaluation.
func (s *Scheduler) tick(ctx context.Context) {
	release, ok := s.acquire(ctx)
	if !ok {
		return
	}
	defer release()

	now := s.now()

	s.mu.Lock()
	s.lastRunAt = now
	s.runsCount++
	runNumber := s.runsCount
	s.mu.Unlock()

	logger.Debugf("[Tick #%d] Starting at %s", runNumber, now.Format(time.RFC3339))

	var drained service.DrainResult
	drainErr := service.Safely(func() error {
		var err error
		drained, err = s.commands.Drain(ctx)
		return err
	})
	if drainErr != nil {
		logger.Errorf("[Tick #%d] Error checking commands: %v", runNumber, drainErr)
	}

	// Schedules stay due and fire on the next tick, after the session is back.
	var evaluated EvaluateResult
	var evalErr error
	if drained.SessionClosing() {
		logger.Infof("[Tick #%d] Logout in progress, skipping schedule evaluation", runNumber)
	} else {
		evalErr = service.Safely(func() error {
			var err error
			evaluated, err = s.evaluator.Evaluate(ctx, s.now())
			return err
		})
		if evalErr != nil {
			logger.Errorf("[Tick #%d] Error in scheduler loop: %v", runNumber, evalErr)
		}
	}

	if drained.Processed > 0 || evaluated.Due > 0 {
		logger.Infof("[Tick #%d] Commands: %d processed, %d failed. Schedules: %d due, %d sent, %d empty, %d failed",
			runNumber, drained.Processed, drained.Failed, evaluated.Due, evaluated.Sent, evaluated.Empty, evaluated.Failed)
	}

	s.record(runNumber, drained, evaluated, errors.Join(drainErr, evalErr))
}

// acquire takes the leader lock when one is configured.
func (s *Scheduler) acquire(ctx context.Context) (func(), bool) {
	if s.locker == nil {
		return func() {}, true
	}

	token := uuid.NewString()
	ok, err := s.locker.TryLock(ctx, s.config.LockKey, token, s.config.LockTTL)
	if err != nil {
		logger.Errorf("Failed to acquire tick lock: %v", err)
		s.mu.Lock()
		s.skippedTicks++
		s.mu.Unlock()
		s.record(0, service.DrainResult{}, EvaluateResult{}, err)
		return nil, false
	}
	if !ok {
		logger.Debugf("Tick lock held by another instance, skipping")
		s.mu.Lock()
		s.skippedTicks++
		s.mu.Unlock()
		return nil, false
	}

	return func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), s.config.LockKey, token); err != nil {
			logger.Warnf("Failed to release tick lock: %v", err)
		}
	}, true
}

// record updates counters. A tick fails when a phase errored or when it
// attempted work and none of it succeeded.
func (s *Scheduler) record(runNumber int64, drained service.DrainResult, evaluated EvaluateResult, err error) {
	attempted := drained.Processed + evaluated.Due
	succeeded := drained.Completed + evaluated.Sent + evaluated.Empty
	failed := err != nil || (attempted > 0 && succeeded == 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.commandsProcessed += int64(drained.Processed)
	s.commandsFailed += int64(drained.Failed)
	s.reportsTriggered += int64(evaluated.Due)
	s.reportsFailed += int64(evaluated.Failed)

	if !failed {
		if s.consecutiveFailures > 0 {
			logger.Debugf("[Tick #%d] Resetting consecutive failure count (was: %d)", runNumber, s.consecutiveFailures)
		}
		s.consecutiveFailures = 0
		return
	}

	s.consecutiveFailures++
	switch {
	case err != nil:
		s.lastError = err.Error()
	case evaluated.Failed > 0:
		s.lastError = fmt.Sprintf("%d schedule(s) failed", evaluated.Failed)
	default:
		s.lastError = fmt.Sprintf("%d command(s) failed", drained.Failed)
	}

	threshold := s.config.AlertThreshold
	logger.Warnf("[Tick #%d] Tick failed (consecutive count: %d/%d)", runNumber, s.consecutiveFailures, threshold)

	// Alert on reaching the threshold and again every threshold ticks after.
	if threshold > 0 && s.alerter != nil && s.consecutiveFailures%threshold == 0 {
		go s.sendAlert(s.consecutiveFailures, s.lastError)
	}
}

func (s *Scheduler) sendAlert(consecutiveFailures int, lastErr string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	alert := webhook.Alert{
		Text:     fmt.Sprintf("Digest scheduler failed %d consecutive ticks", consecutiveFailures),
		Failures: consecutiveFailures,
		LastErr:  lastErr,
		At:       time.Now(),
	}

	if err := s.alerter.SendAlert(ctx, alert); err != nil {
		logger.Errorf("Failed to send alert to webhook: %v", err)
		return
	}

	s.mu.Lock()
	s.lastAlertSentAt = time.Now()
	s.mu.Unlock()
	logger.Infof("Alert sent (consecutive failures: %d)", consecutiveFailures)
}

func (s *Scheduler) Stop() error {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is not running")
		return nil
	}

	s.running = false
	stopChan := s.stopChan
	doneChan := s.doneChan
	s.mu.Unlock()

	close(stopChan)

	// Wait for the current tick to finish
	<-doneChan

	logger.Infof("Scheduler stopped")
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) GetStatus() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := SchedulerStatus{
		Running:                 s.running,
		LastRunAt:               s.lastRunAt,
		RunsCount:               s.runsCount,
		SkippedTicks:            s.skippedTicks,
		CommandsProcessed:       s.commandsProcessed,
		CommandsFailed:          s.commandsFailed,
		ReportsTriggered:        s.reportsTriggered,
		ReportsFailed:           s.reportsFailed,
		Interval:                s.config.Interval,
		ConsecutiveFailingTicks: s.consecutiveFailures,
		LastError:               s.lastError,
		LastAlertSentAt:         s.lastAlertSentAt,
	}

	if s.running && !s.lastRunAt.IsZero() {
		status.NextRunAt = s.lastRunAt.Add(s.config.Interval)
	}

	return status
}

type SchedulerStatus struct {
	Running                 bool          `json:"running"`
	LastRunAt               time.Time     `json:"lastRunAt,omitempty"`
	NextRunAt               time.Time     `json:"nextRunAt,omitempty"`
	RunsCount               int64         `json:"runsCount"`
	SkippedTicks            int64         `json:"skippedTicks"`
	CommandsProcessed       int64         `json:"commandsProcessed"`
	CommandsFailed          int64         `json:"commandsFailed"`
	ReportsTriggered        int64         `json:"reportsTriggered"`
	ReportsFailed           int64         `json:"reportsFailed"`
	Interval                time.Duration `json:"interval" swaggertype:"integer"`
	ConsecutiveFailingTicks int           `json:"consecutiveFailingTicks"`
	LastError               string        `json:"lastError,omitempty"`
	LastAlertSentAt         time.Time     `json:"lastAlertSentAt,omitempty"`
}
