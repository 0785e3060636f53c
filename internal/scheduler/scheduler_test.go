package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/onurcolak/digest-scheduler/internal/service"
	"github.com/onurcolak/digest-scheduler/pkg/webhook"
)

// callLog records the order phases ran in.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeDrainer struct {
	log    *callLog
	result service.DrainResult
	err    error
	panics bool
}

func (f *fakeDrainer) Drain(ctx context.Context) (service.DrainResult, error) {
	f.log.add("drain")
	if f.panics {
		panic("queue exploded")
	}
	return f.result, f.err
}

type fakeEvaluator struct {
	log    *callLog
	result EvaluateResult
	err    error
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, now time.Time) (EvaluateResult, error) {
	f.log.add("evaluate")
	return f.result, f.err
}

type fakeLocker struct {
	held      bool
	err       error
	unlocked  int
	lastToken string
}

func (f *fakeLocker) TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	f.lastToken = token
	return !f.held, f.err
}

func (f *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	f.unlocked++
	return nil
}

type fakeAlerter struct {
	mu     sync.Mutex
	alerts []webhook.Alert
	sent   chan struct{}
}

func (f *fakeAlerter) SendAlert(ctx context.Context, alert webhook.Alert) error {
	f.mu.Lock()
	f.alerts = append(f.alerts, alert)
	f.mu.Unlock()
	f.sent <- struct{}{}
	return nil
}

func TestScheduler_TickRunsCommandsBeforeSchedules(t *testing.T) {
	log := &callLog{}
	s := NewScheduler(
		&fakeDrainer{log: log, result: service.DrainResult{Processed: 2, Completed: 2}},
		&fakeEvaluator{log: log, result: EvaluateResult{Due: 1, Sent: 1}},
		Config{Interval: time.Minute},
	)

	s.tick(context.Background())

	calls := log.snapshot()
	if len(calls) != 2 || calls[0] != "drain" || calls[1] != "evaluate" {
		t.Fatalf("unexpected call order %v", calls)
	}

	status := s.GetStatus()
	if status.RunsCount != 1 || status.CommandsProcessed != 2 || status.ReportsTriggered != 1 {
		t.Errorf("unexpected status %+v", status)
	}
	if status.ConsecutiveFailingTicks != 0 {
		t.Errorf("expected no failing ticks, got %d", status.ConsecutiveFailingTicks)
	}
}

func TestScheduler_PanicInDrainDoesNotSkipEvaluation(t *testing.T) {
	log := &callLog{}
	s := NewScheduler(&fakeDrainer{log: log, panics: true}, &fakeEvaluator{log: log}, Config{})

	s.tick(context.Background())

	calls := log.snapshot()
	if len(calls) != 2 || calls[1] != "evaluate" {
		t.Fatalf("evaluation must still run, got %v", calls)
	}
	status := s.GetStatus()
	if status.ConsecutiveFailingTicks != 1 || status.LastError == "" {
		t.Errorf("expected a failing tick with error, got %+v", status)
	}
}

func TestScheduler_LogoutSkipsEvaluationInSameTick(t *testing.T) {
	log := &callLog{}
	s := NewScheduler(
		&fakeDrainer{log: log, result: service.DrainResult{LoggedOut: true}},
		&fakeEvaluator{log: log, result: EvaluateResult{Due: 1, Sent: 1}},
		Config{},
	)

	s.tick(context.Background())

	calls := log.snapshot()
	if len(calls) != 1 || calls[0] != "drain" {
		t.Fatalf("schedules must not be evaluated after a logout, got %v", calls)
	}
	status := s.GetStatus()
	if status.ReportsTriggered != 0 || status.ConsecutiveFailingTicks != 0 {
		t.Errorf("a clean logout tick is neither a send nor a failure, got %+v", status)
	}
}

func TestScheduler_FailedLogoutSkipsEvaluationAndCountsFailure(t *testing.T) {
	log := &callLog{}
	s := NewScheduler(
		&fakeDrainer{log: log, result: service.DrainResult{LogoutFailed: true}, err: errors.New("failed to log out: bridge down")},
		&fakeEvaluator{log: log, result: EvaluateResult{Due: 1, Sent: 1}},
		Config{},
	)

	s.tick(context.Background())

	calls := log.snapshot()
	if len(calls) != 1 || calls[0] != "drain" {
		t.Fatalf("schedules must not be evaluated while a logout is pending, got %v", calls)
	}
	status := s.GetStatus()
	if status.ConsecutiveFailingTicks != 1 || status.LastError == "" {
		t.Errorf("expected a failing tick, got %+v", status)
	}
}

func TestScheduler_ConsecutiveFailuresResetOnSuccess(t *testing.T) {
	log := &callLog{}
	drainer := &fakeDrainer{log: log, err: errors.New("db down")}
	s := NewScheduler(drainer, &fakeEvaluator{log: log}, Config{AlertThreshold: 5})

	s.tick(context.Background())
	s.tick(context.Background())
	if got := s.GetStatus().ConsecutiveFailingTicks; got != 2 {
		t.Fatalf("expected 2 failing ticks, got %d", got)
	}

	drainer.err = nil
	s.tick(context.Background())
	if got := s.GetStatus().ConsecutiveFailingTicks; got != 0 {
		t.Errorf("expected reset, got %d", got)
	}
}

func TestScheduler_AllSchedulesFailingCountsAsFailure(t *testing.T) {
	log := &callLog{}
	s := NewScheduler(&fakeDrainer{log: log}, &fakeEvaluator{log: log, result: EvaluateResult{Due: 2, Failed: 2}}, Config{})

	s.tick(context.Background())

	status := s.GetStatus()
	if status.ConsecutiveFailingTicks != 1 || status.ReportsFailed != 2 {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestScheduler_AlertsAfterThreshold(t *testing.T) {
	log := &callLog{}
	alerter := &fakeAlerter{sent: make(chan struct{}, 1)}
	s := NewScheduler(&fakeDrainer{log: log, err: errors.New("db down")}, &fakeEvaluator{log: log}, Config{AlertThreshold: 2}).
		WithAlerter(alerter)

	s.tick(context.Background())
	select {
	case <-alerter.sent:
		t.Fatal("alert sent before threshold")
	default:
	}

	s.tick(context.Background())
	select {
	case <-alerter.sent:
	case <-time.After(time.Second):
		t.Fatal("expected alert after 2 failing ticks")
	}

	alerter.mu.Lock()
	defer alerter.mu.Unlock()
	if alerter.alerts[0].Failures != 2 || alerter.alerts[0].LastErr != "db down" {
		t.Errorf("unexpected alert %+v", alerter.alerts[0])
	}
}

func TestScheduler_SkipsTickWhenLockHeld(t *testing.T) {
	log := &callLog{}
	lock := &fakeLocker{held: true}
	s := NewScheduler(&fakeDrainer{log: log}, &fakeEvaluator{log: log}, Config{LockKey: "k"}).WithLocker(lock)

	s.tick(context.Background())

	if len(log.snapshot()) != 0 {
		t.Error("no work should run without the lock")
	}
	if s.GetStatus().SkippedTicks != 1 {
		t.Error("expected skipped tick to be counted")
	}

	lock.held = false
	s.tick(context.Background())
	if len(log.snapshot()) != 2 || lock.unlocked != 1 || lock.lastToken == "" {
		t.Errorf("expected a locked tick, calls=%v unlocked=%d", log.snapshot(), lock.unlocked)
	}
}

func TestScheduler_StartAndStopToggleRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := &callLog{}
	s := NewScheduler(&fakeDrainer{log: log}, &fakeEvaluator{log: log}, Config{Interval: 10 * time.Millisecond})

	if s.IsRunning() {
		t.Fatalf("expected scheduler to be not running initially")
	}

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if !s.IsRunning() {
		t.Fatalf("expected scheduler to be running after Start")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	if s.IsRunning() {
		t.Fatalf("expected scheduler to be not running after Stop")
	}

	// The first tick runs immediately on start.
	if calls := log.snapshot(); len(calls) < 2 || calls[0] != "drain" {
		t.Errorf("expected an immediate tick, got %v", calls)
	}
}

func TestScheduler_StartWithParamsOverridesInterval(t *testing.T) {
	log := &callLog{}
	s := NewScheduler(&fakeDrainer{log: log}, &fakeEvaluator{log: log}, Config{})

	if err := s.StartWithParams(context.Background(), 30, 4); err != nil {
		t.Fatalf("StartWithParams returned error: %v", err)
	}
	defer s.Stop() //nolint:errcheck

	if got := s.GetStatus().Interval; got != 30*time.Second {
		t.Errorf("expected 30s interval, got %s", got)
	}
}
