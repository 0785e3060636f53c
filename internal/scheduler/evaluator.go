package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/internal/service"
	"github.com/onurcolak/digest-scheduler/pkg/logger"
	"github.com/onurcolak/digest-scheduler/pkg/timeofday"
)

type scheduleStore interface {
	ListActive(ctx context.Context) ([]domain.Schedule, error)
	MarkRun(ctx context.Context, id string, at time.Time) error
}

type reportRunner interface {
	GenerateAndDeliver(ctx context.Context, target domain.Target, window domain.Window) (domain.ReportOutcome, error)
}

// EvaluateResult counts what one evaluation pass did.
type EvaluateResult struct {
	Due    int `json:"due"`
	Sent   int `json:"sent"`
	Empty  int `json:"empty"`
	Failed int `json:"failed"`
}

// Evaluator fires active schedules at most once per local calendar day.
// Evaluate is called from the tick goroutine only.
type Evaluator struct {
	schedules scheduleStore
	reports   reportRunner
	loc       *time.Location

	// unrecorded holds runs whose MarkRun write failed, keyed by schedule id.
	unrecorded map[string]time.Time
}

func NewEvaluator(schedules scheduleStore, reports reportRunner, loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.Local
	}
	return &Evaluator{
		schedules:  schedules,
		reports:    reports,
		loc:        loc,
		unrecorded: make(map[string]time.Time),
	}
}

// Evaluate fires every schedule that is due at now. A schedule is due once
// its time of day has been reached and it has not run on now's date, so a
// late or missed tick still fires it later the same day.
func (e *Evaluator) Evaluate(ctx context.Context, now time.Time) (EvaluateResult, error) {
	var result EvaluateResult

	schedules, err := e.schedules.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load schedules: %w", err)
	}

	local := now.In(e.loc)
	for _, sched := range schedules {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		if e.ranUnrecorded(ctx, sched.ID, local) {
			continue
		}

		if !e.isDue(sched, local) {
			continue
		}

		result.Due++
		outcome, err := e.fire(ctx, sched, local)
		switch {
		case err != nil:
			result.Failed++
			logger.Errorf("Schedule %s failed: %v", sched.ID, err)
		case outcome == domain.ReportNoMessages:
			result.Empty++
		default:
			result.Sent++
		}

		// The slot is used whether or not the report went out.
		if err := e.schedules.MarkRun(ctx, sched.ID, now); err != nil {
			logger.Errorf("Failed to record run for schedule %s: %v", sched.ID, err)
			e.unrecorded[sched.ID] = now
		}
	}

	return result, nil
}

// ranUnrecorded reports whether the schedule already fired today without the
// run being persisted, and retries the write.
func (e *Evaluator) ranUnrecorded(ctx context.Context, id string, local time.Time) bool {
	ranAt, ok := e.unrecorded[id]
	if !ok {
		return false
	}
	if !timeofday.SameDate(ranAt, local, e.loc) {
		delete(e.unrecorded, id)
		return false
	}

	if err := e.schedules.MarkRun(ctx, id, ranAt); err != nil {
		logger.Warnf("Still unable to record run for schedule %s: %v", id, err)
	} else {
		delete(e.unrecorded, id)
	}
	return true
}

func (e *Evaluator) isDue(sched domain.Schedule, local time.Time) bool {
	clock, err := timeofday.Parse(sched.TimeOfDay)
	if err != nil {
		logger.Warnf("Schedule %s has invalid time of day: %v", sched.ID, err)
		return false
	}

	if !clock.ReachedBy(local) {
		return false
	}

	return sched.LastRunAt == nil || !timeofday.SameDate(*sched.LastRunAt, local, e.loc)
}

func (e *Evaluator) fire(ctx context.Context, sched domain.Schedule, local time.Time) (domain.ReportOutcome, error) {
	logger.Infof("Triggering schedule %s (%s, %s)", sched.ID, sched.TimeOfDay, sched.TargetType)

	var outcome domain.ReportOutcome
	err := service.Safely(func() error {
		var err error
		outcome, err = e.reports.GenerateAndDeliver(ctx, sched.Target(), domain.DayWindow(local))
		return err
	})
	return outcome, err
}
