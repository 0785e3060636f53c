package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onurcolak/digest-scheduler/internal/domain"
)

// fakeScheduleStore keeps schedules in memory and applies MarkRun to them.
type fakeScheduleStore struct {
	schedules []domain.Schedule
	listErr   error
	markErr   error
	marked    map[string]time.Time
	markCalls int
}

func (f *fakeScheduleStore) ListActive(ctx context.Context) ([]domain.Schedule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Schedule, len(f.schedules))
	copy(out, f.schedules)
	return out, nil
}

func (f *fakeScheduleStore) MarkRun(ctx context.Context, id string, at time.Time) error {
	f.markCalls++
	if f.markErr != nil {
		return f.markErr
	}
	if f.marked == nil {
		f.marked = map[string]time.Time{}
	}
	f.marked[id] = at
	for i := range f.schedules {
		if f.schedules[i].ID == id {
			t := at
			f.schedules[i].LastRunAt = &t
		}
	}
	return nil
}

type fakeRunner struct {
	outcome domain.ReportOutcome
	errFor  map[string]error
	panicOn string
	calls   []domain.Target
	windows []domain.Window
}

func (f *fakeRunner) GenerateAndDeliver(ctx context.Context, target domain.Target, window domain.Window) (domain.ReportOutcome, error) {
	f.calls = append(f.calls, target)
	f.windows = append(f.windows, window)
	if target.ID == f.panicOn && f.panicOn != "" {
		panic("generator exploded")
	}
	if err := f.errFor[target.ID]; err != nil {
		return "", err
	}
	if f.outcome == "" {
		return domain.ReportSent, nil
	}
	return f.outcome, nil
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestEvaluate_FiresAtMostOncePerDay(t *testing.T) {
	store := &fakeScheduleStore{schedules: []domain.Schedule{
		{ID: "s1", TimeOfDay: "09:00", TargetType: domain.TargetSelf, TargetID: "a", IsActive: true},
	}}
	runner := &fakeRunner{}
	ev := NewEvaluator(store, runner, time.UTC)

	res, err := ev.Evaluate(context.Background(), at(8, 59))
	if err != nil || res.Due != 0 || len(runner.calls) != 0 {
		t.Fatalf("should not fire before its time: %+v %v", res, err)
	}

	res, err = ev.Evaluate(context.Background(), at(9, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Due != 1 || res.Sent != 1 || len(runner.calls) != 1 {
		t.Fatalf("expected one firing at 09:01, got %+v", res)
	}
	if !store.marked["s1"].Equal(at(9, 1)) {
		t.Errorf("expected last run 09:01, got %s", store.marked["s1"])
	}

	if _, err := ev.Evaluate(context.Background(), at(9, 30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("must not fire twice on the same day, got %d calls", len(runner.calls))
	}

	nextDay := at(9, 0).Add(24 * time.Hour)
	if _, err := ev.Evaluate(context.Background(), nextDay); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Errorf("expected firing again the next day, got %d calls", len(runner.calls))
	}
}

func TestEvaluate_CatchesUpAfterMissedMinute(t *testing.T) {
	yesterday := at(9, 0).Add(-24 * time.Hour)
	store := &fakeScheduleStore{schedules: []domain.Schedule{
		{ID: "s1", TimeOfDay: "09:00", TargetType: domain.TargetSelf, LastRunAt: &yesterday},
	}}
	runner := &fakeRunner{}
	ev := NewEvaluator(store, runner, time.UTC)

	res, err := ev.Evaluate(context.Background(), at(14, 45))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Due != 1 {
		t.Errorf("expected a late firing after a restart, got %+v", res)
	}

	w := runner.windows[0]
	if !w.Start.Equal(at(0, 0)) || !w.End.Equal(at(14, 45)) {
		t.Errorf("unexpected window %+v", w)
	}
}

func TestEvaluate_FailureStillConsumesSlotAndIsIsolated(t *testing.T) {
	store := &fakeScheduleStore{schedules: []domain.Schedule{
		{ID: "bad", TimeOfDay: "07:00", TargetType: domain.TargetChat, TargetID: "bad@g.us"},
		{ID: "boom", TimeOfDay: "07:00", TargetType: domain.TargetChat, TargetID: "boom@g.us"},
		{ID: "good", TimeOfDay: "07:00", TargetType: domain.TargetChat, TargetID: "good@g.us"},
	}}
	runner := &fakeRunner{
		errFor:  map[string]error{"bad@g.us": errors.New("all generation credentials failed")},
		panicOn: "boom@g.us",
	}
	ev := NewEvaluator(store, runner, time.UTC)

	res, err := ev.Evaluate(context.Background(), at(7, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Due != 3 || res.Failed != 2 || res.Sent != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	for _, id := range []string{"bad", "boom", "good"} {
		if _, ok := store.marked[id]; !ok {
			t.Errorf("schedule %s should have its run recorded", id)
		}
	}
}

func TestEvaluate_EmptyWindowConsumesSlot(t *testing.T) {
	store := &fakeScheduleStore{schedules: []domain.Schedule{{ID: "s1", TimeOfDay: "09:00"}}}
	runner := &fakeRunner{outcome: domain.ReportNoMessages}
	ev := NewEvaluator(store, runner, time.UTC)

	res, _ := ev.Evaluate(context.Background(), at(10, 0))
	if res.Empty != 1 {
		t.Errorf("expected empty outcome, got %+v", res)
	}
	if _, ok := store.marked["s1"]; !ok {
		t.Error("empty window still records the run")
	}
}

func TestEvaluate_UsesConfiguredTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// Ran at 23:30 UTC on the 9th, which is already the 10th locally.
	ran := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	store := &fakeScheduleStore{schedules: []domain.Schedule{{ID: "s1", TimeOfDay: "07:00", LastRunAt: &ran}}}
	runner := &fakeRunner{}
	ev := NewEvaluator(store, runner, loc)

	// 02:00 UTC is 10:00 local on the 10th.
	if _, err := ev.Evaluate(context.Background(), at(2, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Error("schedule already ran today in local time")
	}
}

func TestEvaluate_SkipsInvalidTimeOfDay(t *testing.T) {
	store := &fakeScheduleStore{schedules: []domain.Schedule{{ID: "s1", TimeOfDay: "9am"}}}
	runner := &fakeRunner{}
	ev := NewEvaluator(store, runner, time.UTC)

	res, err := ev.Evaluate(context.Background(), at(23, 59))
	if err != nil || res.Due != 0 || len(store.marked) != 0 {
		t.Errorf("invalid schedule should be skipped: %+v %v", res, err)
	}
}

func TestEvaluate_ListError(t *testing.T) {
	store := &fakeScheduleStore{listErr: errors.New("db down")}
	ev := NewEvaluator(store, &fakeRunner{}, time.UTC)

	if _, err := ev.Evaluate(context.Background(), at(9, 0)); err == nil {
		t.Fatal("expected error")
	}
}

func TestEvaluate_FailedRunWriteDoesNotRefire(t *testing.T) {
	store := &fakeScheduleStore{
		schedules: []domain.Schedule{
			{ID: "s1", TimeOfDay: "09:00", TargetType: domain.TargetSelf, IsActive: true},
		},
		markErr: errors.New("database is locked"),
	}
	runner := &fakeRunner{}
	ev := NewEvaluator(store, runner, time.UTC)

	for _, now := range []time.Time{at(9, 0), at(9, 1), at(9, 2)} {
		if _, err := ev.Evaluate(context.Background(), now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected a single delivery while the run is unrecorded, got %d", len(runner.calls))
	}

	// The write recovers and the original run time is persisted.
	store.markErr = nil
	res, err := ev.Evaluate(context.Background(), at(9, 3))
	if err != nil || res.Due != 0 {
		t.Fatalf("expected nothing due, got %+v %v", res, err)
	}
	if !store.marked["s1"].Equal(at(9, 0)) {
		t.Errorf("expected run recorded at 09:00, got %s", store.marked["s1"])
	}

	calls := store.markCalls
	if _, err := ev.Evaluate(context.Background(), at(9, 4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.markCalls != calls || len(runner.calls) != 1 {
		t.Errorf("expected no further writes or deliveries, got %d writes %d calls", store.markCalls-calls, len(runner.calls))
	}

	// A new day fires again.
	if _, err := ev.Evaluate(context.Background(), at(9, 0).Add(24*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Errorf("expected firing on the next day, got %d calls", len(runner.calls))
	}
}
