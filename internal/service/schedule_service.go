package service

import (
	"context"
	"time"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/pkg/timeofday"
)

// ScheduleView is an active schedule with its next local fire time.
type ScheduleView struct {
	domain.Schedule
	NextRunAt *time.Time `json:"nextRunAt,omitempty"`
	RanToday  bool       `json:"ranToday"`
}

type ScheduleService struct {
	schedules activeScheduleReader
	loc       *time.Location
	now       func() time.Time
}

func NewScheduleService(schedules activeScheduleReader, loc *time.Location) *ScheduleService {
	if loc == nil {
		loc = time.Local
	}
	return &ScheduleService{schedules: schedules, loc: loc, now: time.Now}
}

// ListActive returns active schedules. NextRunAt is nil for a schedule whose
// time of day cannot be parsed; such schedules never fire.
func (s *ScheduleService) ListActive(ctx context.Context) ([]ScheduleView, error) {
	schedules, err := s.schedules.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	views := make([]ScheduleView, 0, len(schedules))
	for _, sched := range schedules {
		view := ScheduleView{Schedule: sched}
		view.RanToday = sched.LastRunAt != nil && timeofday.SameDate(*sched.LastRunAt, now, s.loc)

		if clock, err := timeofday.Parse(sched.TimeOfDay); err == nil {
			next := clock.Next(now)
			// Still due today if the slot has passed but not yet been used.
			if clock.ReachedBy(now) && !view.RanToday {
				next = now
			}
			view.NextRunAt = &next
		}
		views = append(views, view)
	}

	return views, nil
}
