// Package timeofday handles the HH:MM clock values schedules fire at.
package timeofday

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Clock struct {
	Hour   int
	Minute int
}

func Parse(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Clock{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return Clock{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("invalid minute in %q", s)
	}

	return Clock{Hour: h, Minute: m}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ReachedBy reports whether now's wall clock is at or past c.
func (c Clock) ReachedBy(now time.Time) bool {
	if now.Hour() != c.Hour {
		return now.Hour() > c.Hour
	}
	return now.Minute() >= c.Minute
}

// Next returns the first firing of c strictly after t, in t's location.
func (c Clock) Next(t time.Time) time.Time {
	sched, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", c.Minute, c.Hour))
	if err != nil {
		// Clock values come from Parse, so the expression always parses.
		return time.Time{}
	}
	return sched.Next(t)
}

// SameDate compares calendar dates of a and b as seen in loc.
func SameDate(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
