package timeofday

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	valid := map[string]Clock{
		"09:00": {9, 0},
		"9:05":  {9, 5},
		"23:59": {23, 59},
		"00:00": {0, 0},
	}
	for in, want := range valid {
		got, err := Parse(in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("Parse(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:5"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) expected error", in)
		}
	}
}

func TestReachedBy(t *testing.T) {
	c := Clock{Hour: 9, Minute: 0}
	day := func(h, m int) time.Time { return time.Date(2024, 1, 2, h, m, 0, 0, time.UTC) }

	if c.ReachedBy(day(8, 59)) {
		t.Error("08:59 should not reach 09:00")
	}
	if !c.ReachedBy(day(9, 0)) {
		t.Error("09:00 should reach 09:00")
	}
	if !c.ReachedBy(day(9, 10)) {
		t.Error("09:10 should reach 09:00")
	}
	if !c.ReachedBy(day(10, 0)) {
		t.Error("10:00 should reach 09:00")
	}
	if (Clock{Hour: 9, Minute: 30}).ReachedBy(day(9, 10)) {
		t.Error("09:10 should not reach 09:30")
	}
}

func TestNext(t *testing.T) {
	c := Clock{Hour: 9, Minute: 0}

	before := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	if got := c.Next(before); !got.Equal(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Next before = %v", got)
	}

	after := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	if got := c.Next(after); !got.Equal(time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Next after = %v", got)
	}
}

func TestSameDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	a := time.Date(2024, 1, 2, 22, 0, 0, 0, time.UTC) // 01:00 on the 3rd in loc
	b := time.Date(2024, 1, 3, 5, 0, 0, 0, time.UTC)

	if !SameDate(a, b, loc) {
		t.Error("expected same date in UTC+3")
	}
	if SameDate(a, b, time.UTC) {
		t.Error("expected different dates in UTC")
	}
}
