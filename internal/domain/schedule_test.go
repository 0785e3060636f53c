package domain

import (
	"testing"
	"time"
)

func TestTargetAddress(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   string
	}{
		{"self", Target{Type: TargetSelf}, "me@c.us"},
		{"chat", Target{Type: TargetChat, ID: "123-456@g.us"}, "123-456@g.us"},
		{"bare number", Target{Type: TargetExternalNumber, ID: "+90 555 123 45 67"}, "905551234567@c.us"},
		{"full address", Target{Type: TargetExternalNumber, ID: "905551234567@c.us"}, "905551234567@c.us"},
		{"unknown type falls back to self", Target{Type: "weird", ID: "x"}, "me@c.us"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.target.Address("me@c.us"); got != tt.want {
				t.Errorf("Address() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsGroupChat(t *testing.T) {
	if !IsGroupChat("120363@g.us") {
		t.Error("expected group")
	}
	if IsGroupChat("90555@c.us") {
		t.Error("expected direct")
	}
	if IsGroupChat("g.us") {
		t.Error("suffix must include @")
	}
}

func TestDayWindow(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)
	now := time.Date(2024, 5, 10, 14, 30, 0, 0, loc)

	w := DayWindow(now)
	if !w.Start.Equal(time.Date(2024, 5, 10, 0, 0, 0, 0, loc)) {
		t.Errorf("unexpected start %v", w.Start)
	}
	if !w.End.Equal(now) {
		t.Errorf("unexpected end %v", w.End)
	}
}
