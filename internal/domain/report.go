package domain

import "time"

type ReportOutcome string

const (
	ReportSent       ReportOutcome = "sent"
	ReportNoMessages ReportOutcome = "no_messages"
)

// Window is the half-open range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow spans from local midnight of now up to now.
func DayWindow(now time.Time) Window {
	y, m, d := now.Date()
	return Window{
		Start: time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		End:   now,
	}
}

type ReportRecord struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"ownerId"`
	Text        string    `db:"text" json:"text"`
	Date        string    `db:"date" json:"date"`
	WindowStart time.Time `db:"window_start" json:"windowStart"`
	WindowEnd   time.Time `db:"window_end" json:"windowEnd"`
	ChatID      *string   `db:"chat_id" json:"chatId,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
