package domain

import (
	"strings"
	"time"
)

type TargetType string

const (
	TargetSelf           TargetType = "self"
	TargetExternalNumber TargetType = "external_number"
	TargetChat           TargetType = "chat"
)

// DirectChatSuffix is appended to bare phone numbers to address a direct chat.
const DirectChatSuffix = "@c.us"

type Schedule struct {
	ID         string     `db:"id" json:"id"`
	TimeOfDay  string     `db:"time_of_day" json:"timeOfDay"`
	TargetType TargetType `db:"target_type" json:"targetType"`
	TargetID   string     `db:"target_id" json:"targetId"`
	TargetName *string    `db:"target_name" json:"targetName,omitempty"`
	IsActive   bool       `db:"is_active" json:"isActive"`
	LastRunAt  *time.Time `db:"last_run_at" json:"lastRunAt,omitempty"`
	OwnerID    string     `db:"owner_id" json:"ownerId"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

func (s Schedule) Target() Target {
	return Target{Type: s.TargetType, ID: s.TargetID, OwnerID: s.OwnerID}
}

// Target describes where a digest is delivered.
type Target struct {
	Type    TargetType
	ID      string
	OwnerID string
}

// Address resolves the transport address for the target. selfID is the
// transport's own identity.
func (t Target) Address(selfID string) string {
	switch t.Type {
	case TargetChat:
		return t.ID
	case TargetExternalNumber:
		if strings.Contains(t.ID, "@") {
			return t.ID
		}
		return digitsOnly(t.ID) + DirectChatSuffix
	default:
		return selfID
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
