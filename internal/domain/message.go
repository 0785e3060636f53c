package domain

import (
	"errors"
	"strings"
	"time"
)

// GroupChatSuffix marks chat identifiers that belong to group conversations.
const GroupChatSuffix = "@g.us"

var ErrMissingTransportID = errors.New("message has no transport id")

type Message struct {
	ID          int64     `db:"id" json:"id"`
	TransportID string    `db:"transport_id" json:"transportId"`
	ChatID      string    `db:"chat_id" json:"chatId"`
	Sender      string    `db:"sender" json:"sender"`
	Content     string    `db:"content" json:"content"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
	MediaURL    *string   `db:"media_url" json:"mediaUrl,omitempty"`
	OwnerID     string    `db:"owner_id" json:"ownerId,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// MessageFilter narrows a message query. Zero-valued fields do not filter.
type MessageFilter struct {
	ChatID string
	Sender string
	Start  time.Time // inclusive
	End    time.Time // exclusive
	Limit  int
}

// IsGroupChat applies the structural group rule to a chat identifier.
func IsGroupChat(chatID string) bool {
	return strings.HasSuffix(chatID, GroupChatSuffix)
}

type Chat struct {
	ID          string    `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"displayName"`
	OwnerID     string    `db:"owner_id" json:"ownerId,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// TransportChat is a chat as listed by the transport session.
type TransportChat struct {
	ID          string
	DisplayName string
	IsGroup     bool
}
