package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

type CommandType string

const (
	CommandSendMessage   CommandType = "SEND_MESSAGE"
	CommandSyncChats     CommandType = "SYNC_CHATS"
	CommandTriggerReport CommandType = "TRIGGER_REPORT"
)

type CommandStatus string

const (
	CommandPending    CommandStatus = "PENDING"
	CommandProcessing CommandStatus = "PROCESSING"
	CommandCompleted  CommandStatus = "COMPLETED"
	CommandFailed     CommandStatus = "FAILED"
)

func (s CommandStatus) Valid() bool {
	switch s {
	case CommandPending, CommandProcessing, CommandCompleted, CommandFailed:
		return true
	}
	return false
}

var ErrUnknownCommand = errors.New("unknown command type")

type Command struct {
	ID        string         `db:"id" json:"id"`
	Type      CommandType    `db:"type" json:"type"`
	Payload   types.JSONText `db:"payload" json:"payload" swaggertype:"object"`
	Status    CommandStatus  `db:"status" json:"status"`
	Error     *string        `db:"error" json:"error,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// CommandPayload is the closed set of decoded command variants.
type CommandPayload interface {
	CommandType() CommandType
}

type SendMessage struct {
	To   string `json:"to" validate:"required"`
	Text string `json:"text" validate:"required"`
}

func (SendMessage) CommandType() CommandType { return CommandSendMessage }

type SyncChats struct{}

func (SyncChats) CommandType() CommandType { return CommandSyncChats }

// TriggerReport runs one schedule when ScheduleID is set, otherwise all
// active schedules. All makes the second form explicit and cannot be combined
// with ScheduleID.
type TriggerReport struct {
	ScheduleID string `json:"schedule_id"`
	All        bool   `json:"all,omitempty" validate:"excluded_with=ScheduleID"`
}

func (TriggerReport) CommandType() CommandType { return CommandTriggerReport }

func (p TriggerReport) AllSchedules() bool {
	return p.All || p.ScheduleID == ""
}

type StructValidator interface {
	Validate(i any) error
}

// PayloadError reports a payload that could not be decoded or failed
// validation for its command type.
type PayloadError struct {
	Type CommandType
	Err  error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Type, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// DecodeCommand turns a queued row into its typed variant. Unknown types
// yield ErrUnknownCommand; bad payloads yield *PayloadError.
func DecodeCommand(cmd Command, v StructValidator) (CommandPayload, error) {
	var payload CommandPayload

	switch cmd.Type {
	case CommandSendMessage:
		var p SendMessage
		if err := unmarshalPayload(cmd, &p); err != nil {
			return nil, err
		}
		payload = p
	case CommandSyncChats:
		payload = SyncChats{}
	case CommandTriggerReport:
		var p TriggerReport
		if err := unmarshalPayload(cmd, &p); err != nil {
			return nil, err
		}
		payload = p
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}

	if v != nil {
		if err := v.Validate(payload); err != nil {
			return nil, &PayloadError{Type: cmd.Type, Err: err}
		}
	}

	return payload, nil
}

func unmarshalPayload(cmd Command, dst any) error {
	if len(cmd.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(cmd.Payload, dst); err != nil {
		return &PayloadError{Type: cmd.Type, Err: err}
	}
	return nil
}
