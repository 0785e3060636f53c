package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/pkg/logger"
)

type messageStore interface {
	Upsert(ctx context.Context, msg domain.Message) error
	List(ctx context.Context, chatID string, page, pageSize int) ([]domain.Message, int64, error)
}

type chatUpserter interface {
	Upsert(ctx context.Context, chat domain.Chat) error
}

// MessageService records messages observed by the transport bridge.
type MessageService struct {
	messages messageStore
	chats    chatUpserter
	ownerID  string
}

func NewMessageService(messages messageStore, chats chatUpserter, ownerID string) *MessageService {
	return &MessageService{
		messages: messages,
		chats:    chats,
		ownerID:  ownerID,
	}
}

// Ingest stores msg at most once per transport id and keeps the chat's
// display name current. chatName may be empty.
func (s *MessageService) Ingest(ctx context.Context, msg domain.Message, chatName string) error {
	if strings.TrimSpace(msg.TransportID) == "" {
		return domain.ErrMissingTransportID
	}
	if msg.ChatID == "" {
		return fmt.Errorf("message %s has no chat id", msg.TransportID)
	}
	if msg.OwnerID == "" {
		msg.OwnerID = s.ownerID
	}

	chat := domain.Chat{ID: msg.ChatID, DisplayName: strings.TrimSpace(chatName), OwnerID: msg.OwnerID}
	if err := s.chats.Upsert(ctx, chat); err != nil {
		return err
	}

	if err := s.messages.Upsert(ctx, msg); err != nil {
		return err
	}

	logger.Debugf("Ingested message %s from chat %s", msg.TransportID, msg.ChatID)
	return nil
}

func (s *MessageService) List(ctx context.Context, chatID string, page, pageSize int) ([]domain.Message, int64, error) {
	return s.messages.List(ctx, chatID, page, pageSize)
}
