package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/onurcolak/digest-scheduler/internal/domain"
)

type chatReplacer interface {
	ReplaceForOwner(ctx context.Context, ownerID string, chats []domain.Chat) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Chat, error)
}

// ChatService refreshes the stored chat list from the live session.
type ChatService struct {
	chats     chatReplacer
	transport Transport
	ownerID   string
}

func NewChatService(chats chatReplacer, transport Transport, ownerID string) *ChatService {
	return &ChatService{chats: chats, transport: transport, ownerID: ownerID}
}

// SyncChats replaces the owner's chats with the session's named group chats
// and returns how many were kept.
func (s *ChatService) SyncChats(ctx context.Context) (int, error) {
	listed, err := s.transport.ListChats(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list chats: %w", err)
	}

	chats := make([]domain.Chat, 0, len(listed))
	for _, c := range listed {
		name := strings.TrimSpace(c.DisplayName)
		if !c.IsGroup || name == "" {
			continue
		}
		chats = append(chats, domain.Chat{ID: c.ID, DisplayName: name, OwnerID: s.ownerID})
	}

	if err := s.chats.ReplaceForOwner(ctx, s.ownerID, chats); err != nil {
		return 0, err
	}

	return len(chats), nil
}

func (s *ChatService) List(ctx context.Context) ([]domain.Chat, error) {
	return s.chats.ListByOwner(ctx, s.ownerID)
}
