package service

import (
	"context"

	"github.com/onurcolak/digest-scheduler/internal/domain"
)

// Transport is the single shared chat session. Callers use it serially.
type Transport interface {
	SendMessage(ctx context.Context, to, text string) error
	ListChats(ctx context.Context) ([]domain.TransportChat, error)
	SelfID(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Reconnect(ctx context.Context) error
}

// Generator produces text for a prompt using one credential.
type Generator interface {
	Generate(ctx context.Context, prompt, credential string) (string, error)
}
