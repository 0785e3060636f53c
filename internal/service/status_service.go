package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/onurcolak/digest-scheduler/internal/domain"
)

var ErrInvalidStatus = errors.New("invalid connection status")

// StatusService exposes the transport status record to the bridge and the
// operator.
type StatusService struct {
	store statusReader
	id    string
}

func NewStatusService(store statusReader, id string) *StatusService {
	return &StatusService{store: store, id: id}
}

func (s *StatusService) Get(ctx context.Context) (*domain.SystemStatus, error) {
	return s.store.Get(ctx, s.id)
}

// Set is called by the bridge as its session changes state. A QR payload is
// kept only while the status is QR_READY.
func (s *StatusService) Set(ctx context.Context, status domain.ConnectionStatus, qrPayload *string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if status != domain.ConnectionQRReady {
		qrPayload = nil
	}
	return s.store.Set(ctx, s.id, status, qrPayload)
}

// RequestLogout asks the tick loop to tear the session down on its next pass.
func (s *StatusService) RequestLogout(ctx context.Context) error {
	return s.store.Set(ctx, s.id, domain.ConnectionLogoutRequest, nil)
}
