package domain

import "time"

type ConnectionStatus string

const (
	ConnectionInit          ConnectionStatus = "INIT"
	ConnectionQRReady       ConnectionStatus = "QR_READY"
	ConnectionReady         ConnectionStatus = "READY"
	ConnectionDisconnected  ConnectionStatus = "DISCONNECTED"
	ConnectionLogoutRequest ConnectionStatus = "LOGOUT_REQUEST"
)

func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionInit, ConnectionQRReady, ConnectionReady, ConnectionDisconnected, ConnectionLogoutRequest:
		return true
	}
	return false
}

type SystemStatus struct {
	ID        string           `db:"id" json:"id"`
	Status    ConnectionStatus `db:"status" json:"status"`
	QRPayload *string          `db:"qr_payload" json:"qrPayload,omitempty"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}
