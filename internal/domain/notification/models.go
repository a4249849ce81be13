package notification

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrInvalidToken = errors.New("device token is required")
)

// DeviceToken is a push notification target registered by a user's
// device.
type DeviceToken struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	Platform  string    `json:"platform"` // ios, android
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// TokenRepository defines the interface for device token data access
type TokenRepository interface {
	Register(ctx context.Context, token DeviceToken) error
	ListActiveByUserID(ctx context.Context, userID int64) ([]string, error)
	Deactivate(ctx context.Context, token string) error
}
