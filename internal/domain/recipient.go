package domain

import (
	"context"
	"fmt"
	"time"
)

// Recipient represents a registered broadcast destination
type Recipient struct {
	UserID    int64
	ChatID    int64
	Username  string
	Status    bool
	CreatedAt time.Time
}

// DisplayName returns the username, or a label synthesized from the user ID
// when the username is unknown.
func (r Recipient) DisplayName() string {
	if r.Username != "" {
		return r.Username
	}
	return FallbackUsername(r.UserID)
}

// Label returns the recipient as it appears in reports and listings
func (r Recipient) Label() string {
	return "@" + r.DisplayName()
}

// FallbackUsername is used for users without a Telegram username
func FallbackUsername(userID int64) string {
	return fmt.Sprintf("ID:%d", userID)
}

// RecipientRepository defines the interface for recipient storage.
// GetAll returns rows in store (insertion) order.
type RecipientRepository interface {
	GetAll(ctx context.Context) ([]*Recipient, error)
	Create(ctx context.Context, recipient *Recipient) error
	UpdateStatus(ctx context.Context, userID int64, status bool) error
	Delete(ctx context.Context, userID int64) error
}
