package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/glebk/relay-bot/internal/domain"
)

// ErrRegistryUnavailable is returned when the recipient list cannot be read
var ErrRegistryUnavailable = errors.New("recipient registry unavailable")

// EnsureRegistered adds userID as an active recipient on first contact and
// tells every admin about it. It reports whether a recipient was added.
//
// The presence check and insert are not atomic; the store's unique user_id
// turns a concurrent double insert into an error on the second call.
func (s *RelayService) EnsureRegistered(ctx context.Context, userID int64, username string) (bool, error) {
	if s.access.IsAdmin(userID) {
		return false, nil
	}
	if username == "" {
		username = domain.FallbackUsername(userID)
	}

	log := s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"username": username,
	})

	snapshot := s.registry.Snapshot(ctx)
	if snapshot.Degraded {
		return false, fmt.Errorf("%w: %v", ErrRegistryUnavailable, snapshot.Err)
	}

	if _, ok := snapshot.Lookup(userID); ok {
		log.Debug("Recipient already registered")
		return false, nil
	}

	recipient := &domain.Recipient{
		UserID:   userID,
		ChatID:   userID,
		Username: username,
		Status:   true,
	}
	if err := s.registry.Add(ctx, recipient); err != nil {
		return false, err
	}

	notice := fmt.Sprintf("New recipient added: %s with chat ID %d.", recipient.Label(), recipient.ChatID)
	for _, adminID := range s.access.Admins() {
		if _, err := s.messenger.Send(ctx, adminID, notice); err != nil {
			log.WithError(err).WithField("admin_id", adminID).Warn("Failed to notify admin")
		}
	}

	log.Info("New recipient added")
	return true, nil
}
