package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/glebk/relay-bot/internal/domain"
)

// Snapshot is the recipient list as read from the store at one moment.
// A failed read produces an empty snapshot with Degraded set and Err holding
// the cause, so callers can tell "no recipients" from "store unavailable".
type Snapshot struct {
	Recipients []*domain.Recipient
	Degraded   bool
	Err        error
}

// Lookup finds a recipient by user ID
func (s Snapshot) Lookup(userID int64) (*domain.Recipient, bool) {
	for _, r := range s.Recipients {
		if r.UserID == userID {
			return r, true
		}
	}
	return nil, false
}

// Len returns the number of recipients
func (s Snapshot) Len() int {
	return len(s.Recipients)
}

// Registry is a read-through view of the recipient store. Nothing is cached:
// every call goes to the store.
type Registry struct {
	repo   domain.RecipientRepository
	logger *logrus.Logger
}

// NewRegistry creates a new Registry
func NewRegistry(repo domain.RecipientRepository, logger *logrus.Logger) *Registry {
	return &Registry{repo: repo, logger: logger}
}

// Snapshot reads every recipient from the store
func (r *Registry) Snapshot(ctx context.Context) Snapshot {
	recipients, err := r.repo.GetAll(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Error loading recipients")
		return Snapshot{Degraded: true, Err: err}
	}

	r.logger.WithField("count", len(recipients)).Debug("Recipients loaded")
	return Snapshot{Recipients: recipients}
}

// Add inserts a recipient without checking for an existing row
func (r *Registry) Add(ctx context.Context, recipient *domain.Recipient) error {
	if err := r.repo.Create(ctx, recipient); err != nil {
		r.logger.WithError(err).WithField("user_id", recipient.UserID).Error("Error saving recipient")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"user_id":  recipient.UserID,
		"username": recipient.DisplayName(),
	}).Info("Recipient saved")
	return nil
}

// SetStatus enables or disables a recipient
func (r *Registry) SetStatus(ctx context.Context, userID int64, status bool) error {
	if err := r.repo.UpdateStatus(ctx, userID, status); err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Error updating recipient status")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"status":  status,
	}).Info("Recipient status updated")
	return nil
}

// Remove deletes a recipient
func (r *Registry) Remove(ctx context.Context, userID int64) error {
	if err := r.repo.Delete(ctx, userID); err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Error removing recipient")
		return err
	}

	r.logger.WithField("user_id", userID).Info("Recipient removed")
	return nil
}
