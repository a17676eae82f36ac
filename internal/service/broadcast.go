package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/glebk/relay-bot/internal/domain"
)

// Delivery is a successfully relayed copy of a broadcast
type Delivery struct {
	Label      string
	ChatID     int64
	MessageID  int
	Retraction domain.RetractionJob
}

// DeliveryFailure is a recipient the broadcast could not reach
type DeliveryFailure struct {
	Label string
	Err   error
}

// Report summarizes one broadcast for the admin who sent it
type Report struct {
	ID        string
	Delivered []Delivery
	Failed    []DeliveryFailure
	// Degraded is set when the recipient list could not be read
	Degraded bool
}

// String renders the report in the format sent back to the admin
func (r *Report) String() string {
	var b strings.Builder

	b.WriteString("Message forwarded successfully to the following recipients:\n")
	if len(r.Delivered) == 0 {
		b.WriteString("None")
	} else {
		labels := make([]string, len(r.Delivered))
		for i, d := range r.Delivered {
			labels[i] = d.Label
		}
		b.WriteString(strings.Join(labels, "\n"))
	}

	if len(r.Failed) > 0 {
		b.WriteString("\n\nFailed to send message to the following recipients:\n")
		lines := make([]string, len(r.Failed))
		for i, f := range r.Failed {
			lines[i] = fmt.Sprintf("%s (Error: %v)", f.Label, f.Err)
		}
		b.WriteString(strings.Join(lines, "\n"))
	}

	return b.String()
}

// Broadcast relays text to every active, non-admin recipient, one at a time
// in store order. A failed delivery is recorded and skipped; every successful
// delivery gets its own retraction job.
//
// Concurrent broadcasts are not coordinated: each reads the registry and
// delivers independently.
func (s *RelayService) Broadcast(ctx context.Context, senderID int64, text string) (*Report, error) {
	if !s.access.IsAdmin(senderID) {
		return nil, ErrPermissionDenied
	}

	report := &Report{ID: uuid.NewString()}
	log := s.logger.WithFields(logrus.Fields{
		"broadcast_id": report.ID,
		"sender_id":    senderID,
	})

	snapshot := s.registry.Snapshot(ctx)
	report.Degraded = snapshot.Degraded

	for _, recipient := range snapshot.Recipients {
		if !recipient.Status || s.access.IsAdmin(recipient.UserID) {
			continue
		}

		label := recipient.Label()
		messageID, err := s.messenger.Send(ctx, recipient.ChatID, text)
		if err != nil {
			report.Failed = append(report.Failed, DeliveryFailure{Label: label, Err: err})
			log.WithError(err).WithField("recipient", label).Error("Failed to send message")
			continue
		}

		handle := s.retractions.Schedule(ctx, recipient.ChatID, messageID)
		report.Delivered = append(report.Delivered, Delivery{
			Label:      label,
			ChatID:     recipient.ChatID,
			MessageID:  messageID,
			Retraction: handle.Job(),
		})
	}

	log.WithFields(logrus.Fields{
		"delivered": len(report.Delivered),
		"failed":    len(report.Failed),
		"degraded":  report.Degraded,
	}).Info("Broadcast finished")

	return report, nil
}
