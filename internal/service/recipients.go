package service

import (
	"context"
	"fmt"
	"strings"
)

// EnableRecipient marks a recipient as eligible for broadcasts
func (s *RelayService) EnableRecipient(ctx context.Context, callerID, userID int64) error {
	return s.setStatus(ctx, callerID, userID, true)
}

// DisableRecipient suspends a recipient
func (s *RelayService) DisableRecipient(ctx context.Context, callerID, userID int64) error {
	return s.setStatus(ctx, callerID, userID, false)
}

func (s *RelayService) setStatus(ctx context.Context, callerID, userID int64, status bool) error {
	if !s.access.IsAdmin(callerID) {
		return ErrPermissionDenied
	}
	return s.registry.SetStatus(ctx, userID, status)
}

// RemoveRecipient deletes a recipient
func (s *RelayService) RemoveRecipient(ctx context.Context, callerID, userID int64) error {
	if !s.access.IsAdmin(callerID) {
		return ErrPermissionDenied
	}
	return s.registry.Remove(ctx, userID)
}

// ListRecipients renders every recipient as "@label: user_id (Active: status)",
// one per line, in store order.
func (s *RelayService) ListRecipients(ctx context.Context, callerID int64) ([]string, error) {
	if !s.access.IsAdmin(callerID) {
		return nil, ErrPermissionDenied
	}

	snapshot := s.registry.Snapshot(ctx)
	if snapshot.Degraded {
		return nil, snapshot.Err
	}

	lines := make([]string, 0, snapshot.Len())
	for _, r := range snapshot.Recipients {
		lines = append(lines, fmt.Sprintf("%s: %d (Active: %t)", r.Label(), r.UserID, r.Status))
	}
	return lines, nil
}

// FormatRecipientList joins listing lines under a header
func FormatRecipientList(lines []string) string {
	return "Current recipients:\n" + strings.Join(lines, "\n")
}
