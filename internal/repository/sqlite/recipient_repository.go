package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/glebk/relay-bot/internal/domain"
)

// RecipientRepository implements domain.RecipientRepository using SQLite
type RecipientRepository struct {
	db *Database
}

// NewRecipientRepository creates a new RecipientRepository
func NewRecipientRepository(db *Database) *RecipientRepository {
	return &RecipientRepository{db: db}
}

// GetAll retrieves all recipients in insertion order
func (r *RecipientRepository) GetAll(ctx context.Context) ([]*domain.Recipient, error) {
	query := `
		SELECT user_id, chat_id, username, status, created_at
		FROM recipients
		ORDER BY id
	`

	rows, err := r.db.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipients: %w", err)
	}
	defer rows.Close()

	var recipients []*domain.Recipient

	for rows.Next() {
		recipient := &domain.Recipient{}
		var status int

		err := rows.Scan(
			&recipient.UserID,
			&recipient.ChatID,
			&recipient.Username,
			&status,
			&recipient.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}

		recipient.Status = intToBool(status)
		recipients = append(recipients, recipient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipients: %w", err)
	}

	return recipients, nil
}

// Create inserts a new recipient. A duplicate user_id violates the unique
// constraint and is returned as an error.
func (r *RecipientRepository) Create(ctx context.Context, recipient *domain.Recipient) error {
	query := `
		INSERT INTO recipients (user_id, chat_id, username, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	now := time.Now()
	_, err := r.db.GetDB().ExecContext(ctx, query,
		recipient.UserID,
		recipient.ChatID,
		recipient.Username,
		boolToInt(recipient.Status),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create recipient: %w", err)
	}

	recipient.CreatedAt = now

	return nil
}

// UpdateStatus enables or disables a recipient
func (r *RecipientRepository) UpdateStatus(ctx context.Context, userID int64, status bool) error {
	query := `UPDATE recipients SET status = ? WHERE user_id = ?`

	_, err := r.db.GetDB().ExecContext(ctx, query, boolToInt(status), userID)
	if err != nil {
		return fmt.Errorf("failed to update recipient status: %w", err)
	}

	return nil
}

// Delete deletes a recipient
func (r *RecipientRepository) Delete(ctx context.Context, userID int64) error {
	query := `DELETE FROM recipients WHERE user_id = ?`

	_, err := r.db.GetDB().ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recipient: %w", err)
	}

	return nil
}

// Helper functions
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}
