package postgres

import (
	"context"
	"fmt"

	"github.com/glebk/relay-bot/internal/domain"
)

// RecipientRepository implements domain.RecipientRepository using PostgreSQL
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

		err := rows.Scan(
			&recipient.UserID,
			&recipient.ChatID,
			&recipient.Username,
			&recipient.Status,
			&recipient.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}

		recipients = append(recipients, recipient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipients: %w", err)
	}

	return recipients, nil
}

// Create inserts a new recipient
func (r *RecipientRepository) Create(ctx context.Context, recipient *domain.Recipient) error {
	query := `
		INSERT INTO recipients (user_id, chat_id, username, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.GetDB().QueryRowContext(ctx, query,
		recipient.UserID,
		recipient.ChatID,
		recipient.Username,
		recipient.Status,
	).Scan(&recipient.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create recipient: %w", err)
	}

	return nil
}

// UpdateStatus enables or disables a recipient
func (r *RecipientRepository) UpdateStatus(ctx context.Context, userID int64, status bool) error {
	query := `UPDATE recipients SET status = $1 WHERE user_id = $2`

	if _, err := r.db.GetDB().ExecContext(ctx, query, status, userID); err != nil {
		return fmt.Errorf("failed to update recipient status: %w", err)
	}

	return nil
}

// Delete deletes a recipient
func (r *RecipientRepository) Delete(ctx context.Context, userID int64) error {
	query := `DELETE FROM recipients WHERE user_id = $1`

	if _, err := r.db.GetDB().ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete recipient: %w", err)
	}

	return nil
}
