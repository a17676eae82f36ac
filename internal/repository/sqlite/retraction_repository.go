package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/glebk/relay-bot/internal/domain"
)

// RetractionRepository implements domain.RetractionRepository using SQLite
type RetractionRepository struct {
	db *Database
}

// NewRetractionRepository creates a new RetractionRepository
func NewRetractionRepository(db *Database) *RetractionRepository {
	return &RetractionRepository{db: db}
}

// Save records a pending retraction, replacing any job for the same message
func (r *RetractionRepository) Save(ctx context.Context, job domain.RetractionJob) error {
	query := `
		INSERT INTO retractions (chat_id, message_id, fire_at)
		VALUES (?, ?, ?)
		ON CONFLICT(chat_id, message_id) DO UPDATE SET fire_at = excluded.fire_at
	`

	_, err := r.db.GetDB().ExecContext(ctx, query, job.ChatID, job.MessageID, job.FireAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save retraction: %w", err)
	}

	return nil
}

// Delete removes a retraction once it has fired
func (r *RetractionRepository) Delete(ctx context.Context, chatID int64, messageID int) error {
	query := `DELETE FROM retractions WHERE chat_id = ? AND message_id = ?`

	_, err := r.db.GetDB().ExecContext(ctx, query, chatID, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete retraction: %w", err)
	}

	return nil
}

// GetAll retrieves every pending retraction ordered by fire time
func (r *RetractionRepository) GetAll(ctx context.Context) ([]domain.RetractionJob, error) {
	query := `
		SELECT chat_id, message_id, fire_at
		FROM retractions
		ORDER BY fire_at
	`

	rows, err := r.db.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get retractions: %w", err)
	}
	defer rows.Close()

	var jobs []domain.RetractionJob

	for rows.Next() {
		var job domain.RetractionJob
		var fireAt int64

		if err := rows.Scan(&job.ChatID, &job.MessageID, &fireAt); err != nil {
			return nil, fmt.Errorf("failed to scan retraction: %w", err)
		}

		job.FireAt = time.UnixMilli(fireAt)
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate retractions: %w", err)
	}

	return jobs, nil
}
