package domain

import (
	"context"
	"time"
)

// DefaultRetractionDelay is how long a delivered broadcast stays visible
const DefaultRetractionDelay = 900 * time.Second

// RetractionJob is a pending deletion of one delivered message
type RetractionJob struct {
	ChatID    int64
	MessageID int
	FireAt    time.Time
}

// RetractionRepository persists pending retraction jobs so they survive restarts
type RetractionRepository interface {
	Save(ctx context.Context, job RetractionJob) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	GetAll(ctx context.Context) ([]RetractionJob, error)
}
