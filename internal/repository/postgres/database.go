// Package postgres stores recipients in a remote PostgreSQL table, the
// deployment shape for bots whose recipient list is shared with other tools.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Database wraps the SQL database connection
type Database struct {
	db *sql.DB
}

// New connects to PostgreSQL and initializes the schema
func New(dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{db: db}

	if err := database.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB returns the underlying database connection
func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS recipients (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL UNIQUE,
		chat_id BIGINT NOT NULL,
		username TEXT NOT NULL,
		status BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS retractions (
		chat_id BIGINT NOT NULL,
		message_id INTEGER NOT NULL,
		fire_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (chat_id, message_id)
	);

	CREATE INDEX IF NOT EXISTS idx_retractions_fire_at ON retractions(fire_at);
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}
