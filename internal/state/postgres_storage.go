package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// PostgresStorage keeps user values in the user_storage table (see internal/database/migrations).
type PostgresStorage struct {
	db  *sql.DB
	log *slog.Logger
}

var _ Storage = (*PostgresStorage)(nil)

// NewPostgresStorage creates a SQL-backed Storage.
func NewPostgresStorage(db *sql.DB, log *slog.Logger) *PostgresStorage {
	if log == nil {
		log = slog.Default()
	}

	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// Get selects the value for (userID, key).
func (s *PostgresStorage) Get(ctx context.Context, userID, key string) ([]byte, error) {
	const query = `
		SELECT value
		FROM user_storage
		WHERE user_id = $1 AND key = $2
	`

	var value []byte
	if err := s.db.QueryRowContext(ctx, query, userID, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}

		s.log.Error("failed to select user value", slog.String("user_id", userID), slog.String("key", key), slog.Any("error", err))
		return nil, fmt.Errorf("select user value: %w", err)
	}

	return value, nil
}

// Set upserts the value for (userID, key).
func (s *PostgresStorage) Set(ctx context.Context, userID, key string, value []byte) error {
	const query = `
		INSERT INTO user_storage (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, userID, key, string(value)); err != nil {
		s.log.Error("failed to upsert user value", slog.String("user_id", userID), slog.String("key", key), slog.Any("error", err))
		return fmt.Errorf("upsert user value: %w", err)
	}

	return nil
}

// Clear deletes the row for (userID, key).
func (s *PostgresStorage) Clear(ctx context.Context, userID, key string) error {
	const query = `DELETE FROM user_storage WHERE user_id = $1 AND key = $2`

	if _, err := s.db.ExecContext(ctx, query, userID, key); err != nil {
		s.log.Error("failed to delete user value", slog.String("user_id", userID), slog.String("key", key), slog.Any("error", err))
		return fmt.Errorf("delete user value: %w", err)
	}

	return nil
}
