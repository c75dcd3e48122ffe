package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

type postgresKV struct {
	db *sql.DB
}

func NewPostgresKV(db *sql.DB) KV {
	return &postgresKV{db: db}
}

// EnsureSchema creates the keyed record table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS kv_records (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	_, err := db.ExecContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (s *postgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_records WHERE key = $1`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return value, nil
}

func (s *postgresKV) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_records (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, key, value, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (s *postgresKV) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_records WHERE key = $1`
	_, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
