// Package storage is the SQLite persistence layer: the session key/value
// table and the last transaction list fetched per user.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/log"

	_ "modernc.org/sqlite"
)

// Snapshot is the transaction list last returned by the API for an owner.
type Snapshot struct {
	Transactions []core.Transaction
	FetchedAt    time.Time
}

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = log.Discard()
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetValue implements session.KV
func (r *SQLiteRepository) GetValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM session_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get value %s: %w", key, err)
	}
	return value, true, nil
}

// SetValues implements session.KV. All values are written in one transaction.
func (r *SQLiteRepository) SetValues(ctx context.Context, values map[string]string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for k, v := range values {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				k, v)
			if err != nil {
				return fmt.Errorf("set value %s: %w", k, err)
			}
		}
		return nil
	})
}

// DeleteValues implements session.KV
func (r *SQLiteRepository) DeleteValues(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := `DELETE FROM session_kv WHERE key IN (?` + strings.Repeat(",?", len(keys)-1) + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete values: %w", err)
	}
	return nil
}

// SaveSnapshot replaces the stored list for owner.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, owner string, snap Snapshot) error {
	payload, err := json.Marshal(snap.Transactions)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transaction_snapshots (owner, payload, item_count, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET payload = excluded.payload, item_count = excluded.item_count, fetched_at = excluded.fetched_at`,
		owner, string(payload), len(snap.Transactions), snap.FetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	r.logger.DebugContext(ctx, "Snapshot saved", log.FieldCount, len(snap.Transactions))
	return nil
}

// LoadSnapshot returns the stored list for owner; false when none exists.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, owner string) (Snapshot, bool, error) {
	var payload, fetchedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM transaction_snapshots WHERE owner = ?`, owner).
		Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap.Transactions); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot time: %w", err)
	}
	return snap, true, nil
}

// DeleteSnapshot drops the stored list for owner.
func (r *SQLiteRepository) DeleteSnapshot(ctx context.Context, owner string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transaction_snapshots WHERE owner = ?`, owner); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.ErrorContext(ctx, "Rollback failed", log.FieldError, rbErr)
		}
		return err
	}
	return tx.Commit()
}
