package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"moneta/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists one snapshot row per user.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
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

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, userID string) (ledger.Snapshot, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM ledgers WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.DecodeSnapshot(nil)
	}
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("load ledger for user: %w", err)
	}
	return ledger.DecodeSnapshot(raw)
}

func (s *SQLiteStore) Save(ctx context.Context, userID string, snap ledger.Snapshot) error {
	raw, err := snap.Encode()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ledgers (user_id, snapshot, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		userID, raw, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save ledger for user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
