// Package worker consumes ledger change events and materializes backups of
// the changed user's ledger: a JSON snapshot on disk, a CSV alongside it,
// and optionally a Google Sheets mirror.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"moneta/internal/amqp"
	"moneta/internal/export"
	"moneta/internal/ledger"
	"moneta/internal/log"
	"moneta/internal/persist"
)

// Mirror is the optional spreadsheet target. Nil disables mirroring.
type Mirror interface {
	Mirror(ctx context.Context, st *ledger.Store) error
}

// BackupWorker writes export artifacts for users whose ledgers changed.
type BackupWorker struct {
	store     persist.Store
	mirror    Mirror
	backupDir string
}

func NewBackupWorker(store persist.Store, mirror Mirror, backupDir string) *BackupWorker {
	return &BackupWorker{
		store:     store,
		mirror:    mirror,
		backupDir: backupDir,
	}
}

// HandleEvent processes one ledger change event. The event names only the
// user; the worker loads the latest snapshot from the store so reordered or
// replayed deliveries always back up current state.
func (w *BackupWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		log.FieldComponent, log.ComponentWorker,
		log.FieldUserID, event.UserID,
		"kind", event.Kind)

	snap, err := w.store.Load(ctx, event.UserID)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	st := ledger.FromSnapshot(snap)

	if err := w.writeBackupFiles(ctx, event.UserID, st); err != nil {
		return err
	}

	if w.mirror != nil {
		if err := w.mirror.Mirror(ctx, st); err != nil {
			return fmt.Errorf("mirror to sheets: %w", err)
		}
	}

	slog.InfoContext(ctx, "Backup completed",
		log.FieldComponent, log.ComponentWorker,
		log.FieldUserID, event.UserID,
		"records", len(st.Records()))

	return nil
}

func (w *BackupWorker) writeBackupFiles(ctx context.Context, userID string, st *ledger.Store) error {
	dir := filepath.Join(w.backupDir, userID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	backup, err := export.Backup(st)
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ledger.json"), backup, 0644); err != nil {
		return fmt.Errorf("write json backup: %w", err)
	}

	csvData, err := export.CSV(st)
	if err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ledger.csv"), csvData, 0644); err != nil {
		return fmt.Errorf("write csv backup: %w", err)
	}

	slog.DebugContext(ctx, "Backup files written", log.FieldUserID, userID, "dir", dir)
	return nil
}
