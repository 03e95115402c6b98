package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/pavelanni/gradeboard/internal/dashboard"
	"github.com/pavelanni/gradeboard/internal/fixture"
	"github.com/pavelanni/gradeboard/internal/store"
)

// errImportLocked is returned when another import holds the database lock.
var errImportLocked = errors.New("another import is running")

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a YAML or JSON records file into the SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	f := cmd.Flags()
	f.String("db", "gradeboard.db", "SQLite database path")
	f.Bool("force", false, "Re-import even if the file content is unchanged")
	f.Duration("lock-timeout", 10*time.Second, "How long to wait for a concurrent import to finish")
	addLogFlags(cmd)
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	dbPath := v.GetString("db")
	ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration("lock-timeout"))
	defer cancel()

	lock, err := acquireImportLock(ctx, dbPath+".lock")
	if err != nil {
		return err
	}
	defer lock.Unlock()

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	imported, err := importRecords(db, args[0], v.GetBool("force"))
	if err != nil {
		return err
	}
	if !imported {
		fmt.Fprintln(cmd.OutOrStdout(), "records file unchanged, nothing to import")
	}
	return nil
}

// acquireImportLock takes the exclusive import lock at path, retrying until
// ctx is done. Only a lock held elsewhere is reported as errImportLocked.
func acquireImportLock(ctx context.Context, path string) (*flock.Flock, error) {
	lock := flock.New(path)
	locked, err := lock.TryLockContext(ctx, 250*time.Millisecond)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: %s", errImportLocked, lock.Path())
	case err != nil:
		return nil, fmt.Errorf("lock %s: %w", lock.Path(), err)
	case !locked:
		return nil, fmt.Errorf("%w: %s", errImportLocked, lock.Path())
	}
	return lock, nil
}

// importRecords replaces the stored records with the content of path unless
// that content is already the stored snapshot. It reports whether anything changed.
func importRecords(db *store.Store, path string, force bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	hash := sha256sum(data)
	storedHash, err := db.GetSnapshotHash()
	if err != nil {
		return false, fmt.Errorf("check import status for %s: %w", path, err)
	}
	if storedHash == hash && !force {
		slog.Info("records file unchanged, skipping", "path", path)
		return false, nil
	}

	students, err := fixture.Decode(bytes.NewReader(data), fixture.FormatFromPath(path))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	// Reject what the dashboard would refuse to serve.
	records, err := dashboard.NewRecords(students)
	if err != nil {
		return false, fmt.Errorf("validate %s: %w", path, err)
	}

	if err := db.ReplaceSnapshot(students, hash); err != nil {
		return false, fmt.Errorf("store records from %s: %w", path, err)
	}
	slog.Info("imported records", "path", path,
		"students", records.Len(), "results", records.ResultCount())
	return true, nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
