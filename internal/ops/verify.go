package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"taskden/internal/kvstore"
	"taskden/internal/task"
)

// VerifyReport summarizes what a restored archive contained.
type VerifyReport struct {
	Tasks     int
	Completed int
}

// Verify restores an archive into a scratch directory and reads the task
// collection back out of it, proving the backup is actually loadable.
func Verify(ctx context.Context, archivePath string) (VerifyReport, error) {
	tmp, err := os.MkdirTemp("", "taskden-verify-")
	if err != nil {
		return VerifyReport{}, err
	}
	defer os.RemoveAll(tmp)

	if err := Restore(archivePath, tmp); err != nil {
		return VerifyReport{}, err
	}

	kv, err := openRestored(tmp)
	if err != nil {
		return VerifyReport{}, err
	}
	defer kv.Close()

	tasks, err := task.NewStore(kv).Load(ctx)
	if err != nil {
		return VerifyReport{}, fmt.Errorf("archive restored but tasks unreadable: %w", err)
	}

	report := VerifyReport{Tasks: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			report.Completed++
		}
	}
	return report, nil
}

// openRestored picks the backend present in a restored data directory: the
// sqlite database if one exists, the file store otherwise.
func openRestored(dir string) (kvstore.Store, error) {
	dbPath := filepath.Join(dir, "taskden.db")
	if _, err := os.Stat(dbPath); err == nil {
		return kvstore.OpenSQLiteStore(dbPath)
	}
	return kvstore.NewFileStore(filepath.Join(dir, "tasks"))
}
