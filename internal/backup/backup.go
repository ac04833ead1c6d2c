// Package backup exports and imports the full data snapshot as JSON.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"linkflowd/internal/store"
)

// Version is the backup file format version.
const Version = 1

var (
	ErrVersion       = errors.New("backup: unsupported version")
	ErrEmptySnapshot = errors.New("backup: snapshot has no lists")
)

// File is the on-disk backup envelope.
type File struct {
	Version    int            `json:"version"`
	ExportedAt string         `json:"exportedAt"`
	Snapshot   store.Snapshot `json:"snapshot"`
}

// Export writes the store's current snapshot to path. The write is
// atomic: a temp file in the same directory is renamed into place.
func Export(ctx context.Context, st store.Store, path string, now time.Time) (store.Snapshot, error) {
	snap, err := st.Snapshot(ctx)
	if err != nil {
		return store.Snapshot{}, err
	}
	f := File{
		Version:    Version,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Snapshot:   snap,
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return store.Snapshot{}, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return store.Snapshot{}, err
	}
	tmp, err := os.CreateTemp(dir, ".backup-*.json")
	if err != nil {
		return store.Snapshot{}, err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return store.Snapshot{}, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return store.Snapshot{}, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return store.Snapshot{}, err
	}
	return snap, nil
}

// Import validates a backup file and replaces the store's contents
// with its snapshot.
func Import(ctx context.Context, st store.Store, path string) (store.Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return store.Snapshot{}, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return store.Snapshot{}, fmt.Errorf("backup: parse: %w", err)
	}
	if f.Version != Version {
		return store.Snapshot{}, fmt.Errorf("%w: %d", ErrVersion, f.Version)
	}
	if len(f.Snapshot.Lists) == 0 {
		return store.Snapshot{}, ErrEmptySnapshot
	}
	if err := st.Restore(ctx, f.Snapshot); err != nil {
		return store.Snapshot{}, err
	}
	return f.Snapshot, nil
}
