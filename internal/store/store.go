package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"linkflowd/internal/model"
	logx "linkflowd/pkg/logx"
)

var ErrNotFound = errors.New("store: not found")

// Config configures the task store.
//
// Driver values:
//   - "sqlite" (default): SQLite database file
//   - "memory": in-process store, used by tests and throwaway runs
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Snapshot is the full persisted state, used by backup export/import.
type Snapshot struct {
	Lists   []model.List   `json:"lists"`
	Tasks   []model.Task   `json:"tasks"`
	Schemes []model.Scheme `json:"schemes"`
}

// Store is the persistence boundary the engine and poller consume.
// Writes are last-write-wins; there is no optimistic concurrency.
type Store interface {
	LoadTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (model.Task, error)
	CreateTask(ctx context.Context, t model.Task) error
	SaveTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, id string) error

	ListLists(ctx context.Context) ([]model.List, error)
	CreateList(ctx context.Context, l model.List) error
	UpdateList(ctx context.Context, l model.List) error
	DeleteList(ctx context.Context, id string) error

	ListSchemes(ctx context.Context) ([]model.Scheme, error)
	GetScheme(ctx context.Context, id string) (model.Scheme, error)
	CreateScheme(ctx context.Context, s model.Scheme) error
	UpdateScheme(ctx context.Context, s model.Scheme) error
	// DeleteScheme removes the scheme and every binding referencing it from
	// every task (cascading cleanup; no dangling references survive).
	DeleteScheme(ctx context.Context, id string) error

	Snapshot(ctx context.Context) (Snapshot, error)
	// Restore replaces the entire persisted state with the snapshot.
	Restore(ctx context.Context, snap Snapshot) error

	// Persistent dedupe surface (dedupe.Backend).
	PutFired(ctx context.Context, key string, at time.Time) error
	HasFired(ctx context.Context, key string) (bool, error)
	PruneFired(ctx context.Context, olderThan time.Time) error

	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, errors.New("store: unknown driver: " + cfg.Driver)
	}
}
