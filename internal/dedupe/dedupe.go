// Package dedupe tracks which due actions have already fired so repeated
// poller passes cannot dispatch the same occurrence twice.
package dedupe

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store records fire keys. Keys are per occurrence (task id + due date + time
// + scheme id), so a recurring task naturally produces a fresh key each time
// it rolls over.
type Store interface {
	// Seen reports whether the key has been marked.
	Seen(ctx context.Context, key string) (bool, error)
	// Mark records the key. Marking is unconditional: failed dispatches are
	// marked too, so one occurrence never produces a tight failure loop.
	Mark(ctx context.Context, key string, at time.Time) error
}

// Key builds a composite dedupe key. The first part is conventionally a
// namespace ("action", "reminder") so different firing kinds never collide.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Memory is the default in-process store. It grows unbounded over a
// long-running process; entries are only ever inserted by the poller from
// within a pass.
type Memory struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{seen: map[string]time.Time{}}
}

func (m *Memory) Seen(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	_, ok := m.seen[key]
	m.mu.Unlock()
	return ok, nil
}

func (m *Memory) Mark(_ context.Context, key string, at time.Time) error {
	if key == "" {
		return nil
	}
	m.mu.Lock()
	m.seen[key] = at
	m.mu.Unlock()
	return nil
}

// Len reports the number of recorded keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}
