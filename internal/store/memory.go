package store

import (
	"context"
	"sync"
	"time"

	"linkflowd/internal/model"
)

// memoryStore keeps everything in process memory. It backs tests and
// ephemeral runs where no database path is configured.
type memoryStore struct {
	mu sync.RWMutex

	lists       map[string]model.List
	listOrder   []string
	tasks       map[string]model.Task
	taskOrder   []string
	schemes     map[string]model.Scheme
	schemeOrder []string
	fired       map[string]time.Time
}

// NewMemory returns an empty in-memory Store seeded with the default
// lists and schemes, matching what a fresh sqlite database would hold.
func NewMemory() Store {
	m := &memoryStore{
		lists:   map[string]model.List{},
		tasks:   map[string]model.Task{},
		schemes: map[string]model.Scheme{},
		fired:   map[string]time.Time{},
	}
	for _, l := range defaultLists() {
		m.lists[l.ID] = l
		m.listOrder = append(m.listOrder, l.ID)
	}
	for _, sc := range defaultSchemes() {
		m.schemes[sc.ID] = sc
		m.schemeOrder = append(m.schemeOrder, sc.ID)
	}
	return m
}

func (m *memoryStore) Close() error { return nil }

// ---- tasks ----

func (m *memoryStore) LoadTasks(ctx context.Context) ([]model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Task, 0, len(m.taskOrder))
	for _, id := range m.taskOrder {
		out = append(out, copyTask(m.tasks[id]))
	}
	return out, nil
}

func (m *memoryStore) GetTask(ctx context.Context, id string) (model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return copyTask(t), nil
}

func (m *memoryStore) CreateTask(ctx context.Context, t model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		m.taskOrder = append(m.taskOrder, t.ID)
	}
	m.tasks[t.ID] = copyTask(t)
	return nil
}

func (m *memoryStore) SaveTask(ctx context.Context, t model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	m.tasks[t.ID] = copyTask(t)
	return nil
}

func (m *memoryStore) DeleteTask(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	m.taskOrder = removeID(m.taskOrder, id)
	return nil
}

// ---- lists ----

func (m *memoryStore) ListLists(ctx context.Context) ([]model.List, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.List, 0, len(m.listOrder))
	for _, id := range m.listOrder {
		out = append(out, m.lists[id])
	}
	return out, nil
}

func (m *memoryStore) CreateList(ctx context.Context, l model.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[l.ID]; !ok {
		m.listOrder = append(m.listOrder, l.ID)
	}
	m.lists[l.ID] = l
	return nil
}

func (m *memoryStore) UpdateList(ctx context.Context, l model.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[l.ID]; !ok {
		return ErrNotFound
	}
	m.lists[l.ID] = l
	return nil
}

func (m *memoryStore) DeleteList(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[id]; !ok {
		return ErrNotFound
	}
	delete(m.lists, id)
	m.listOrder = removeID(m.listOrder, id)
	// Mirrors the sqlite FK ON DELETE SET NULL.
	for tid, t := range m.tasks {
		if t.ListID == id {
			t.ListID = ""
			m.tasks[tid] = t
		}
	}
	return nil
}

// ---- schemes ----

func (m *memoryStore) ListSchemes(ctx context.Context) ([]model.Scheme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Scheme, 0, len(m.schemeOrder))
	for _, id := range m.schemeOrder {
		out = append(out, m.schemes[id])
	}
	return out, nil
}

func (m *memoryStore) GetScheme(ctx context.Context, id string) (model.Scheme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sc, ok := m.schemes[id]
	if !ok {
		return model.Scheme{}, ErrNotFound
	}
	return sc, nil
}

func (m *memoryStore) CreateScheme(ctx context.Context, sc model.Scheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schemes[sc.ID]; !ok {
		m.schemeOrder = append(m.schemeOrder, sc.ID)
	}
	m.schemes[sc.ID] = sc
	return nil
}

func (m *memoryStore) UpdateScheme(ctx context.Context, sc model.Scheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schemes[sc.ID]; !ok {
		return ErrNotFound
	}
	m.schemes[sc.ID] = sc
	return nil
}

func (m *memoryStore) DeleteScheme(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schemes[id]; !ok {
		return ErrNotFound
	}
	delete(m.schemes, id)
	m.schemeOrder = removeID(m.schemeOrder, id)
	// Mirrors the sqlite FK ON DELETE CASCADE on task_actions.
	for tid, t := range m.tasks {
		kept := t.Actions[:0:0]
		for _, a := range t.Actions {
			if a.SchemeID != id {
				kept = append(kept, a)
			}
		}
		t.Actions = kept
		m.tasks[tid] = t
	}
	return nil
}

// ---- snapshot / restore ----

// Snapshot assembles all three collections under a single read lock so a
// concurrent scheme delete cannot leave a task binding without its scheme.
func (m *memoryStore) Snapshot(ctx context.Context) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := Snapshot{
		Lists:   make([]model.List, 0, len(m.listOrder)),
		Tasks:   make([]model.Task, 0, len(m.taskOrder)),
		Schemes: make([]model.Scheme, 0, len(m.schemeOrder)),
	}
	for _, id := range m.listOrder {
		snap.Lists = append(snap.Lists, m.lists[id])
	}
	for _, id := range m.taskOrder {
		snap.Tasks = append(snap.Tasks, copyTask(m.tasks[id]))
	}
	for _, id := range m.schemeOrder {
		snap.Schemes = append(snap.Schemes, m.schemes[id])
	}
	return snap, nil
}

func (m *memoryStore) Restore(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists, m.listOrder = map[string]model.List{}, nil
	m.tasks, m.taskOrder = map[string]model.Task{}, nil
	m.schemes, m.schemeOrder = map[string]model.Scheme{}, nil
	m.fired = map[string]time.Time{}
	for _, l := range snap.Lists {
		m.lists[l.ID] = l
		m.listOrder = append(m.listOrder, l.ID)
	}
	for _, t := range snap.Tasks {
		m.tasks[t.ID] = copyTask(t)
		m.taskOrder = append(m.taskOrder, t.ID)
	}
	for _, sc := range snap.Schemes {
		m.schemes[sc.ID] = sc
		m.schemeOrder = append(m.schemeOrder, sc.ID)
	}
	return nil
}

// ---- fired actions (dedupe.Backend) ----

func (m *memoryStore) PutFired(ctx context.Context, key string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fired[key] = at
	return nil
}

func (m *memoryStore) HasFired(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.fired[key]
	return ok, nil
}

func (m *memoryStore) PruneFired(ctx context.Context, olderThan time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, at := range m.fired {
		if at.Before(olderThan) {
			delete(m.fired, k)
		}
	}
	return nil
}

// ---- helpers ----

func copyTask(t model.Task) model.Task {
	out := t
	if t.Reminder != nil {
		r := *t.Reminder
		out.Reminder = &r
	}
	if t.Repeat != nil {
		rule := *t.Repeat
		rule.DaysOfWeek = append([]int(nil), t.Repeat.DaysOfWeek...)
		rule.DaysOfMonth = append([]int(nil), t.Repeat.DaysOfMonth...)
		out.Repeat = &rule
	}
	if t.Actions != nil {
		out.Actions = make([]model.ActionBinding, len(t.Actions))
		for i, a := range t.Actions {
			out.Actions[i] = model.ActionBinding{
				SchemeID: a.SchemeID,
				Params:   append([]string(nil), a.Params...),
			}
		}
	}
	return out
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
