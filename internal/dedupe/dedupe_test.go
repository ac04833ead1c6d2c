package dedupe

import (
	"context"
	"testing"
	"time"

	logx "linkflowd/pkg/logx"
)

func TestKey(t *testing.T) {
	got := Key("action", "task_1", "2026-03-01", "09:00", "scheme_run")
	if got != "action|task_1|2026-03-01|09:00|scheme_run" {
		t.Fatalf("got %q", got)
	}
	if Key("action", "t") == Key("reminder", "t") {
		t.Fatal("namespaces must not collide")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if seen, _ := m.Seen(ctx, "k"); seen {
		t.Fatal("fresh store saw a key")
	}
	if err := m.Mark(ctx, "k", time.Now()); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if seen, _ := m.Seen(ctx, "k"); !seen {
		t.Fatal("marked key not seen")
	}
	if err := m.Mark(ctx, "", time.Now()); err != nil {
		t.Fatalf("empty key mark: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("empty key stored, len=%d", m.Len())
	}
}

type fakeBackend struct {
	fired  map[string]time.Time
	prunes int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{fired: map[string]time.Time{}}
}

func (f *fakeBackend) PutFired(_ context.Context, key string, at time.Time) error {
	f.fired[key] = at
	return nil
}

func (f *fakeBackend) HasFired(_ context.Context, key string) (bool, error) {
	_, ok := f.fired[key]
	return ok, nil
}

func (f *fakeBackend) PruneFired(_ context.Context, olderThan time.Time) error {
	f.prunes++
	for k, at := range f.fired {
		if at.Before(olderThan) {
			delete(f.fired, k)
		}
	}
	return nil
}

func TestPersistentStore(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend()
	p := NewPersistent(b, time.Hour, logx.Nop())

	if seen, _ := p.Seen(ctx, "k"); seen {
		t.Fatal("fresh store saw a key")
	}
	if err := p.Mark(ctx, "k", time.Now()); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if seen, _ := p.Seen(ctx, "k"); !seen {
		t.Fatal("marked key not seen through backend")
	}
}

func TestPersistentPrunesOpportunistically(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend()
	p := NewPersistent(b, time.Hour, logx.Nop())
	p.pruneEvery = 10

	old := time.Now().Add(-2 * time.Hour)
	if err := p.Mark(ctx, "stale", old); err != nil {
		t.Fatalf("mark: %v", err)
	}
	for i := 0; i < 15; i++ {
		if err := p.Mark(ctx, Key("k", time.Duration(i).String()), time.Now()); err != nil {
			t.Fatalf("mark %d: %v", i, err)
		}
	}
	if b.prunes == 0 {
		t.Fatal("expected at least one prune")
	}
	if _, ok := b.fired["stale"]; ok {
		t.Fatal("stale key survived prune")
	}
}
