package dedupe

import (
	"context"
	"sync/atomic"
	"time"

	logx "linkflowd/pkg/logx"
)

// Backend is the persistence surface a durable dedupe store needs. The
// sqlite task store implements it on top of its fired_actions table.
type Backend interface {
	PutFired(ctx context.Context, key string, at time.Time) error
	HasFired(ctx context.Context, key string) (bool, error)
	PruneFired(ctx context.Context, olderThan time.Time) error
}

// Persistent is a Store whose keys survive process restarts. Old entries are
// pruned opportunistically every pruneEvery marks so the table stays bounded.
type Persistent struct {
	backend   Backend
	retention time.Duration
	log       logx.Logger

	opCount    atomic.Uint64
	pruneEvery uint64
}

func NewPersistent(backend Backend, retention time.Duration, log logx.Logger) *Persistent {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Persistent{backend: backend, retention: retention, log: log, pruneEvery: 500}
}

func (p *Persistent) Seen(ctx context.Context, key string) (bool, error) {
	return p.backend.HasFired(ctx, key)
}

func (p *Persistent) Mark(ctx context.Context, key string, at time.Time) error {
	if key == "" {
		return nil
	}
	err := p.backend.PutFired(ctx, key, at)
	if err == nil && p.opCount.Add(1)%p.pruneEvery == 0 {
		pctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		if perr := p.backend.PruneFired(pctx, at.Add(-p.retention)); perr != nil {
			p.log.Debug("dedupe prune failed", logx.Err(perr))
		}
		cancel()
	}
	return err
}
