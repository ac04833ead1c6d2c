// Package poller scans stored tasks on a fixed interval and fires the
// script actions and reminders of tasks whose due moment has passed.
package poller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"linkflowd/internal/action"
	"linkflowd/internal/dedupe"
	"linkflowd/internal/eventbus"
	"linkflowd/internal/store"
	logx "linkflowd/pkg/logx"
)

const (
	defaultInterval   = 30 * time.Second
	defaultRatePerSec = 2

	// reminderGrace bounds how stale a reminder may be and still fire.
	// Reminders older than this (e.g. missed while the process was down)
	// are skipped, never retried.
	reminderGrace = 10 * time.Minute
)

type Config struct {
	Enabled    bool
	Interval   time.Duration
	Timezone   string
	RatePerSec int

	// GraceWindow bounds how stale a due action may be and still fire.
	// Zero disables the bound.
	GraceWindow time.Duration
}

func (c Config) normalized() Config {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.RatePerSec <= 0 {
		c.RatePerSec = defaultRatePerSec
	}
	return c
}

type Service struct {
	mu  sync.Mutex
	cfg Config
	c   *cron.Cron
	loc *time.Location

	store      store.Store
	dispatcher *action.Dispatcher
	dedupe     dedupe.Store
	notifier   Notifier
	bus        *eventbus.Bus
	log        logx.Logger
	limiter    *rate.Limiter

	// now is swappable in tests.
	now func() time.Time
}

func New(cfg Config, st store.Store, d *action.Dispatcher, dd dedupe.Store, n Notifier, bus *eventbus.Bus, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	cfg = cfg.normalized()
	if n == nil {
		n = LogNotifier{Log: log}
	}
	return &Service{
		cfg:        cfg,
		store:      st,
		dispatcher: d,
		dedupe:     dd,
		notifier:   n,
		bus:        bus,
		log:        log.With(logx.String("comp", "poller")),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		now:        time.Now,
	}
}

// Enabled reports the current config flag. (Thread-safe; Apply may run concurrently.)
func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled
}

// Apply installs a reloaded config. Interval or timezone changes
// restart the cron trigger; the rate limit updates in place.
func (s *Service) Apply(cfg Config) {
	cfg = cfg.normalized()

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.cfg
	s.cfg = cfg
	if cfg.RatePerSec != old.RatePerSec {
		s.limiter.SetLimit(rate.Limit(cfg.RatePerSec))
		s.limiter.SetBurst(cfg.RatePerSec)
	}
	if s.c == nil {
		return
	}
	if cfg.Interval != old.Interval || strings.TrimSpace(cfg.Timezone) != strings.TrimSpace(old.Timezone) || cfg.Enabled != old.Enabled {
		s.restartLocked()
	}
}

// Start begins interval scanning. Passes cannot overlap: a tick that
// arrives while the previous pass still runs is skipped.
func (s *Service) Start(ctx context.Context) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.startLocked()
}

func (s *Service) startLocked() {
	if !s.cfg.Enabled {
		s.log.Info("poller disabled")
		return
	}
	loc := s.loadLocationLocked()
	s.loc = loc
	s.c = cron.New(cron.WithLocation(loc), cron.WithChain(
		cron.Recover(cron.DiscardLogger),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	spec := fmt.Sprintf("@every %s", s.cfg.Interval)
	_, err := s.c.AddFunc(spec, s.tick)
	if err != nil {
		s.log.Error("tick registration failed", logx.Err(err), logx.String("spec", spec))
		s.c = nil
		return
	}
	s.c.Start()
	s.log.Info("service started",
		logx.Duration("interval", s.cfg.Interval),
		logx.String("tz", loc.String()),
		logx.Int("rate_per_sec", s.cfg.RatePerSec),
	)
}

func (s *Service) restartLocked() {
	if s.c != nil {
		s.c.Stop()
		s.c = nil
	}
	s.startLocked()
}

// Stop halts scanning and waits for an in-flight pass to finish.
func (s *Service) Stop(ctx context.Context) {
	start := time.Now()
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
			// best-effort
		}
	}
	s.log.Info("service stopped", logx.Duration("took", time.Since(start)))
}

func (s *Service) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.RunPass(ctx, s.now()); err != nil {
		s.log.Warn("pass failed", logx.Err(err))
	}
}

func (s *Service) loadLocationLocked() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone; falling back to local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}
