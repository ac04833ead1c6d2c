// Package app assembles the daemon: config, logging, storage, engine,
// poller, backup and the watchers that keep them current.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"linkflowd/internal/action"
	"linkflowd/internal/backup"
	"linkflowd/internal/config"
	"linkflowd/internal/dedupe"
	"linkflowd/internal/engine"
	"linkflowd/internal/eventbus"
	"linkflowd/internal/poller"
	"linkflowd/internal/store"
	logx "linkflowd/pkg/logx"
	"linkflowd/pkg/systemd"
)

type App struct {
	cfgm   *config.Manager
	logsvc *logx.Service
	log    logx.Logger

	store  store.Store
	engine *engine.Engine
	poll   *poller.Service
	bus    *eventbus.Bus

	sup *Supervisor
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logsvc, log := logx.New(mapLogxConfig(cfg.Logging))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	st, err := store.Open(mapStorageConfig(cfg.Storage), log.With(logx.String("comp", "store")))
	if err != nil {
		_ = logsvc.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	bus := eventbus.New()
	dispatcher := action.NewDispatcher(action.OSOpener{}, action.ExecRunner{}, log.With(logx.String("comp", "dispatch")))
	eng := engine.New(st, dispatcher, bus, log)

	pcfg, err := mapPollerConfig(cfg.Poller)
	if err != nil {
		_ = st.Close()
		_ = logsvc.Close()
		return nil, err
	}
	dd := buildDedupe(cfg.Poller, st, log)
	poll := poller.New(pcfg, st, dispatcher, dd, nil, bus, log)

	return &App{
		cfgm:   cfgm,
		logsvc: logsvc,
		log:    log,
		store:  st,
		engine: eng,
		poll:   poll,
		bus:    bus,
	}, nil
}

// Engine exposes the command surface for embedding callers.
func (a *App) Engine() *engine.Engine { return a.engine }

func (a *App) Start(ctx context.Context) error {
	a.sup = NewSupervisor(ctx, a.log)

	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return cfg.Validate()
	})
	a.sup.GoRestart("config.watch", a.cfgm.Watch)
	a.sup.Go0("config.fanout", a.configFanout)
	a.sup.Go0("events.log", a.eventLog)
	a.sup.Go0("systemd.watchdog", systemd.WatchdogLoop)

	a.poll.Start(a.sup.Context())

	if bcfg := a.cfgm.Get().Backup; bcfg != nil && bcfg.Enabled {
		a.startBackupLoop(*bcfg)
	}

	systemd.NotifyReady()
	a.log.Info("daemon started")
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	systemd.NotifyStopping()
	a.log.Info("daemon stopping")

	a.poll.Stop(ctx)
	var err error
	if a.sup != nil {
		err = a.sup.Stop(ctx)
	}
	if cerr := a.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	a.log.Info("daemon stopped")
	_ = a.logsvc.Close()
	return err
}

// configFanout applies committed config updates to the running
// services. Storage changes need a restart and are only logged.
func (a *App) configFanout(ctx context.Context) {
	prev := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-a.cfgm.Updates():
			if cfg == nil {
				continue
			}
			changed, attrs := config.SummarizeConfigChange(prev, cfg)
			if len(changed) == 0 {
				continue
			}
			a.log.Info("config reloaded", append(attrs, logx.Any("sections", changed))...)

			for _, section := range changed {
				switch section {
				case "logging":
					a.logsvc.Apply(mapLogxConfig(cfg.Logging))
				case "poller":
					pcfg, err := mapPollerConfig(cfg.Poller)
					if err != nil {
						a.log.Warn("poller config rejected", logx.Err(err))
						continue
					}
					a.poll.Apply(pcfg)
				case "storage":
					a.log.Warn("storage config changed; restart required to take effect")
				case "backup":
					a.log.Warn("backup config changed; restart required to take effect")
				}
			}
			prev = cfg
		}
	}
}

// eventLog subscribes to the bus and records lifecycle events. This is
// the headless stand-in for a UI surface.
func (a *App) eventLog(ctx context.Context) {
	ch, unsub := a.bus.Subscribe(32)
	defer unsub()
	log := a.log.With(logx.String("comp", "events"))
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			log.Debug(ev.Type, logx.Time("at", ev.Time), logx.Any("data", ev.Data))
		}
	}
}

func (a *App) startBackupLoop(bcfg config.BackupConfig) {
	interval, err := config.ParseDurationDefault("backup.interval", bcfg.Interval, 24*time.Hour)
	if err != nil {
		a.log.Warn("backup disabled", logx.Err(err))
		return
	}
	path := strings.TrimSpace(bcfg.Path)
	a.sup.Go0("backup.loop", func(ctx context.Context) {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				snap, err := backup.Export(ctx, a.store, path, now)
				if err != nil {
					a.log.Warn("backup failed", logx.Err(err), logx.String("path", path))
					continue
				}
				a.log.Info("backup written", logx.String("path", path), logx.Int("tasks", len(snap.Tasks)))
				a.bus.Publish(eventbus.Event{
					Type: eventbus.TypeBackupWritten,
					Data: eventbus.BackupWritten{Path: path, Tasks: len(snap.Tasks)},
				})
			}
		}
	})
}

// ---- config mapping ----

func mapLogxConfig(c config.LoggingConfig) logx.Config {
	return logx.Config{
		Level:   c.Level,
		Console: c.Console,
		File:    logx.FileConfig{Enabled: c.File.Enabled, Path: c.File.Path},
	}
}

func mapStorageConfig(c *config.StorageConfig) store.Config {
	if c == nil {
		return store.Config{Driver: "memory"}
	}
	busy, _ := config.ParseDurationDefault("storage.busy_timeout", c.BusyTimeout, 5*time.Second)
	driver := strings.TrimSpace(c.Driver)
	if driver == "" && strings.TrimSpace(c.Path) == "" {
		driver = "memory"
	}
	return store.Config{Driver: driver, Path: c.Path, BusyTimeout: busy}
}

func mapPollerConfig(c config.PollerConfig) (poller.Config, error) {
	interval, err := config.ParseDurationDefault("poller.interval", c.Interval, 30*time.Second)
	if err != nil {
		return poller.Config{}, err
	}
	grace, _, err := config.ParseDuration("poller.grace_window", c.GraceWindow)
	if err != nil {
		return poller.Config{}, err
	}
	return poller.Config{
		Enabled:     c.Enabled,
		Interval:    interval,
		Timezone:    c.Timezone,
		RatePerSec:  c.RatePerSec,
		GraceWindow: grace,
	}, nil
}

func buildDedupe(c config.PollerConfig, st store.Store, log logx.Logger) dedupe.Store {
	if !c.PersistDedup {
		return dedupe.NewMemory()
	}
	retention, err := config.ParseDurationDefault("poller.dedup_retention", c.DedupRetention, 30*24*time.Hour)
	if err != nil {
		log.Warn("invalid dedup retention; using default", logx.Err(err))
		retention = 30 * 24 * time.Hour
	}
	return dedupe.NewPersistent(st, retention, log.With(logx.String("comp", "dedupe")))
}
