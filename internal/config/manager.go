package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "linkflowd/pkg/logx"
)

// reloadDebounce absorbs the burst of fs events an editor emits for a
// single save (truncate, write, rename, chmod).
const reloadDebounce = 250 * time.Millisecond

// Manager owns the config file: initial load, validation, hot reload
// over fsnotify. Committed reloads are delivered on Updates,
// latest-wins; a reload that fails to parse or validate is dropped and
// the previous config stays in effect.
type Manager struct {
	path string

	mu       sync.RWMutex
	cfg      *Config
	lastHash uint64

	log      logx.Logger
	validate func(ctx context.Context, cfg *Config) error

	updates chan *Config
}

func NewManager(path string) *Manager {
	return &Manager{path: path, updates: make(chan *Config, 1)}
}

func (m *Manager) SetLogger(log logx.Logger) { m.log = log }

// SetValidator installs the check a reloaded config must pass before it
// displaces the current one.
func (m *Manager) SetValidator(fn func(ctx context.Context, cfg *Config) error) {
	m.validate = fn
}

// Parse reads and decodes the file without committing it.
func (m *Manager) Parse() (*Config, error) {
	b, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	return decodeConfig(m.path, b)
}

// Load parses the file and makes it the current config.
func (m *Manager) Load() (*Config, error) {
	cfg, err := m.Parse()
	if err != nil {
		return nil, err
	}
	m.commit(cfg)
	return cfg, nil
}

func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Updates delivers committed reloads. The channel holds only the latest
// pending config; a slow reader sees the newest state, not every
// intermediate one.
func (m *Manager) Updates() <-chan *Config { return m.updates }

func (m *Manager) commit(cfg *Config) {
	m.mu.Lock()
	m.cfg = cfg
	m.lastHash = hashConfig(cfg)
	m.mu.Unlock()
}

func (m *Manager) publish(cfg *Config) {
	for {
		select {
		case m.updates <- cfg:
			return
		default:
			// Displace the stale pending update.
			select {
			case <-m.updates:
			default:
			}
		}
	}
}

// Watch blocks on the file watcher until ctx is done, reloading on
// changes to the config file. A broken watcher surfaces as a non-nil
// error; the supervisor recreates it with backoff.
func (m *Manager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer w.Close()
	// Watch the directory: editors replace the file on save, which
	// would orphan a watch on the file itself.
	dir := filepath.Dir(m.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("config: watch %s: %w", dir, err)
	}

	base := filepath.Base(m.path)
	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("config: watcher closed")
			}
			if !strings.EqualFold(filepath.Base(ev.Name), base) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(reloadDebounce, func() { m.reload(ctx) })
		case werr, ok := <-w.Errors:
			if !ok {
				return errors.New("config: watcher closed")
			}
			if werr == nil {
				continue
			}
			if strings.Contains(strings.ToLower(werr.Error()), "overflow") {
				// Events were lost; reload unconditionally.
				m.reload(ctx)
				continue
			}
			return fmt.Errorf("config: watch: %w", werr)
		}
	}
}

// reload parses, validates and commits the file, skipping content that
// hashes identical to the current config.
func (m *Manager) reload(ctx context.Context) {
	cfg, err := m.Parse()
	if err != nil {
		m.log.Warn("config reload failed", logx.String("path", m.path), logx.Err(err))
		return
	}

	h := hashConfig(cfg)
	m.mu.RLock()
	unchanged := h != 0 && h == m.lastHash
	m.mu.RUnlock()
	if unchanged {
		return
	}

	if m.validate != nil {
		vctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := m.validate(vctx, cfg)
		cancel()
		if err != nil {
			m.log.Warn("config rejected", logx.String("path", m.path), logx.Err(err))
			return
		}
	}

	m.commit(cfg)
	m.publish(cfg)
	m.log.Info("config reloaded", logx.String("path", m.path))
}

func hashConfig(cfg *Config) uint64 {
	if cfg == nil {
		return 0
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return 0
	}
	return hashBytes(b)
}
