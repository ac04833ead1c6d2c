package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
logging:
  level: debug
  console: true
  file:
    enabled: false
    path: ""
storage:
  driver: sqlite
  path: ./linkflow.db
  busy_timeout: 5s
poller:
  enabled: true
  interval: 45s
  timezone: Asia/Shanghai
  rate_per_sec: 3
  persist_dedup: true
  dedup_retention: 720h
`)
	m := NewManager(path)
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("logging: %+v", cfg.Logging)
	}
	if cfg.Storage == nil || cfg.Storage.Driver != "sqlite" {
		t.Fatalf("storage: %+v", cfg.Storage)
	}
	if !cfg.Poller.Enabled || cfg.Poller.Interval != "45s" || cfg.Poller.RatePerSec != 3 {
		t.Fatalf("poller: %+v", cfg.Poller)
	}
	if !cfg.Poller.PersistDedup || cfg.Poller.DedupRetention != "720h" {
		t.Fatalf("dedup: %+v", cfg.Poller)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
logging:
  level: info
pollerr:
  enabled: true
`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected unknown-field error")
	}
}

func TestParseJSON(t *testing.T) {
	path := writeConfig(t, "config.json",
		`{"logging":{"level":"info","console":true,"file":{"enabled":false,"path":""}},"poller":{"enabled":true}}`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.Poller.Enabled {
		t.Fatalf("poller: %+v", cfg.Poller)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"bad level", Config{Logging: LoggingConfig{Level: "loud"}}, "logging.level"},
		{"bad driver", Config{Storage: &StorageConfig{Driver: "postgres"}}, "storage.driver"},
		{"bad interval", Config{Poller: PollerConfig{Interval: "soon"}}, "poller.interval"},
		{"bad tz", Config{Poller: PollerConfig{Timezone: "Mars/Olympus"}}, "poller.timezone"},
		{"negative rate", Config{Poller: PollerConfig{RatePerSec: -1}}, "rate_per_sec"},
		{"file sink without path", Config{Logging: LoggingConfig{File: LoggingFile{Enabled: true}}}, "logging.file.path"},
	}
	for _, c := range cases {
		err := c.cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Fatalf("%s: got %v, want mention of %q", c.name, err, c.want)
		}
	}
}

func TestSummarizeConfigChange(t *testing.T) {
	oldCfg := &Config{Logging: LoggingConfig{Level: "info"}, Poller: PollerConfig{Enabled: true, Interval: "30s"}}
	newCfg := &Config{Logging: LoggingConfig{Level: "debug"}, Poller: PollerConfig{Enabled: true, Interval: "10s"}}
	changed, _ := SummarizeConfigChange(oldCfg, newCfg)
	if len(changed) != 2 || changed[0] != "logging" || changed[1] != "poller" {
		t.Fatalf("changed = %v", changed)
	}

	changed, _ = SummarizeConfigChange(newCfg, newCfg)
	if len(changed) != 0 {
		t.Fatalf("no-op diff reported %v", changed)
	}
}

func TestParseDuration(t *testing.T) {
	d, ok, err := ParseDuration("x", " 45s ")
	if err != nil || !ok || d.Seconds() != 45 {
		t.Fatalf("got %v, %v, %v", d, ok, err)
	}
	if _, ok, err := ParseDuration("x", ""); err != nil || ok {
		t.Fatalf("empty field: ok=%v err=%v", ok, err)
	}
	if _, _, err := ParseDuration("x", "-1s"); err == nil {
		t.Fatal("negative duration accepted")
	}
	if d, err := ParseDurationDefault("x", "", 30*time.Second); err != nil || d.Seconds() != 30 {
		t.Fatalf("default not applied: %v, %v", d, err)
	}
	if _, err := ParseDurationDefault("x", "nope", time.Second); err == nil {
		t.Fatal("bad value accepted")
	}
}

func TestManagerPublishesUpdates(t *testing.T) {
	path := writeConfig(t, "config.yaml", "logging:\n  level: info\n")
	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	m.reload(context.Background())
	select {
	case cfg := <-m.Updates():
		if cfg.Logging.Level != "debug" {
			t.Fatalf("published level = %q", cfg.Logging.Level)
		}
	default:
		t.Fatal("no update published after reload")
	}

	// Unchanged content hashes the same and must not publish again.
	m.reload(context.Background())
	select {
	case cfg := <-m.Updates():
		t.Fatalf("unexpected update for identical config: %+v", cfg.Logging)
	default:
	}
	if m.Get().Logging.Level != "debug" {
		t.Fatalf("committed level = %q", m.Get().Logging.Level)
	}
}
