package config

type Config struct {
	Logging LoggingConfig  `json:"logging"`
	Storage *StorageConfig `json:"storage,omitempty"`
	Poller  PollerConfig   `json:"poller"`
	Backup  *BackupConfig  `json:"backup,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig selects the persistence driver.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./linkflow.db" }
//
// Nil or an empty driver means sqlite when a path is set, memory otherwise.
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// PollerConfig controls the due-action poller.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
//
// Defaults (when fields are omitted/zero):
//   - interval: "30s"
//   - timezone: system local
//   - rate_per_sec: 2
//   - dedup_retention: "720h"
type PollerConfig struct {
	Enabled  bool   `json:"enabled"`
	Interval string `json:"interval,omitempty"`

	// Timezone resolves due dates and times (IANA name, e.g. "Asia/Shanghai").
	Timezone string `json:"timezone,omitempty"`

	// RatePerSec caps script launches per second. 0 uses the default.
	RatePerSec int `json:"rate_per_sec,omitempty"`

	// PersistDedup records fired keys in storage so restarts don't re-fire.
	PersistDedup bool `json:"persist_dedup,omitempty"`

	// DedupRetention bounds how long persisted fired keys are kept.
	DedupRetention string `json:"dedup_retention,omitempty"`

	// GraceWindow skips dispatch for tasks that came due longer than this
	// before the poller saw them (e.g. while the process was down).
	// "0s" disables the window and fires regardless of how stale the task is.
	GraceWindow string `json:"grace_window,omitempty"`
}

// BackupConfig controls the optional periodic JSON snapshot export.
type BackupConfig struct {
	Enabled  bool   `json:"enabled"`
	Path     string `json:"path"`
	Interval string `json:"interval,omitempty"` // default "24h"
}
