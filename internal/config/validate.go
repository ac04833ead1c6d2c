package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate rejects configs that would fail at service start, so a bad
// reload never displaces a working config.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if c.Logging.File.Enabled && strings.TrimSpace(c.Logging.File.Path) == "" {
		return fmt.Errorf("logging.file.path is required when logging.file.enabled")
	}

	if c.Storage != nil {
		switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
		case "", "sqlite", "sqlite3", "memory":
		default:
			return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
		}
		if _, _, err := ParseDuration("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
	}

	if _, _, err := ParseDuration("poller.interval", c.Poller.Interval); err != nil {
		return err
	}
	if _, _, err := ParseDuration("poller.dedup_retention", c.Poller.DedupRetention); err != nil {
		return err
	}
	if _, _, err := ParseDuration("poller.grace_window", c.Poller.GraceWindow); err != nil {
		return err
	}
	if c.Poller.RatePerSec < 0 {
		return fmt.Errorf("poller.rate_per_sec must be >= 0")
	}
	if tz := strings.TrimSpace(c.Poller.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("poller.timezone: %w", err)
		}
	}

	if c.Backup != nil {
		if c.Backup.Enabled && strings.TrimSpace(c.Backup.Path) == "" {
			return fmt.Errorf("backup.path is required when backup.enabled")
		}
		if _, _, err := ParseDuration("backup.interval", c.Backup.Interval); err != nil {
			return err
		}
	}
	return nil
}
