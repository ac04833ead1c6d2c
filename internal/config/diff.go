package config

import (
	"sort"
	"strings"

	logx "linkflowd/pkg/logx"
)

// SummarizeConfigChange returns a compact list of changed sections plus
// structured attrs safe for logging.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 12)

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	// Storage: nil means defaults.
	var oS, nS StorageConfig
	if oldCfg.Storage != nil {
		oS = *oldCfg.Storage
	}
	if newCfg.Storage != nil {
		nS = *newCfg.Storage
	}
	if oS != nS {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", strings.TrimSpace(nS.Driver)),
			logx.Bool("storage.path_set", strings.TrimSpace(nS.Path) != ""),
			logx.String("storage.busy_timeout", strings.TrimSpace(nS.BusyTimeout)),
		)
	}

	if oldCfg.Poller != newCfg.Poller {
		changed = append(changed, "poller")
		attrs = append(attrs,
			logx.Bool("poller.enabled", newCfg.Poller.Enabled),
			logx.String("poller.interval", strings.TrimSpace(newCfg.Poller.Interval)),
			logx.String("poller.timezone", strings.TrimSpace(newCfg.Poller.Timezone)),
			logx.Int("poller.rate_per_sec", newCfg.Poller.RatePerSec),
			logx.Bool("poller.persist_dedup", newCfg.Poller.PersistDedup),
		)
	}

	var oB, nB BackupConfig
	if oldCfg.Backup != nil {
		oB = *oldCfg.Backup
	}
	if newCfg.Backup != nil {
		nB = *newCfg.Backup
	}
	if oB != nB {
		changed = append(changed, "backup")
		attrs = append(attrs,
			logx.Bool("backup.enabled", nB.Enabled),
			logx.Bool("backup.path_set", strings.TrimSpace(nB.Path) != ""),
			logx.String("backup.interval", strings.TrimSpace(nB.Interval)),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}
