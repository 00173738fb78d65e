package config

import "path/filepath"

const (
	defaultConfigPath     = "~/.config/tscproj/config.toml"
	projectConfigName     = "tscproj.toml"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultRetentionDays  = 30
	defaultIndent         = 2
	defaultBackupSuffix   = ".backup"
	defaultSpatialSuffix  = ".scaled"
	defaultTemporalSuffix = ".timescaled"
	defaultBatchWorkers   = 4
	maxBatchWorkers       = 64
	historyFileName       = "history.db"
)

// DefaultAudioTypes lists the clip types whose duration is preserved by default.
var DefaultAudioTypes = []string{"AMFile"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetentionDays,
		},
		Transform: Transform{
			PreserveAudioDuration: true,
			AudioTypes:            append([]string(nil), DefaultAudioTypes...),
			RoundCanvas:           true,
		},
		Output: Output{
			Indent:         defaultIndent,
			Backup:         true,
			BackupSuffix:   defaultBackupSuffix,
			SpatialSuffix:  defaultSpatialSuffix,
			TemporalSuffix: defaultTemporalSuffix,
		},
		History: History{
			Enabled: true,
			Path:    filepath.Join(defaultDataDir(), historyFileName),
		},
		Batch: Batch{
			Workers: defaultBatchWorkers,
		},
	}
}
