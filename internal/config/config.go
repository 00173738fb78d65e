package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Transform contains defaults applied to every scaling run.
type Transform struct {
	// PreserveAudioDuration keeps audio clip durations fixed during temporal
	// scaling so recorded speech is not stretched.
	PreserveAudioDuration bool `toml:"preserve_audio_duration"`
	// AudioTypes lists the clip _type values treated as audio.
	AudioTypes []string `toml:"audio_types"`
	// RoundCanvas rounds the project canvas to whole pixels after spatial scaling.
	RoundCanvas bool `toml:"round_canvas"`
}

// Output contains configuration for writing transformed projects.
type Output struct {
	Indent         int    `toml:"indent"`
	Backup         bool   `toml:"backup"`
	BackupSuffix   string `toml:"backup_suffix"`
	SpatialSuffix  string `toml:"spatial_suffix"`
	TemporalSuffix string `toml:"temporal_suffix"`
}

// History contains configuration for the run journal.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Batch contains configuration for multi-project runs.
type Batch struct {
	Workers int `toml:"workers"`
}

// Config encapsulates all configuration values for tscproj.
//
// Configuration sections:
//   - Logging: log format, level, file directory, and retention
//   - Transform: audio preservation and canvas rounding defaults
//   - Output: indentation, backups, and batch output naming
//   - History: SQLite run journal
//   - Batch: worker count for batch runs
type Config struct {
	Logging   Logging   `toml:"logging"`
	Transform Transform `toml:"transform"`
	Output    Output    `toml:"output"`
	History   History   `toml:"history"`
	Batch     Batch     `toml:"batch"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// IndentString returns the per-level indentation used when saving projects.
func (c *Config) IndentString() string {
	return strings.Repeat(" ", c.Output.Indent)
}

// AudioTypeSet returns the configured audio clip types as a lookup set.
func (c *Config) AudioTypeSet() map[string]bool {
	set := make(map[string]bool, len(c.Transform.AudioTypes))
	for _, t := range c.Transform.AudioTypes {
		set[t] = true
	}
	return set
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "tscproj")
	}
	return "~/.local/share/tscproj"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
