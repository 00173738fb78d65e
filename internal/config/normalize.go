package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeLogging()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTransform()
	c.normalizeOutput()
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("TSCPROJ_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultDataDir() + "/" + historyFileName
	}
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTransform() {
	types := make([]string, 0, len(c.Transform.AudioTypes))
	seen := make(map[string]struct{}, len(c.Transform.AudioTypes))
	for _, t := range c.Transform.AudioTypes {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	c.Transform.AudioTypes = types
}

func (c *Config) normalizeOutput() {
	c.Output.BackupSuffix = strings.TrimSpace(c.Output.BackupSuffix)
	if c.Output.BackupSuffix == "" {
		c.Output.BackupSuffix = defaultBackupSuffix
	}
	c.Output.SpatialSuffix = strings.TrimSpace(c.Output.SpatialSuffix)
	if c.Output.SpatialSuffix == "" {
		c.Output.SpatialSuffix = defaultSpatialSuffix
	}
	c.Output.TemporalSuffix = strings.TrimSpace(c.Output.TemporalSuffix)
	if c.Output.TemporalSuffix == "" {
		c.Output.TemporalSuffix = defaultTemporalSuffix
	}
}
