package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateTransform(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}

func (c *Config) validateTransform() error {
	if c.Transform.PreserveAudioDuration && len(c.Transform.AudioTypes) == 0 {
		return errors.New("transform.audio_types must list at least one clip type when transform.preserve_audio_duration is true")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.Indent < 0 || c.Output.Indent > 8 {
		return errors.New("output.indent must be between 0 and 8")
	}
	if c.Output.SpatialSuffix == c.Output.TemporalSuffix {
		return errors.New("output.spatial_suffix and output.temporal_suffix must differ")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers <= 0 {
		return errors.New("batch.workers must be positive")
	}
	if c.Batch.Workers > maxBatchWorkers {
		return fmt.Errorf("batch.workers must not exceed %d", maxBatchWorkers)
	}
	return nil
}
