package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tscproj/internal/config"
	"tscproj/internal/journal"
	"tscproj/internal/logging"
)

type commandContext struct {
	configFlag *string
	verbose    *bool
	runID      uuid.UUID

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	runLog     string

	journalOnce sync.Once
	journal     *journal.Journal
	journalErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
		runID:      uuid.New(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	if cfg == nil {
		def := config.Default()
		return &def
	}
	return cfg
}

// loggerValue returns the invocation logger, tagged with the run ID. Logger
// construction failures fall back to stderr so commands still run.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		logger, runLog, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: cfg.Logging.Level})
			logging.WarnWithContext(logger, "log file unavailable", "log_setup_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check logging.dir permissions"),
				logging.String(logging.FieldImpact, "logs for this run go to stderr only"),
			)
		}
		c.runLog = runLog
		c.logger = logger.With(logging.String(logging.FieldRunID, c.runID.String()))
		if cfg.Logging.Dir != "" {
			logging.PruneRunLogs(c.logger, cfg.Logging.Dir, cfg.Logging.RetentionDays, runLog)
		}
	})
	return c.logger
}

// baseContext returns the command context annotated with the run ID.
func (c *commandContext) baseContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithRunID(ctx, c.runID.String())
}

// journalValue opens the run journal on first use. It returns nil when
// history is disabled.
func (c *commandContext) journalValue(ctx context.Context) (*journal.Journal, error) {
	cfg := c.configValue()
	if !cfg.History.Enabled {
		return nil, nil
	}
	c.journalOnce.Do(func() {
		c.journal, c.journalErr = journal.Open(ctx, cfg.History.Path)
	})
	return c.journal, c.journalErr
}

func (c *commandContext) close() error {
	if c.journal == nil {
		return nil
	}
	if err := c.journal.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	c.journal = nil
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
