package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tscproj/internal/config"
	"tscproj/internal/failure"
	"tscproj/internal/fileutil"
	"tscproj/internal/journal"
	"tscproj/internal/logging"
	"tscproj/internal/project"
	"tscproj/internal/transform"
)

// scaleRequest describes one load, transform, save cycle.
type scaleRequest struct {
	Input         string
	Output        string
	Kind          transform.Kind
	Factor        float64
	PreserveAudio bool
	Backup        bool
	RoundCanvas   bool
}

// scaleOutcome reports what a scale run produced.
type scaleOutcome struct {
	Input    string
	Output   string
	Backup   string
	Version  project.VersionInfo
	Stats    transform.Stats
	Warnings []project.Warning
	Replaced int
}

// requestFromConfig fills the config-driven parts of a request.
func requestFromConfig(cfg *config.Config, kind transform.Kind, factor float64) scaleRequest {
	return scaleRequest{
		Kind:          kind,
		Factor:        factor,
		PreserveAudio: cfg.Transform.PreserveAudioDuration,
		Backup:        cfg.Output.Backup,
		RoundCanvas:   cfg.Transform.RoundCanvas,
	}
}

// runScale loads, rescales, and writes one project. The input is never
// modified unless the output resolves to the same file, in which case a
// verified backup is written first when requested.
func runScale(ctx context.Context, cfg *config.Config, logger *slog.Logger, req scaleRequest) (scaleOutcome, error) {
	out := scaleOutcome{Input: req.Input}

	tr, err := transform.New(transform.Options{
		Kind:                  req.Kind,
		Factor:                req.Factor,
		PreserveAudioDuration: req.PreserveAudio,
		AudioTypes:            cfg.Transform.AudioTypes,
		InPlace:               true,
	}, logger)
	if err != nil {
		return out, err
	}

	input, err := project.ResolvePath(req.Input)
	if err != nil {
		return out, fmt.Errorf("open project: %w", err)
	}
	out.Input = input
	doc, err := project.LoadFile(input)
	if err != nil {
		return out, err
	}
	out.Version = doc.Version

	res, err := tr.Transform(doc)
	if err != nil {
		return out, fmt.Errorf("transform %s: %w", input, err)
	}
	out.Stats = res.Stats
	out.Warnings = append(append([]project.Warning(nil), doc.Warnings...), res.Warnings...)

	if req.Kind == transform.Spatial && req.RoundCanvas {
		project.RoundCanvas(res.Document)
	}

	data, report, err := project.Save(res.Document, project.SaveOptions{
		Indent:  cfg.IndentString(),
		Compact: cfg.Output.Indent == 0,
	})
	if err != nil {
		return out, err
	}
	out.Replaced = len(report.Replaced)

	output := req.Output
	if output == "" {
		output = input
	}
	out.Output = output

	if req.Backup && sameFile(input, output) {
		backup := fileutil.BackupPath(input, cfg.Output.BackupSuffix)
		if err := fileutil.CopyFileVerified(input, backup); err != nil {
			return out, fmt.Errorf("write backup %s: %w", backup, err)
		}
		out.Backup = backup
	}

	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return out, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := fileutil.WriteFileLocked(ctx, output, data, 0o644); err != nil {
		return out, fmt.Errorf("write %s: %w", output, err)
	}
	return out, nil
}

// logOutcome reports warnings and the result of a scale run.
func logOutcome(ctx context.Context, logger *slog.Logger, req scaleRequest, out scaleOutcome, err error) {
	logger = logging.WithContext(logging.WithProject(ctx, out.Input), logger)
	if err != nil {
		kind := failure.Kind(err)
		if kind == "internal" {
			kind = "scale_failed"
		}
		logging.ErrorWithContext(logger, "project scaling failed", kind,
			logging.Error(err),
			logging.String("kind", req.Kind.String()),
			logging.Float64("factor", req.Factor),
			logging.String(logging.FieldErrorHint, errorHint(err)),
		)
		return
	}
	for _, w := range out.Warnings {
		logging.WarnWithContext(logger, "value left unchanged", "transform_warning",
			logging.String("path", w.Path.String()),
			logging.String("detail", w.Message),
			logging.String(logging.FieldErrorHint, "inspect the field in the editor"),
			logging.String(logging.FieldImpact, "field kept its original value"),
		)
	}
	if out.Replaced > 0 {
		logging.WarnWithContext(logger, "non-finite numbers replaced", "non_finite_sanitized",
			logging.Int("count", out.Replaced),
			logging.String(logging.FieldErrorHint, "check for extreme factors or corrupt input"),
			logging.String(logging.FieldImpact, "affected values were written as 0.0"),
		)
	}
	logger.Info("project scaled",
		logging.String(logging.FieldEventType, "scale_completed"),
		logging.String("kind", req.Kind.String()),
		logging.Float64("factor", req.Factor),
		logging.String("schema", out.Version.Schema.String()),
		logging.String("output", out.Output),
		logging.Int("spatial", out.Stats.Spatial),
		logging.Int("temporal", out.Stats.Temporal),
		logging.Int("audio_preserved", out.Stats.AudioPreserved),
	)
}

// recordOutcome appends the run to the journal when history is enabled.
// Journal failures are logged and never fail the run.
func (c *commandContext) recordOutcome(ctx context.Context, req scaleRequest, out scaleOutcome, runErr error, elapsed time.Duration) {
	logger := c.loggerValue()
	j, err := c.journalValue(ctx)
	if err != nil {
		logging.WarnWithContext(logger, "run journal unavailable", "journal_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path or disable history"),
			logging.String(logging.FieldImpact, "this run is not recorded"),
		)
		return
	}
	if j == nil {
		return
	}
	entry := journal.Entry{
		RunID:    c.runID,
		Input:    out.Input,
		Output:   out.Output,
		Kind:     req.Kind.String(),
		Factor:   req.Factor,
		Warnings: len(out.Warnings),
		Replaced: out.Replaced,
		Status:   failure.Status(runErr),
		Duration: elapsed,
	}
	if out.Version.Schema != project.SchemaUnknown {
		entry.Schema = out.Version.Schema.String()
	}
	if runErr != nil {
		entry.ErrorKind = failure.Kind(runErr)
		entry.ErrorMessage = runErr.Error()
	}
	if _, err := j.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logger, "failed to record run", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is missing from history"),
		)
	}
}

func errorHint(err error) string {
	var (
		parseErr     *project.ParseError
		versionErr   *project.UnsupportedVersionError
		malformedErr *project.MalformedDocumentError
		factorErr    *transform.InvalidFactorError
	)
	switch {
	case errors.As(err, &parseErr):
		return "the file is not valid JSON; restore it from a backup"
	case errors.As(err, &versionErr):
		return "open and re-save the project in a supported editor version"
	case errors.As(err, &malformedErr):
		return "the project is missing required sections"
	case errors.As(err, &factorErr):
		return "use a factor greater than zero"
	case errors.Is(err, fileutil.ErrLocked):
		return "another tscproj process is writing this file"
	case errors.Is(err, os.ErrNotExist):
		return "check the project path"
	default:
		return "check logs for details"
	}
}

func sameFile(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return false
	}
	if absA == absB {
		return true
	}
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}
