package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tscproj/internal/failure"
	"tscproj/internal/fileutil"
	"tscproj/internal/logging"
	"tscproj/internal/project"
	"tscproj/internal/transform"
)

const (
	batchXYScale   = "xyscale"
	batchTimeScale = "timescale"
	batchInfo      = "info"
	batchValidate  = "validate"
)

// errBatchFailed is returned when at least one file failed.
var errBatchFailed = errors.New("batch finished with errors")

type batchResult struct {
	Path   string
	Output string
	Detail string
	Err    error
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var failFast bool

	cmd := &cobra.Command{
		Use:   "batch <pattern> <xyscale|timescale|info|validate> [factor]",
		Short: "Apply an operation to every project matching a pattern",
		Long: `Apply an operation to every project matching a glob pattern.

Patterns use filepath.Match syntax; a "**" path segment matches any number of
directories. Scaled projects are written next to their inputs as
<name>.scaled.tscproj or <name>.timescaled.tscproj, so inputs are never
modified.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := strings.ToLower(strings.TrimSpace(args[1]))
			var factor float64
			switch op {
			case batchXYScale, batchTimeScale:
				if len(args) < 3 {
					return fmt.Errorf("%s requires a scale factor", op)
				}
				f, err := parseFactor(args[2])
				if err != nil {
					return err
				}
				factor = f
			case batchInfo, batchValidate:
			default:
				return fmt.Errorf("unknown batch operation %q (use xyscale, timescale, info, or validate)", args[1])
			}

			files, err := expandPattern(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if len(files) == 0 {
				fmt.Fprintln(out, renderStatusLine("Batch", statusWarn, "no projects match "+args[0], colorize))
				return nil
			}

			cfg := ctx.configValue()
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}
			if workers <= 0 {
				return errors.New("workers must be positive")
			}

			for _, line := range renderSectionHeader("Batch "+op, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Pattern", statusInfo, args[0], colorize))
			fmt.Fprintln(out, renderStatusLine("Projects", statusInfo, fmt.Sprint(len(files)), colorize))

			results := runBatch(ctx.baseContext(cmd), ctx, files, op, factor, workers, failFast)
			return printBatchResults(out, results, colorize)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Projects processed in parallel (default from config)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop scheduling new projects after the first failure")
	return cmd
}

// runBatch processes files with at most workers in flight. Results keep the
// order of files.
func runBatch(base context.Context, ctx *commandContext, files []string, op string, factor float64, workers int, failFast bool) []batchResult {
	logger := logging.NewComponentLogger(ctx.loggerValue(), "batch")
	results := make([]batchResult, len(files))
	for i, f := range files {
		results[i] = batchResult{Path: f, Err: context.Canceled}
	}

	group, gctx := errgroup.WithContext(base)
	group.SetLimit(workers)

	for i, file := range files {
		if failFast && gctx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := gctx.Err(); err != nil && failFast {
				return nil
			}
			res := processBatchItem(gctx, ctx, file, op, factor)
			results[i] = res
			if res.Err != nil {
				logger.Debug("batch item failed",
					logging.String(logging.FieldProject, file),
					logging.String(logging.FieldEventType, failure.Kind(res.Err)),
				)
				if failFast {
					return res.Err
				}
			}
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func processBatchItem(ctx context.Context, cc *commandContext, file, op string, factor float64) batchResult {
	res := batchResult{Path: file}
	switch op {
	case batchXYScale, batchTimeScale:
		cfg := cc.configValue()
		kind, suffix := transform.Spatial, cfg.Output.SpatialSuffix
		if op == batchTimeScale {
			kind, suffix = transform.Temporal, cfg.Output.TemporalSuffix
		}
		req := requestFromConfig(cfg, kind, factor)
		req.Input = file
		req.Output = fileutil.OutputName(file, suffix)
		req.Backup = false

		start := time.Now()
		out, err := runScale(ctx, cfg, cc.loggerValue(), req)
		logOutcome(ctx, cc.loggerValue(), req, out, err)
		cc.recordOutcome(ctx, req, out, err, time.Since(start))
		res.Output = out.Output
		res.Err = err
		if err == nil {
			res.Detail = fmt.Sprintf("%d spatial, %d temporal", out.Stats.Spatial, out.Stats.Temporal)
			if n := len(out.Warnings); n > 0 {
				res.Detail += fmt.Sprintf(", %d warnings", n)
			}
		}
	case batchInfo:
		_, doc, err := loadProject(file)
		res.Err = err
		if err == nil {
			res.Detail = doc.Version.String()
		}
	case batchValidate:
		_, doc, err := loadProject(file)
		if err != nil {
			res.Err = err
			break
		}
		if problems := project.ValidateStructure(doc.Root); len(problems) > 0 {
			res.Err = fmt.Errorf("%w: %s", errValidationFailed, strings.Join(problems, "; "))
			break
		}
		res.Detail = "valid " + doc.Version.String()
	}
	return res
}

func printBatchResults(w io.Writer, results []batchResult, colorize bool) error {
	rows := make([][]string, 0, len(results))
	failed := 0
	for _, r := range results {
		status := failure.StatusSucceeded
		detail := r.Detail
		if r.Err != nil {
			failed++
			status = failure.Status(r.Err)
			detail = r.Err.Error()
		}
		rows = append(rows, []string{r.Path, status, detail})
	}
	fmt.Fprintln(w, renderTableSpec(tableSpec{
		headers: []string{"Project", "Status", "Detail"},
		rows:    rows,
		footer:  []string{fmt.Sprintf("%d projects", len(results)), fmt.Sprintf("%d failed", failed), ""},
	}))
	fmt.Fprintln(w, renderStatusLine("Succeeded", statusOK, fmt.Sprint(len(results)-failed), colorize))
	if failed > 0 {
		fmt.Fprintln(w, renderStatusLine("Failed", statusError, fmt.Sprint(failed), colorize))
		return fmt.Errorf("%w: %d of %d projects failed", errBatchFailed, failed, len(results))
	}
	return nil
}

// expandPattern resolves a glob. A "**" segment matches zero or more
// directories; everything else follows filepath.Match. Directories ending in
// .cmproj are resolved to their project file. Backups are excluded by
// extension.
func expandPattern(pattern string) ([]string, error) {
	var matches []string
	if strings.Contains(pattern, "**") {
		root, rest, _ := strings.Cut(filepath.ToSlash(pattern), "**")
		root = strings.TrimSuffix(root, "/")
		if root == "" {
			root = "."
		}
		rest = strings.TrimPrefix(rest, "/")
		if rest == "" {
			rest = "*" + fileutil.ProjectExt
		}
		err := filepath.WalkDir(filepath.FromSlash(root), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(filepath.FromSlash(root), path)
			if relErr != nil {
				return relErr
			}
			ok, matchErr := matchTail(filepath.ToSlash(rel), rest)
			if matchErr != nil {
				return matchErr
			}
			if ok {
				matches = append(matches, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	} else {
		found, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		matches = found
	}

	var files []string
	seen := map[string]bool{}
	for _, m := range matches {
		resolved, err := project.ResolvePath(m)
		if err != nil {
			continue
		}
		info, err := os.Stat(resolved)
		if err != nil || info.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(resolved), fileutil.ProjectExt) {
			continue
		}
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		files = append(files, resolved)
	}
	sort.Strings(files)
	return files, nil
}

// matchTail reports whether rel, or any suffix of it starting at a path
// segment, matches pattern.
func matchTail(rel, pattern string) (bool, error) {
	segments := strings.Split(rel, "/")
	for i := range segments {
		ok, err := filepath.Match(pattern, strings.Join(segments[i:], "/"))
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
