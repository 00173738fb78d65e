package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tscproj/internal/transform"
)

type scaleFlags struct {
	output        string
	noBackup      bool
	preserveAudio bool
	noRound       bool
}

func newXYScaleCommand(ctx *commandContext) *cobra.Command {
	var flags scaleFlags
	cmd := &cobra.Command{
		Use:   "xyscale <project> <factor>",
		Short: "Scale canvas geometry and every spatial property",
		Long: `Scale the canvas and every position, size, and shape in a project.

Opacity, volume, rotation, colors, and relative parameters are left alone.
Without --output the input file is replaced after a backup is written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScaleCommand(cmd, ctx, transform.Spatial, args, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the result here instead of replacing the input")
	cmd.Flags().BoolVar(&flags.noBackup, "no-backup", false, "Skip the backup when replacing the input")
	cmd.Flags().BoolVar(&flags.noRound, "no-round-canvas", false, "Keep fractional canvas width and height")
	return cmd
}

func newTimeScaleCommand(ctx *commandContext) *cobra.Command {
	var flags scaleFlags
	cmd := &cobra.Command{
		Use:   "timescale <project> <factor>",
		Short: "Stretch or compress every timing property",
		Long: `Scale clip positions, durations, keyframe times, and markers.

A factor of 2 makes the project twice as long. Audio clips keep their
duration unless --preserve-audio=false is given. The source catalog is never
changed because it describes the recordings, not the edit.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScaleCommand(cmd, ctx, transform.Temporal, args, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the result here instead of replacing the input")
	cmd.Flags().BoolVar(&flags.noBackup, "no-backup", false, "Skip the backup when replacing the input")
	cmd.Flags().BoolVar(&flags.preserveAudio, "preserve-audio", true, "Keep audio clip durations fixed")
	return cmd
}

func runScaleCommand(cmd *cobra.Command, ctx *commandContext, kind transform.Kind, args []string, flags scaleFlags) error {
	factor, err := parseFactor(args[1])
	if err != nil {
		return err
	}
	cfg := ctx.configValue()
	logger := ctx.loggerValue()
	base := ctx.baseContext(cmd)

	req := requestFromConfig(cfg, kind, factor)
	req.Input = args[0]
	req.Output = strings.TrimSpace(flags.output)
	if flags.noBackup {
		req.Backup = false
	}
	if flags.noRound {
		req.RoundCanvas = false
	}
	if kind == transform.Temporal && cmd.Flags().Changed("preserve-audio") {
		req.PreserveAudio = flags.preserveAudio
	}

	start := time.Now()
	out, runErr := runScale(base, cfg, logger, req)
	logOutcome(base, logger, req, out, runErr)
	ctx.recordOutcome(base, req, out, runErr, time.Since(start))
	if runErr != nil {
		return runErr
	}

	printScaleOutcome(cmd.OutOrStdout(), req, out, shouldColorize(cmd.OutOrStdout()))
	return nil
}

func parseFactor(raw string) (float64, error) {
	factor, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid scale factor %q: must be a number", raw)
	}
	return factor, nil
}

func printScaleOutcome(w io.Writer, req scaleRequest, out scaleOutcome, colorize bool) {
	verb := "Scaled project"
	if req.Kind == transform.Temporal {
		verb = "Scaled timeline"
	}
	fmt.Fprintln(w, renderStatusLine(verb, statusOK, fmt.Sprintf("%gx (%s schema)", req.Factor, out.Version.Schema), colorize))
	fmt.Fprintln(w, renderStatusLine("Spatial values", statusInfo, strconv.Itoa(out.Stats.Spatial), colorize))
	fmt.Fprintln(w, renderStatusLine("Temporal values", statusInfo, strconv.Itoa(out.Stats.Temporal), colorize))
	if req.Kind == transform.Temporal && req.PreserveAudio {
		fmt.Fprintln(w, renderStatusLine("Audio preserved", statusOK, fmt.Sprintf("%d clips", out.Stats.AudioPreserved), colorize))
	}
	if out.Backup != "" {
		fmt.Fprintln(w, renderStatusLine("Backup", statusInfo, out.Backup, colorize))
	}
	fmt.Fprintln(w, renderStatusLine("Saved", statusOK, out.Output, colorize))
	for _, line := range warningLines(out.Warnings, out.Replaced, colorize) {
		fmt.Fprintln(w, line)
	}
}
