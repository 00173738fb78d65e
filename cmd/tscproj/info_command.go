package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"tscproj/internal/logging"
	"tscproj/internal/project"
	"tscproj/internal/summary"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var detailed bool
	var format string

	cmd := &cobra.Command{
		Use:     "info <project>",
		Aliases: []string{"analyze"},
		Short:   "Show project version, canvas, media, and timeline statistics",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			path, doc, err := loadProject(args[0])
			if err != nil {
				return err
			}
			s := summary.Analyze(doc, path)
			ctx.loggerValue().Debug("project analyzed",
				logging.String(logging.FieldProject, path),
				logging.Float64("complexity", s.Complexity.Score),
			)

			if done, err := writeStructured(cmd, f, s); done {
				return err
			}
			printSummary(cmd.OutOrStdout(), s, detailed, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&detailed, "detailed", "d", false, "Include track types and recommendations")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json, or yaml")
	return cmd
}

// loadProject resolves and loads a project path.
func loadProject(arg string) (string, *project.Document, error) {
	path, err := project.ResolvePath(arg)
	if err != nil {
		return arg, nil, fmt.Errorf("open project: %w", err)
	}
	doc, err := project.LoadFile(path)
	if err != nil {
		return path, nil, err
	}
	return path, doc, nil
}

func printSummary(w io.Writer, s summary.Summary, detailed, colorize bool) {
	for _, line := range renderSectionHeader(s.Title, colorize) {
		fmt.Fprintln(w, line)
	}
	rows := [][]string{
		{"Project", s.Path},
		{"Version", s.Version},
		{"Canvas", fmt.Sprintf("%gx%g @ %dfps", s.Canvas.Width, s.Canvas.Height, s.Canvas.FrameRate)},
		{"Edit rate", strconv.FormatInt(s.Canvas.EditRate, 10)},
		{"High-precision timing", yesNo(s.Features.HighPrecisionTiming)},
		{"Loudness normalization", yesNo(s.Features.LoudnessNormalization)},
		{"Media items", strconv.Itoa(s.Media.Total)},
		{"Scenes", strconv.Itoa(s.Timeline.Scenes)},
		{"Tracks", strconv.Itoa(s.Timeline.Tracks)},
		{"Clips", strconv.Itoa(s.Timeline.Clips)},
		{"Effects", strconv.Itoa(s.Timeline.Effects)},
		{"Markers", strconv.Itoa(s.Timeline.Markers)},
		{"Length", s.Timeline.End},
		{"Complexity", fmt.Sprintf("%s (score %.1f)", s.Complexity.Level, s.Complexity.Score)},
	}
	fmt.Fprintln(w, renderTable([]string{"Property", "Value"}, rows, nil))

	if len(s.Media.ByType) > 0 {
		typeRows := make([][]string, 0, len(s.Media.ByType))
		for _, tc := range s.Media.ByType {
			typeRows = append(typeRows, []string{tc.Type, strconv.Itoa(tc.Count)})
		}
		fmt.Fprintln(w, renderTable([]string{"Media Type", "Count"}, typeRows, []columnAlignment{alignLeft, alignRight}))
	}

	for _, warning := range s.Warnings {
		fmt.Fprintln(w, renderStatusLine("Load warning", statusWarn, warning, colorize))
	}

	if !detailed {
		return
	}
	if len(s.Timeline.TrackTypes) > 0 {
		trackRows := make([][]string, 0, len(s.Timeline.TrackTypes))
		for _, tc := range s.Timeline.TrackTypes {
			trackRows = append(trackRows, []string{tc.Type, strconv.Itoa(tc.Count)})
		}
		fmt.Fprintln(w, renderTable([]string{"Track Type", "Count"}, trackRows, []columnAlignment{alignLeft, alignRight}))
	}
	if len(s.Recommendations) == 0 {
		fmt.Fprintln(w, renderStatusLine("Recommendations", statusOK, "project structure looks good", colorize))
		return
	}
	for _, rec := range s.Recommendations {
		fmt.Fprintln(w, renderStatusLine("Recommendation", statusWarn, rec, colorize))
	}
}
