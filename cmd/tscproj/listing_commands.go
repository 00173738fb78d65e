package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tscproj/internal/summary"
)

func newTracksCommand(ctx *commandContext) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tracks <project>",
		Short: "List timeline tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			_, doc, err := loadProject(args[0])
			if err != nil {
				return err
			}
			rows := summary.Tracks(doc)
			if done, err := writeStructured(cmd, f, rows); done {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No timeline tracks found")
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{
					strconv.Itoa(r.Index),
					strconv.Itoa(r.Scene),
					r.Type,
					strconv.Itoa(r.Clips),
					strconv.Itoa(r.Effects),
					r.Duration,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Scene", "Type", "Clips", "Effects", "Duration"},
				table,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json, or yaml")
	return cmd
}

func newMarkersCommand(ctx *commandContext) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "markers <project>",
		Short: "List timeline markers and table-of-contents entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			_, doc, err := loadProject(args[0])
			if err != nil {
				return err
			}
			rows := summary.Markers(doc)
			if done, err := writeStructured(cmd, f, rows); done {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No markers found")
				return nil
			}
			table := make([][]string, 0, len(rows))
			for i, r := range rows {
				table = append(table, []string{strconv.Itoa(i + 1), r.Name, r.Kind, r.Time})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Name", "Kind", "Time"},
				table,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json, or yaml")
	return cmd
}
