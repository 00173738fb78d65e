package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tscproj/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var format string
	var pruneDays int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scaling runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Run history is disabled (set history.enabled = true)")
				return nil
			}
			base := ctx.baseContext(cmd)
			j, err := ctx.journalValue(base)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}

			if pruneDays > 0 {
				removed, err := j.Prune(base, time.Now().AddDate(0, 0, -pruneDays))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderStatusLine("Pruned", statusInfo, fmt.Sprintf("%d runs older than %d days", removed, pruneDays), shouldColorize(out)))
			}

			entries, err := j.Recent(base, limit)
			if err != nil {
				return err
			}
			if done, err := writeStructured(cmd, f, entries); done {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Kind", "Factor", "Status", "Warnings", "Input", "Output"},
				historyRows(entries),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", journal.DefaultLimit, "Number of runs to show")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json, or yaml")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "Delete runs older than this many days before listing")
	return cmd
}

func historyRows(entries []journal.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := e.Status
		if e.ErrorKind != "" {
			status += " (" + e.ErrorKind + ")"
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Kind,
			strconv.FormatFloat(e.Factor, 'g', -1, 64),
			status,
			strconv.Itoa(e.Warnings),
			e.Input,
			e.Output,
		})
	}
	return rows
}
