package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tscproj/internal/logging"
	"tscproj/internal/numsafe"
	"tscproj/internal/project"
)

// errValidationFailed is returned after problems have been printed.
var errValidationFailed = errors.New("project validation failed")

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project>",
		Short: "Check that a project loads and has the expected structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			path, doc, err := loadProject(args[0])
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Load", statusError, err.Error(), colorize))
				logging.ErrorWithContext(ctx.loggerValue(), "project failed to load", "validate_failed",
					logging.String(logging.FieldProject, path),
					logging.Error(err),
				)
				return err
			}

			fmt.Fprintln(out, renderStatusLine("Load", statusOK, path, colorize))
			fmt.Fprintln(out, renderStatusLine("Version", statusOK, doc.Version.String()+" is supported", colorize))
			for _, w := range doc.Warnings {
				fmt.Fprintln(out, renderStatusLine("Version", statusWarn, w.String(), colorize))
			}

			if n := numsafe.Count(doc.Root); n > 0 {
				fmt.Fprintln(out, renderStatusLine("Numbers", statusWarn,
					fmt.Sprintf("%d non-finite values will be written as %s on save", n, numsafe.Sentinel), colorize))
			}

			problems := project.ValidateStructure(doc.Root)
			if len(problems) == 0 {
				fmt.Fprintln(out, renderStatusLine("Structure", statusOK, "timeline and media catalog present", colorize))
				return nil
			}
			for _, p := range problems {
				fmt.Fprintln(out, renderStatusLine("Structure", statusError, p, colorize))
			}
			return fmt.Errorf("%w: %d problems", errValidationFailed, len(problems))
		},
	}
}
