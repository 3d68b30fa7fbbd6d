package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConsistencyCommand(cc *commandContext) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "consistency <dir>",
		Short: "Harmonize the stored labels of a directory with the taxonomy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}

			items, report, err := a.Pipeline.Harmonize(cmd.Context(), args[0], recursive, progressPrinter(cmd))
			if err != nil {
				return err
			}

			if cc.jsonOutput {
				return writeJSON(cmd, map[string]any{"items": items, "report": report})
			}
			printCategorized(cmd, items, nil)
			fmt.Fprintf(cmd.ErrOrStderr(), "chunks %d, failed chunks %d, changed %d\n",
				report.Chunks, report.FailedChunks, report.Changed)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include records from subdirectories")
	return cmd
}
