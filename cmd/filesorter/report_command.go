package main

import (
	"os"

	"github.com/spf13/cobra"

	"filesorter-ai/internal/report"
)

func newReportCommand(cc *commandContext) *cobra.Command {
	var (
		asHTML bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the taxonomy as Markdown or HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			store := a.Resolver.Store()

			markdown, fragment, err := report.NewRenderer().Render(store.Entries(), store.Aliases())
			if err != nil {
				return err
			}
			content := []byte(markdown)
			if asHTML {
				content = report.Page("Taxonomy report", fragment)
			}

			if output != "" {
				return os.WriteFile(output, content, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Render a standalone HTML page")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file")
	return cmd
}
