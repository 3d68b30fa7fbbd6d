package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"filesorter-ai/internal/storage"
)

func newFilesCommand(cc *commandContext) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "files <dir>",
		Short: "List stored labels for a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			records, err := a.Files.ListByDir(cmd.Context(), dir, recursive)
			if err != nil {
				return err
			}
			if cc.jsonOutput {
				return writeJSON(cmd, recordRows(records))
			}
			printRecords(cmd, records)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include subdirectories")
	return cmd
}

func newCleanupCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup [dir]",
		Short: "Remove records that have neither a label nor a suggested name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			dir := ""
			if len(args) == 1 {
				if dir, err = filepath.Abs(args[0]); err != nil {
					return err
				}
			}

			removed, err := a.Sweeper.Sweep(cmd.Context(), dir)
			if err != nil {
				return err
			}
			if cc.jsonOutput {
				return writeJSON(cmd, recordRows(removed))
			}
			printRecords(cmd, removed)
			fmt.Fprintf(cmd.ErrOrStderr(), "removed %d records\n", len(removed))
			return nil
		},
	}
}

type recordRow struct {
	Path          string `json:"path"`
	Type          string `json:"type"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory"`
	TaxonomyID    int64  `json:"taxonomy_id"`
	SuggestedName string `json:"suggested_name,omitempty"`
}

func recordRows(records []storage.FileRecord) []recordRow {
	out := make([]recordRow, 0, len(records))
	for _, rec := range records {
		kind := "file"
		if rec.FileType == storage.FileTypeDirectory {
			kind = "dir"
		}
		out = append(out, recordRow{
			Path:          filepath.Join(rec.DirPath, rec.FileName),
			Type:          kind,
			Category:      rec.Category,
			Subcategory:   rec.Subcategory,
			TaxonomyID:    rec.TaxonomyID,
			SuggestedName: rec.SuggestedName,
		})
	}
	return out
}

func printRecords(cmd *cobra.Command, records []storage.FileRecord) {
	rows := make([][]string, 0, len(records))
	for _, r := range recordRows(records) {
		rows = append(rows, []string{r.Path, r.Type, r.Category, r.Subcategory, strconv.FormatInt(r.TaxonomyID, 10)})
	}
	printTable(cmd,
		[]string{"Path", "Type", "Category", "Subcategory", "Taxonomy ID"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight})
}
