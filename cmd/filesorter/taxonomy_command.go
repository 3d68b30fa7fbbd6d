package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"filesorter-ai/internal/taxonomy"
)

type taxonomyRow struct {
	ID          int64    `json:"id"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Frequency   int      `json:"frequency"`
	Aliases     []string `json:"aliases"`
}

func newTaxonomyCommand(cc *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Inspect and query the category taxonomy",
	}
	cmd.AddCommand(newTaxonomyListCommand(cc))
	cmd.AddCommand(newTaxonomyResolveCommand(cc))
	return cmd
}

func newTaxonomyListCommand(cc *commandContext) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List canonical entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}
			store := a.Resolver.Store()

			// --top orders by frequency like the prompt snapshot; otherwise by id.
			entries := store.Entries()
			if top > 0 {
				entries = store.Snapshot(top)
			}

			aliases := make(map[int64][]string)
			for k, id := range store.Aliases() {
				aliases[id] = append(aliases[id], k.Category+" : "+k.Subcategory)
			}

			out := make([]taxonomyRow, 0, len(entries))
			for _, e := range entries {
				list := aliases[e.ID]
				sort.Strings(list)
				if list == nil {
					list = []string{}
				}
				out = append(out, taxonomyRow{
					ID:          e.ID,
					Category:    e.CanonicalCategory,
					Subcategory: e.CanonicalSubcategory,
					Frequency:   e.Frequency,
					Aliases:     list,
				})
			}

			if cc.jsonOutput {
				return writeJSON(cmd, out)
			}
			rows := make([][]string, 0, len(out))
			for _, r := range out {
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					r.Category,
					r.Subcategory,
					strconv.Itoa(r.Frequency),
					strings.Join(r.Aliases, ", "),
				})
			}
			printTable(cmd,
				[]string{"ID", "Category", "Subcategory", "Files", "Aliases"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft})
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "Show only the N most used entries")
	return cmd
}

func newTaxonomyResolveCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <category> [subcategory]",
		Short: "Resolve a label pair to its canonical entry, creating one when nothing matches",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}

			sub := ""
			if len(args) == 2 {
				sub = args[1]
			}
			resolved := a.Resolver.Resolve(cmd.Context(), args[0], sub)
			if resolved.TaxonomyID == taxonomy.Unavailable {
				return fmt.Errorf("taxonomy store unavailable")
			}

			if cc.jsonOutput {
				return writeJSON(cmd, resolved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s : %s\n", resolved.TaxonomyID, resolved.Category, resolved.Subcategory)
			return nil
		},
	}
}
