package main

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/spf13/cobra"

	"filesorter-ai/internal/pipeline"
	"filesorter-ai/internal/scanner"
	"filesorter-ai/internal/service"
)

func newCategorizeCommand(cc *commandContext) *cobra.Command {
	var (
		files        bool
		dirs         bool
		hidden       bool
		recursive    bool
		consistency  bool
		abortOnError bool
		cleanup      bool
	)

	cmd := &cobra.Command{
		Use:   "categorize <dir>",
		Short: "Categorize the entries of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !files && !dirs {
				return fmt.Errorf("nothing to categorize: enable --files or --dirs")
			}
			a, err := cc.ensureApp(cmd.Context())
			if err != nil {
				return err
			}

			opts := scanner.DefaultOptions()
			opts.Files = files
			opts.Directories = dirs
			opts.Hidden = hidden
			opts.Recursive = recursive

			req := pipeline.Request{
				Dir:         args[0],
				Options:     opts,
				Consistency: consistency,
				Cleanup:     cleanup,
				Progress:    progressPrinter(cmd),
			}
			if abortOnError {
				req.Policy = service.AbortOnError
			}

			// An interrupt lets the current item finish; results so far stay persisted.
			stop := &atomic.Bool{}
			req.Stop = stop
			runCtx := context.WithoutCancel(cmd.Context())
			done := make(chan struct{})
			defer close(done)
			go func() {
				select {
				case <-cmd.Context().Done():
					stop.Store(true)
				case <-done:
				}
			}()

			report, runErr := a.Pipeline.Run(runCtx, req)
			if report == nil {
				return runErr
			}
			if runErr != nil && report.Stats.Scanned == 0 {
				return runErr
			}

			if cc.jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printCategorized(cmd, report.Items, report.New)
				printSessionSummary(cmd, report)
			}
			if runErr != nil {
				return runErr
			}
			if stop.Load() {
				return context.Canceled
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&files, "files", true, "Categorize regular files")
	cmd.Flags().BoolVar(&dirs, "dirs", false, "Categorize directories")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Include hidden entries")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().BoolVar(&consistency, "consistency", false, "Run the consistency pass after categorizing")
	cmd.Flags().BoolVar(&abortOnError, "abort-on-error", false, "Stop at the first failed entry")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Remove empty records under the directory first")

	return cmd
}

func progressPrinter(cmd *cobra.Command) service.ProgressFunc {
	errOut := cmd.ErrOrStderr()
	return func(line string) {
		fmt.Fprintln(errOut, line)
	}
}

func printCategorized(cmd *cobra.Command, items, newly []service.CategorizedItem) {
	isNew := make(map[string]struct{}, len(newly))
	for _, item := range newly {
		isNew[item.ID()] = struct{}{}
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		source := "cached"
		if _, ok := isNew[item.ID()]; ok {
			source = "new"
		}
		kind := "file"
		if item.IsDir {
			kind = "dir"
		}
		rows = append(rows, []string{
			item.FullPath(),
			kind,
			item.Category,
			item.Subcategory,
			strconv.FormatInt(item.TaxonomyID, 10),
			source,
		})
	}
	printTable(cmd,
		[]string{"Path", "Type", "Category", "Subcategory", "Taxonomy ID", "Source"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
}

func printSessionSummary(cmd *cobra.Command, report *pipeline.Report) {
	errOut := cmd.ErrOrStderr()
	for _, f := range report.Failures {
		fmt.Fprintf(errOut, "failed: %s (%s)\n", f.Item.FullPath(), f.Error)
	}
	for _, h := range report.Hints {
		fmt.Fprintf(errOut, "needs recategorization: %s (%s)\n", h.Item.FullPath(), h.Reason)
	}
	s := report.Stats
	fmt.Fprintf(errOut, "scanned %d, cached %d, cache hits %d, model calls %d, timeouts %d, failures %d, hints %d, cleaned %d, consistency changes %d\n",
		s.Scanned, s.Cached, s.CacheHits, s.ModelCalls, s.Timeouts, s.Failures, s.Hints, s.Cleaned, s.ConsistencyChanges)
}
