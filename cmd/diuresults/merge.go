package main

import (
	"context"
	"fmt"

	"diuresults/pkg/pipeline"
	"diuresults/pkg/ui"

	"github.com/spf13/cobra"
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Combine cached semester results per student",
	Long: `Scan every semester directory under <results_dir> and write one
<combined_dir>/combined_<student>.json per student, holding the records of
all semesters in semester order.

Combined files are rewritten on every run. Unreadable semester files are
skipped with a warning.`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().String("results-dir", "", "directory of the per-semester result files")
	mergeCmd.Flags().String("combined-dir", "", "directory for the combined per-student files")
}

func runMerge(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	return a.merge(ctx)
}

// merge runs the merge stage
func (a *app) merge(ctx context.Context) error {
	src, err := a.openStore(a.cfg.Storage.ResultsDir)
	if err != nil {
		return err
	}
	dst, err := a.openStore(a.cfg.Storage.CombinedDir)
	if err != nil {
		return err
	}

	summary, err := pipeline.NewMerger(src, dst, a.log).Run(ctx)
	if err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Merged %d files (%d records) into %d student files",
		summary.FilesMerged, summary.RecordsMerged, summary.StudentsWritten))
	if summary.FilesSkipped > 0 {
		ui.PrintWarning(fmt.Sprintf("%d unreadable files skipped", summary.FilesSkipped))
	}
	if summary.WriteFailures > 0 {
		ui.PrintWarning(fmt.Sprintf("%d combined files could not be written", summary.WriteFailures))
	}
	return nil
}
