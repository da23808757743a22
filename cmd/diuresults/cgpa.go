package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"diuresults/pkg/pipeline"
	"diuresults/pkg/ui"

	"github.com/spf13/cobra"
)

var listCGPAs bool

// cgpaCmd represents the cgpa command
var cgpaCmd = &cobra.Command{
	Use:   "cgpa",
	Short: "Compute every student's CGPA from the combined results",
	Long: `Read every combined_<student>.json under <combined_dir>, keep the best
attempt of each course and write the credit-weighted average of each student
to <summary_dir>/student_cgpas.json, rounded to three decimals.`,
	Example: `  # Compute and print every CGPA
  diuresults cgpa --list`,
	Args: cobra.NoArgs,
	RunE: runCGPA,
}

func init() {
	rootCmd.AddCommand(cgpaCmd)
	cgpaCmd.Flags().String("combined-dir", "", "directory of the combined per-student files")
	cgpaCmd.Flags().String("summary-dir", "", "directory for student_cgpas.json")
	cgpaCmd.Flags().BoolVarP(&listCGPAs, "list", "l", false, "print every computed CGPA")
}

func runCGPA(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	return a.cgpa(ctx)
}

// cgpa runs the aggregation stage
func (a *app) cgpa(ctx context.Context) error {
	src, err := a.openStore(a.cfg.Storage.CombinedDir)
	if err != nil {
		return err
	}
	dst, err := a.openStore(a.cfg.Storage.SummaryDir)
	if err != nil {
		return err
	}

	summary, err := pipeline.NewAggregator(src, dst, a.log).Run(ctx)
	if err != nil {
		return err
	}

	if listCGPAs {
		for _, c := range summary.CGPAs {
			ui.PrintInfo(c.StudentID, strconv.FormatFloat(c.CGPA, 'f', 3, 64))
		}
	}
	if summary.StudentsSkipped > 0 {
		ui.PrintWarning(fmt.Sprintf("%d combined files skipped", summary.StudentsSkipped))
	}
	ui.PrintSuccess(fmt.Sprintf("Wrote %d CGPAs to %s", len(summary.CGPAs), filepath.Join(dst.Root(), summary.Output)))
	return nil
}
