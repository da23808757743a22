package main

import (
	"diuresults/pkg/ui"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, merge and compute CGPAs in one go",
	Long: `Run the fetch, merge and cgpa stages in sequence with the same
configuration. Key-level failures during fetch do not stop the later stages;
an interruption does.`,
	Args: cobra.NoArgs,
	RunE: runAll,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRangeFlags(runCmd)
	addAPIFlags(runCmd)
	runCmd.Flags().String("results-dir", "", "directory of the per-semester result files")
	runCmd.Flags().String("combined-dir", "", "directory for the combined per-student files")
	runCmd.Flags().String("summary-dir", "", "directory for student_cgpas.json")
	runCmd.Flags().BoolVarP(&listCGPAs, "list", "l", false, "print every computed CGPA")
}

func runAll(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	ui.PrintHighlight("[1/3] fetch")
	if _, err := a.fetch(ctx); err != nil {
		return err
	}
	ui.PrintHighlight("[2/3] merge")
	if err := a.merge(ctx); err != nil {
		return err
	}
	ui.PrintHighlight("[3/3] cgpa")
	return a.cgpa(ctx)
}
