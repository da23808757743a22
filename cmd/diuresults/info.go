package main

import (
	"context"
	"fmt"

	"diuresults/pkg/pipeline"
	"diuresults/pkg/results"
	"diuresults/pkg/ui"

	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Download student information records",
	Long: `Download the information record of every configured student into
<student_info_dir>/<student>.json, then assemble all cached records into the
single array <student_info_file>.

An object answer becomes one element of that array. A list answer is
flattened, so each of its elements becomes an element of the array. Empty
answers ({}, [] or null) are not stored. Students that already have a file
are not requested again.`,
	Example: `  # Fetch information for the configured students
  diuresults info

  # Fetch a single student
  diuresults info --student-start 1 --student-end 0 --extra-students 202-35-652`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	addStudentFlags(infoCmd)
	addAPIFlags(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	return a.info(ctx)
}

// info runs the student information stage
func (a *app) info(ctx context.Context) error {
	raw, err := a.openStore(a.cfg.Storage.StudentInfoDir)
	if err != nil {
		return err
	}
	out, key, err := a.openFile(a.cfg.Storage.StudentInfoFile)
	if err != nil {
		return err
	}

	students := a.cfg.StudentIDs()
	ui.PrintInfo("Students", fmt.Sprintf("%d", len(students)))

	client := results.NewClient(a.cfg.API, a.log)
	fetcher := pipeline.NewInfoFetcher(client, raw, a.retryConfig(), a.log)
	fetcher.SetOutput(out, key)
	fetcher.SetProgress(ui.NewProgress("info"))

	summary, runErr := fetcher.Run(ctx, students)
	a.report(summary)
	if runErr != nil {
		return runErr
	}

	if summary.Output != "" {
		ui.PrintSuccess(fmt.Sprintf("Wrote %d student records to %s", summary.OutputRecords, a.cfg.Storage.StudentInfoFile))
	} else {
		ui.PrintWarning("No student information available, nothing written")
	}
	return nil
}
