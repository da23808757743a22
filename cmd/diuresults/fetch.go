package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"diuresults/pkg/pipeline"
	"diuresults/pkg/results"
	"diuresults/pkg/ui"

	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download semester results for every configured student",
	Long: `Download the result records of every (semester, student) pair in the
configured ranges and store each non-empty answer as
<results_dir>/<semester>/<student>.json.

Pairs that already have a file are skipped without a request, so an
interrupted run can simply be started again. Network failures are retried;
rejected or malformed answers are recorded and skipped.`,
	Example: `  # Fetch with the configured ranges
  diuresults fetch

  # Fetch two semesters for a handful of students
  diuresults fetch --semester-start 241 --semester-end 242 --student-start 650 --student-end 660

  # Add students outside the numeric range
  diuresults fetch --extra-students 211-35-713,212-35-3178`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addRangeFlags(fetchCmd)
	addAPIFlags(fetchCmd)
	fetchCmd.Flags().String("results-dir", "", "directory of the per-semester result files")
}

// addRangeFlags registers the semester and student range flags
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("semester-start", "", "first semester id, e.g. 202")
	cmd.Flags().String("semester-end", "", "last semester id, e.g. 251")
	addStudentFlags(cmd)
}

// addStudentFlags registers the student range flags
func addStudentFlags(cmd *cobra.Command) {
	cmd.Flags().String("student-prefix", "", "prefix of generated student ids, e.g. 202-35-")
	cmd.Flags().Int("student-start", 0, "first student serial number")
	cmd.Flags().Int("student-end", 0, "last student serial number")
	cmd.Flags().StringSlice("extra-students", nil, "additional student ids, comma separated")
}

// addAPIFlags registers the transport and retry flags
func addAPIFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", "", "base URL of the result service")
	cmd.Flags().Duration("timeout", 0, "per-request timeout")
	cmd.Flags().Int("rate-limit", 0, "maximum requests per rate limit window (0 disables pacing)")
	cmd.Flags().Int("max-attempts", 0, "attempts per request, counting the first")
	cmd.Flags().Duration("retry-delay", 0, "pause between attempts")
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	_, err = a.fetch(ctx)
	return err
}

// fetch runs the result fetch stage and reports its outcome
func (a *app) fetch(ctx context.Context) (*pipeline.Summary, error) {
	st, err := a.openStore(a.cfg.Storage.ResultsDir)
	if err != nil {
		return nil, err
	}

	semesters := a.cfg.SemesterIDs()
	students := a.cfg.StudentIDs()
	ui.PrintInfo("Semesters", fmt.Sprintf("%d (%s..%s)", len(semesters), a.cfg.Semesters.Start, a.cfg.Semesters.End))
	ui.PrintInfo("Students", fmt.Sprintf("%d", len(students)))

	client := results.NewClient(a.cfg.API, a.log)
	fetcher := pipeline.NewFetcher(client, st, a.retryConfig(), a.log)
	fetcher.SetProgress(ui.NewProgress("fetch"))

	summary, runErr := fetcher.Run(ctx, semesters, students)
	a.report(summary)
	return summary, runErr
}

// report prints the failed keys of a fetch-like summary and persists it
// when a reports directory is configured
func (a *app) report(summary *pipeline.Summary) {
	if summary == nil {
		return
	}

	for _, r := range summary.Failed() {
		ui.PrintWarning(fmt.Sprintf("%s failed (%s)", r.Label(), r.Reason), r.Error)
	}
	if summary.Interrupted {
		ui.PrintWarning("Run interrupted, start it again to resume")
	}
	ui.PrintInfo("Run", fmt.Sprintf("%s in %s", summary.RunID, summary.Duration.Round(time.Millisecond)))

	if a.cfg.Storage.ReportsDir == "" {
		return
	}
	st, err := a.openStore(a.cfg.Storage.ReportsDir)
	if err != nil {
		a.log.WithError(err).Warn("failed to open reports directory")
		return
	}
	key, err := summary.SaveReport(st)
	if err != nil {
		a.log.WithError(err).Warn("failed to save run report")
		return
	}
	ui.PrintInfo("Report", filepath.Join(st.Root(), key))
}
