package main

import (
	"fmt"
	"os"
	"path/filepath"

	"diuresults/pkg/config"
	"diuresults/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration profiles",
	Long: `Create, inspect and validate configuration files.

Settings are resolved in this order, later sources winning:
  1. Default values
  2. Configuration file (--config, or diuresults.yaml in the usual places)
  3. .env files
  4. Environment variables (DIURESULTS_*)
  5. Command line flags

Keep one file per cohort or semester range and pick it with --config.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an annotated example configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a configuration file for errors",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
}

const exampleConfig = `# diuresults configuration

# Result service
api:
  # Base URL of the service
  base_url: "http://peoplepulse.diu.edu.bd:8189"

  # Endpoint paths below base_url
  results_path: "/result"
  student_info_path: "/result/studentInfo"

  # Per-request timeout
  timeout: 30s

  # User-Agent header sent with every request
  user_agent: "diuresults/1.0"

  # Optional request pacing; requests: 0 disables it
  rate_limit:
    requests: 0
    window: 1m

# Retry policy for network failures
# Rejected (non-200) and malformed answers are never retried
retry:
  # Attempts per request, counting the first
  max_attempts: 3

  # Pause between attempts
  delay: 3s

  # constant or exponential
  strategy: "constant"

  # Used by the exponential strategy only
  multiplier: 2.0
  max_delay: 30s

# Semester ids are three digits: two year digits and term 1, 2 or 3
semesters:
  start: "202"
  end: "251"

# Student ids are <prefix><serial> for start..end, plus the extra list
students:
  prefix: "202-35-"
  start: 652
  end: 652
  # extra:
  #   - "211-35-713"

# Cache layout
storage:
  # <results_dir>/<semester>/<student>.json
  results_dir: "results"

  # <combined_dir>/combined_<student>.json
  combined_dir: "combined_results"

  # <summary_dir>/student_cgpas.json
  summary_dir: "students-info"

  # Raw student information and the assembled array
  student_info_dir: "students-info/raw"
  student_info_file: "students-info/students-info.json"

  # Written by 'diuresults ids --save'
  student_list_file: "student_ids.json"

  # Run reports; leave empty to disable
  reports_dir: "reports"

# Logging
logging:
  # debug, info, warn, error
  level: "info"

  # console or json
  format: "console"

  # Optional log file, written in addition to stdout
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "diuresults.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + path)
	ui.Println("\nNext steps:")
	ui.Println("1. Edit the semester and student ranges")
	ui.Println("2. Run 'diuresults config validate --config " + path + "'")
	ui.Println("3. Start with 'diuresults run --config " + path + "'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	ui.Println(string(data))
	if configFile != "" {
		ui.PrintInfo("Configuration file", configFile)
	} else {
		ui.PrintInfo("Configuration file", "(searched default locations)")
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	var warnings []string
	semesters := cfg.SemesterIDs()
	students := cfg.StudentIDs()
	if len(students) == 0 {
		warnings = append(warnings, "no student ids are configured")
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			warnings = append(warnings, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	for _, w := range warnings {
		ui.PrintWarning("Warning", w)
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Semesters", fmt.Sprintf("%d (%s..%s)", len(semesters), cfg.Semesters.Start, cfg.Semesters.End))
	ui.PrintInfo("Students", fmt.Sprintf("%d", len(students)))
	ui.PrintInfo("Pairs per fetch", fmt.Sprintf("%d", len(semesters)*len(students)))
	ui.PrintInfo("Retry", fmt.Sprintf("%d attempts, %s %s", cfg.Retry.MaxAttempts, cfg.Retry.Strategy, cfg.Retry.Delay))
	ui.PrintInfo("Results directory", cfg.Storage.ResultsDir)
	return nil
}
