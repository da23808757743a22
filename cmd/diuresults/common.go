package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"diuresults/pkg/config"
	"diuresults/pkg/logger"
	"diuresults/pkg/retry"
	"diuresults/pkg/store"

	"github.com/spf13/cobra"
)

var (
	stringFlags   = []string{"base-url", "semester-start", "semester-end", "student-prefix", "results-dir", "combined-dir", "summary-dir", "log-level"}
	intFlags      = []string{"max-attempts", "student-start", "student-end", "rate-limit"}
	durationFlags = []string{"timeout", "retry-delay"}
	sliceFlags    = []string{"extra-students"}
)

// app carries what every stage command needs once configuration is loaded
type app struct {
	cfg *config.Config
	log logger.Logger
}

// changedFlags collects the flags set explicitly on the command line, keyed
// the way config.MergeCommandLineFlags reads them
func changedFlags(cmd *cobra.Command) map[string]interface{} {
	fs := cmd.Flags()
	flags := make(map[string]interface{})

	for _, name := range stringFlags {
		if fs.Changed(name) {
			v, _ := fs.GetString(name)
			flags[name] = v
		}
	}
	for _, name := range intFlags {
		if fs.Changed(name) {
			v, _ := fs.GetInt(name)
			flags[name] = v
		}
	}
	for _, name := range durationFlags {
		if fs.Changed(name) {
			v, _ := fs.GetDuration(name)
			flags[name] = v
		}
	}
	for _, name := range sliceFlags {
		if fs.Changed(name) {
			v, _ := fs.GetStringSlice(name)
			flags[name] = v
		}
	}

	// Quiet runs only log errors unless a level was asked for
	if quiet && !fs.Changed("log-level") {
		flags["log-level"] = "error"
	}
	return flags
}

// setup loads configuration with the command's flags and initializes logging
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configFile, changedFlags(cmd))
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger().WithField("command", cmd.Name())
	log.DebugWithFields("configuration loaded", map[string]interface{}{
		"config_file": configFile,
		"version":     version,
	})

	return &app{cfg: cfg, log: log}, nil
}

// retryConfig builds the retry policy from the retry section
func (a *app) retryConfig() *retry.Config {
	rc := a.cfg.Retry

	var backoff retry.BackoffStrategy = &retry.ConstantBackoff{Delay: rc.Delay}
	if strings.EqualFold(rc.Strategy, "exponential") {
		backoff = &retry.ExponentialBackoff{
			BaseDelay:  rc.Delay,
			MaxDelay:   rc.MaxDelay,
			Multiplier: rc.Multiplier,
		}
	}

	return &retry.Config{
		MaxAttempts: rc.MaxAttempts,
		Backoff:     backoff,
		RetryIf:     retry.DefaultRetryIf,
		Logger:      a.log,
	}
}

// openStore opens a file store rooted at dir. An unusable root is fatal.
func (a *app) openStore(dir string) (*store.FileStore, error) {
	st, err := store.NewFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot open store %q: %w", dir, err)
	}
	return st, nil
}

// openFile opens a store over the directory of path and returns the key of
// the file inside it
func (a *app) openFile(path string) (*store.FileStore, string, error) {
	st, err := a.openStore(filepath.Dir(path))
	if err != nil {
		return nil, "", err
	}
	return st, filepath.Base(path), nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
