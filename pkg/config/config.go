package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"diuresults/pkg/ids"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "DIURESULTS_"

// MaxStudentRange bounds how many serial numbers one student range expands to
const MaxStudentRange = 100000

// Config holds all configuration options for the result pipeline
type Config struct {
	API       APIConfig     `yaml:"api" json:"api"`
	Retry     RetryConfig   `yaml:"retry" json:"retry"`
	Semesters SemesterRange `yaml:"semesters" json:"semesters"`
	Students  StudentRange  `yaml:"students" json:"students"`
	Storage   StorageConfig `yaml:"storage" json:"storage"`
	Logging   LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig describes the remote result service
type APIConfig struct {
	BaseURL         string          `yaml:"base_url" json:"base_url"`
	ResultsPath     string          `yaml:"results_path" json:"results_path"`
	StudentInfoPath string          `yaml:"student_info_path" json:"student_info_path"`
	Timeout         time.Duration   `yaml:"timeout" json:"timeout"`
	UserAgent       string          `yaml:"user_agent" json:"user_agent"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig paces requests; zero Requests disables pacing
type RateLimitConfig struct {
	Requests int           `yaml:"requests" json:"requests"`
	Window   time.Duration `yaml:"window" json:"window"`
}

// RetryConfig controls how transport faults are retried
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	Delay       time.Duration `yaml:"delay" json:"delay"`
	// Strategy is "constant" or "exponential"
	Strategy   string        `yaml:"strategy" json:"strategy"`
	Multiplier float64       `yaml:"multiplier" json:"multiplier"`
	MaxDelay   time.Duration `yaml:"max_delay" json:"max_delay"`
}

// SemesterRange is a closed range of semester ids, e.g. 202..251
type SemesterRange struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// StudentRange is a numeric id range under a prefix plus explicit extras
type StudentRange struct {
	Prefix string   `yaml:"prefix" json:"prefix"`
	Start  int      `yaml:"start" json:"start"`
	End    int      `yaml:"end" json:"end"`
	Extra  []string `yaml:"extra" json:"extra"`
}

// StorageConfig names the directories and files each stage reads and writes
type StorageConfig struct {
	ResultsDir      string `yaml:"results_dir" json:"results_dir"`
	CombinedDir     string `yaml:"combined_dir" json:"combined_dir"`
	SummaryDir      string `yaml:"summary_dir" json:"summary_dir"`
	StudentInfoDir  string `yaml:"student_info_dir" json:"student_info_dir"`
	StudentInfoFile string `yaml:"student_info_file" json:"student_info_file"`
	StudentListFile string `yaml:"student_list_file" json:"student_list_file"`
	// ReportsDir receives one JSON report per fetch run; empty disables reports
	ReportsDir string `yaml:"reports_dir" json:"reports_dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig returns the settings the pipeline was originally run with
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:         "http://peoplepulse.diu.edu.bd:8189",
			ResultsPath:     "/result",
			StudentInfoPath: "/result/studentInfo",
			Timeout:         30 * time.Second,
			UserAgent:       "diuresults/1.0",
			RateLimit: RateLimitConfig{
				Requests: 0,
				Window:   time.Minute,
			},
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			Delay:       3 * time.Second,
			Strategy:    "constant",
			Multiplier:  2.0,
			MaxDelay:    30 * time.Second,
		},
		Semesters: SemesterRange{
			Start: "202",
			End:   "251",
		},
		Students: StudentRange{
			Prefix: "202-35-",
			Start:  652,
			End:    652,
		},
		Storage: StorageConfig{
			ResultsDir:      "results",
			CombinedDir:     "combined_results",
			SummaryDir:      "students-info",
			StudentInfoDir:  "students-info/raw",
			StudentInfoFile: "students-info/students-info.json",
			StudentListFile: "student_ids.json",
			ReportsDir:      "reports",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromEnv applies DIURESULTS_* environment overrides
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	setString("BASE_URL", &c.API.BaseURL)
	setString("USER_AGENT", &c.API.UserAgent)
	setDuration("TIMEOUT", &c.API.Timeout)
	setInt("RATE_LIMIT", &c.API.RateLimit.Requests)

	setInt("MAX_ATTEMPTS", &c.Retry.MaxAttempts)
	setDuration("RETRY_DELAY", &c.Retry.Delay)

	setString("SEMESTER_START", &c.Semesters.Start)
	setString("SEMESTER_END", &c.Semesters.End)

	setString("STUDENT_PREFIX", &c.Students.Prefix)
	setInt("STUDENT_START", &c.Students.Start)
	setInt("STUDENT_END", &c.Students.End)
	if v := os.Getenv(EnvPrefix + "EXTRA_STUDENTS"); v != "" {
		c.Students.Extra = splitList(v)
	}

	setString("RESULTS_DIR", &c.Storage.ResultsDir)
	setString("COMBINED_DIR", &c.Storage.CombinedDir)
	setString("SUMMARY_DIR", &c.Storage.SummaryDir)

	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FILE", &c.Logging.File)

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file. An empty path searches
// the default locations and is not an error when nothing is found.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func findConfigFile() string {
	locations := []string{
		"diuresults.yaml",
		"diuresults.yml",
		".diuresults.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "diuresults", "config.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Validate checks the whole configuration and reports every problem at once
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api base URL is required"))
	} else if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("api base URL must be http(s): %q", c.API.BaseURL))
	}
	if c.API.ResultsPath == "" {
		errs = append(errs, errors.New("api results path is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api timeout must be positive"))
	}
	if c.API.RateLimit.Requests < 0 {
		errs = append(errs, errors.New("rate limit requests cannot be negative"))
	}
	if c.API.RateLimit.Requests > 0 && c.API.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}

	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
		errs = append(errs, errors.New("retry max attempts must be between 1 and 10"))
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}
	switch strings.ToLower(c.Retry.Strategy) {
	case "", "constant":
	case "exponential":
		if c.Retry.Multiplier < 1 {
			errs = append(errs, errors.New("retry multiplier must be at least 1"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown retry strategy: %q", c.Retry.Strategy))
	}

	if !ids.IsValidSemesterID(c.Semesters.Start) {
		errs = append(errs, fmt.Errorf("invalid start semester: %q", c.Semesters.Start))
	}
	if !ids.IsValidSemesterID(c.Semesters.End) {
		errs = append(errs, fmt.Errorf("invalid end semester: %q", c.Semesters.End))
	}
	if ids.IsValidSemesterID(c.Semesters.Start) && ids.IsValidSemesterID(c.Semesters.End) &&
		c.Semesters.Start > c.Semesters.End {
		errs = append(errs, fmt.Errorf("start semester %s is after end semester %s", c.Semesters.Start, c.Semesters.End))
	}

	if c.Students.Start < 0 || c.Students.End < 0 {
		errs = append(errs, errors.New("student numbers cannot be negative"))
	}
	if c.Students.Start >= 0 && c.Students.End >= 0 && c.Students.End-c.Students.Start >= MaxStudentRange {
		errs = append(errs, fmt.Errorf("student range is too large: at most %d students per run", MaxStudentRange))
	}
	if c.Students.Start > c.Students.End && len(c.Students.Extra) == 0 {
		errs = append(errs, errors.New("student range is empty and no extra students are listed"))
	}

	if c.Storage.ResultsDir == "" {
		errs = append(errs, errors.New("results directory is required"))
	}
	if c.Storage.CombinedDir == "" {
		errs = append(errs, errors.New("combined directory is required"))
	}
	if c.Storage.SummaryDir == "" {
		errs = append(errs, errors.New("summary directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level: %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format: %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeCommandLineFlags applies flags that were explicitly set on the CLI
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["base-url"].(string); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v > 0 {
		c.API.Timeout = v
	}
	if v, ok := flags["rate-limit"].(int); ok {
		c.API.RateLimit.Requests = v
	}
	if v, ok := flags["max-attempts"].(int); ok {
		c.Retry.MaxAttempts = v
	}
	if v, ok := flags["retry-delay"].(time.Duration); ok {
		c.Retry.Delay = v
	}
	if v, ok := flags["semester-start"].(string); ok && v != "" {
		c.Semesters.Start = v
	}
	if v, ok := flags["semester-end"].(string); ok && v != "" {
		c.Semesters.End = v
	}
	if v, ok := flags["student-prefix"].(string); ok {
		c.Students.Prefix = v
	}
	if v, ok := flags["student-start"].(int); ok {
		c.Students.Start = v
	}
	if v, ok := flags["student-end"].(int); ok {
		c.Students.End = v
	}
	if v, ok := flags["extra-students"].([]string); ok {
		c.Students.Extra = v
	}
	if v, ok := flags["results-dir"].(string); ok && v != "" {
		c.Storage.ResultsDir = v
	}
	if v, ok := flags["combined-dir"].(string); ok && v != "" {
		c.Storage.CombinedDir = v
	}
	if v, ok := flags["summary-dir"].(string); ok && v != "" {
		c.Storage.SummaryDir = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// SemesterIDs expands the configured semester range
func (c *Config) SemesterIDs() []string {
	return ids.GenerateSemesterIDs(c.Semesters.Start, c.Semesters.End)
}

// StudentIDs expands the configured student range and extras
func (c *Config) StudentIDs() []string {
	return ids.GenerateStudentIDs(c.Students.Start, c.Students.End, c.Students.Prefix, c.Students.Extra)
}

// Load loads configuration from all sources with proper precedence:
// flags > environment > .env > config file > defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".diuresults.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
