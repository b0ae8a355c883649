// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads cts command-line configuration.
//
// Every flag falls back to a CTS_* environment variable, and a .env file
// (see -env-file) is loaded into the environment before defaults are read.
// Variables already set in the environment win over the file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/gogpu/cts/gpu"
)

// DefaultQuery selects every case of the reference suite.
const DefaultQuery = "webgpu:*"

// Config is the resolved cts configuration.
type Config struct {
	RunID            string
	Queries          []string
	OutputDir        string
	Parallelism      int
	CaseTimeout      time.Duration
	Debug            bool
	LogFormat        string
	LogLevel         string
	MetricsEnabled   bool
	MetricsPath      string
	ListOnly         bool
	ServeAddr        string
	Backend          string
	Devices          int
	FeatureNames     []string
	ExpectationsFile string
	EnvFile          string

	// Features is FeatureNames resolved.
	Features gputypes.Features
}

// Load parses args (without the program name).
// It returns flag.ErrHelp when -h or -help is given.
func Load(args []string) (*Config, error) {
	envFile := envFileArg(args, envOrDefault("CTS_ENV_FILE", ".env"))
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{EnvFile: envFile}
	var features string

	flags := flag.NewFlagSet("cts", flag.ContinueOnError)
	flags.StringVar(&cfg.EnvFile, "env-file", envFile, "dotenv file loaded before reading CTS_* variables")
	flags.StringVar(&cfg.RunID, "run-id", envOrDefault("CTS_RUN_ID", ""), "run identifier (default: random uuid)")
	flags.StringVar(&cfg.OutputDir, "output", envOrDefault("CTS_OUTPUT_DIR", ""), "artifact directory (default: artifacts/<run-id>)")
	flags.IntVar(&cfg.Parallelism, "parallel", envOrDefaultInt("CTS_PARALLEL", 1), "number of cases run concurrently")
	flags.DurationVar(&cfg.CaseTimeout, "case-timeout", envOrDefaultDuration("CTS_CASE_TIMEOUT", 30*time.Second), "per-case timeout (0 disables)")
	flags.BoolVar(&cfg.Debug, "debug", envOrDefaultBool("CTS_DEBUG", false), "keep debug log entries in results")
	flags.StringVar(&cfg.LogFormat, "log-format", envOrDefault("CTS_LOG_FORMAT", "console"), "log format: console or json")
	flags.StringVar(&cfg.LogLevel, "log-level", envOrDefault("CTS_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	flags.BoolVar(&cfg.MetricsEnabled, "metrics", envOrDefaultBool("CTS_METRICS", true), "write prometheus metrics after the run")
	flags.StringVar(&cfg.MetricsPath, "metrics-path", envOrDefault("CTS_METRICS_PATH", ""), "metrics textfile (default: <output>/metrics.prom)")
	flags.BoolVar(&cfg.ListOnly, "list", envOrDefaultBool("CTS_LIST", false), "print matching case queries and exit")
	flags.StringVar(&cfg.ServeAddr, "serve", envOrDefault("CTS_SERVE_ADDR", ""), "serve live status on this address and keep running")
	flags.StringVar(&cfg.Backend, "backend", envOrDefault("CTS_BACKEND", "noop"), "device backend: noop or vulkan")
	flags.IntVar(&cfg.Devices, "devices", envOrDefaultInt("CTS_DEVICES", 4), "maximum number of pooled devices")
	flags.StringVar(&features, "features", envOrDefault("CTS_FEATURES", ""), "comma-separated optional features devices may enable")
	flags.StringVar(&cfg.ExpectationsFile, "expectations", envOrDefault("CTS_EXPECTATIONS", ""), "expected-failure list")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg.Queries = flags.Args()
	if len(cfg.Queries) == 0 {
		// Queries contain commas, so CTS_QUERIES is whitespace separated.
		cfg.Queries = strings.Fields(envOrDefault("CTS_QUERIES", DefaultQuery))
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join("artifacts", cfg.RunID)
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = filepath.Join(cfg.OutputDir, "metrics.prom")
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	if cfg.Devices < 1 {
		cfg.Devices = 1
	}
	cfg.FeatureNames = splitCSV(features)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BackendType maps Backend to the HAL backend it names.
func (c *Config) BackendType() gputypes.Backend {
	if strings.EqualFold(c.Backend, "vulkan") {
		return gputypes.BackendVulkan
	}
	return gputypes.BackendEmpty
}

func (c *Config) validate() error {
	var errs []error
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("config: log format %q: want console or json", c.LogFormat))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: log level %q: want debug, info, warn or error", c.LogLevel))
	}
	switch strings.ToLower(c.Backend) {
	case "noop", "vulkan":
	default:
		errs = append(errs, fmt.Errorf("config: backend %q: want noop or vulkan", c.Backend))
	}
	if c.CaseTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: negative case timeout %v", c.CaseTimeout))
	}
	c.Features = 0
	for _, name := range c.FeatureNames {
		f, err := gpu.ParseFeature(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %w", err))
			continue
		}
		c.Features.Insert(f)
	}
	return errors.Join(errs...)
}

// envFileArg finds -env-file in args ahead of the real parse, since the
// file has to be loaded before flag defaults are computed.
func envFileArg(args []string, fallback string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "env-file" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return fallback
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed := 0
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return fallback
	}
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
