// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Store    StoreConfig
	Index    IndexConfig
	Sync     SyncConfig
	Monitor  MonitorConfig
	Probe    ProbeConfig
	Classify ClassifyConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StoreConfig holds primary-store configuration.
type StoreConfig struct {
	// DBPath is the SQLite database file holding works and tags.
	DBPath string
}

// IndexConfig holds search-index configuration.
type IndexConfig struct {
	// DataPath is the directory holding the Bleve index.
	DataPath string
}

// SyncConfig holds batch-synchronizer configuration.
type SyncConfig struct {
	// PageSize is the number of works per resync page (default: 100).
	PageSize int
	// PageRate caps bulk submissions per second; 0 disables pacing.
	PageRate int
}

// MonitorConfig holds health-monitor configuration.
type MonitorConfig struct {
	// Interval between scheduled health checks (default: 30s).
	Interval time.Duration
	// VerifyInterval between full verification checks (default: 1h).
	VerifyInterval time.Duration
	// Tolerance is the acceptable store/index count divergence (default: 10).
	Tolerance int
	// MaxFailures is the consecutive-failure threshold before recovery (default: 3).
	MaxFailures int
}

// ProbeConfig holds performance-probe configuration.
type ProbeConfig struct {
	// Interval between samples (default: 5m).
	Interval time.Duration
	// ThresholdPct is the heap/CPU warning threshold (default: 80).
	ThresholdPct int
	// MaxLatency is the canned-query latency warning threshold (default: 1s).
	MaxLatency time.Duration
}

// ClassifyConfig holds tag-classification configuration.
type ClassifyConfig struct {
	// OverridesPath is an optional YAML file mapping tag names to
	// categories, consulted before the heuristic rules.
	OverridesPath string
	// WatchOverrides reloads the override file on change (default: true).
	WatchOverrides bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dbPath := flag.String("db-path", "", "Path to the primary store SQLite database")
	dataPath := flag.String("data-path", "", "Directory for the search index")

	pageSize := flag.String("page-size", "", "Works per resync page (default: 100)")
	pageRate := flag.String("page-rate", "", "Max bulk submissions per second, 0 = unpaced (default: 0)")

	checkInterval := flag.String("check-interval", "", "Health check interval (default: 30s)")
	verifyInterval := flag.String("verify-interval", "", "Verification check interval (default: 1h)")
	tolerance := flag.String("tolerance", "", "Acceptable store/index count divergence (default: 10)")
	maxFailures := flag.String("max-failures", "", "Consecutive failures before recovery (default: 3)")

	probeInterval := flag.String("probe-interval", "", "Performance probe interval (default: 5m)")
	probeThreshold := flag.String("probe-threshold", "", "Heap/CPU warning threshold percent (default: 80)")
	probeMaxLatency := flag.String("probe-max-latency", "", "Query latency warning threshold (default: 1s)")

	overridesPath := flag.String("overrides-path", "", "YAML tag-classification override file")
	watchOverrides := flag.String("watch-overrides", "", "Reload the override file on change (default: true)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			DBPath: getConfigValue(*dbPath, "DB_PATH", ""),
		},
		Index: IndexConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Sync: SyncConfig{
			PageSize: getIntConfigValue(*pageSize, "SYNC_PAGE_SIZE", 100),
			PageRate: getIntConfigValue(*pageRate, "SYNC_PAGE_RATE", 0),
		},
		Monitor: MonitorConfig{
			Tolerance:   getIntConfigValue(*tolerance, "MONITOR_TOLERANCE", 10),
			MaxFailures: getIntConfigValue(*maxFailures, "MONITOR_MAX_FAILURES", 3),
		},
		Probe: ProbeConfig{
			ThresholdPct: getIntConfigValue(*probeThreshold, "PROBE_THRESHOLD_PCT", 80),
		},
		Classify: ClassifyConfig{
			OverridesPath:  getConfigValue(*overridesPath, "CLASSIFY_OVERRIDES_PATH", ""),
			WatchOverrides: getBoolConfigValue(*watchOverrides, "CLASSIFY_WATCH_OVERRIDES", true),
		},
	}

	var err error
	cfg.Monitor.Interval, err = parseDurationValue(*checkInterval, "MONITOR_CHECK_INTERVAL", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid check interval: %w", err)
	}
	cfg.Monitor.VerifyInterval, err = parseDurationValue(*verifyInterval, "MONITOR_VERIFY_INTERVAL", "1h")
	if err != nil {
		return nil, fmt.Errorf("invalid verify interval: %w", err)
	}
	cfg.Probe.Interval, err = parseDurationValue(*probeInterval, "PROBE_INTERVAL", "5m")
	if err != nil {
		return nil, fmt.Errorf("invalid probe interval: %w", err)
	}
	cfg.Probe.MaxLatency, err = parseDurationValue(*probeMaxLatency, "PROBE_MAX_LATENCY", "1s")
	if err != nil {
		return nil, fmt.Errorf("invalid probe max latency: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Store.DBPath == "" {
		return errors.New("db path cannot be empty after expansion")
	}
	if c.Index.DataPath == "" {
		return errors.New("index data path cannot be empty after expansion")
	}

	if c.Sync.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.Sync.PageSize)
	}
	if c.Monitor.Tolerance < 0 {
		return fmt.Errorf("tolerance cannot be negative, got %d", c.Monitor.Tolerance)
	}
	if c.Monitor.MaxFailures <= 0 {
		return fmt.Errorf("max failures must be positive, got %d", c.Monitor.MaxFailures)
	}

	return nil
}

// expandPaths expands ~ and makes the store and index paths absolute,
// applying defaults under the user's home directory.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	c.Store.DBPath, err = expandPath(c.Store.DBPath, filepath.Join(homeDir, "worksync", "works.db"))
	if err != nil {
		return fmt.Errorf("invalid db path: %w", err)
	}

	c.Index.DataPath, err = expandPath(c.Index.DataPath, filepath.Join(homeDir, "worksync", "index"))
	if err != nil {
		return fmt.Errorf("invalid index data path: %w", err)
	}

	if c.Classify.OverridesPath != "" {
		c.Classify.OverridesPath, err = expandPath(c.Classify.OverridesPath, "")
		if err != nil {
			return fmt.Errorf("invalid overrides path: %w", err)
		}
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	str := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", str, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
