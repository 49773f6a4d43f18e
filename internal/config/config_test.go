package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Store: StoreConfig{
			DBPath: "/data/works.db",
		},
		Index: IndexConfig{
			DataPath: "/data/index",
		},
		Sync: SyncConfig{
			PageSize: 100,
		},
		Monitor: MonitorConfig{
			Interval:    30 * time.Second,
			Tolerance:   10,
			MaxFailures: 3,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()

	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"INFO", true},   // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyPaths(t *testing.T) {
	cfg := validConfig()
	cfg.Store.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "db path cannot be empty")

	cfg = validConfig()
	cfg.Index.DataPath = ""

	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "index data path cannot be empty")
}

func TestValidate_SyncAndMonitorBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.PageSize = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Monitor.Tolerance = -1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Monitor.MaxFailures = 0
	assert.Error(t, cfg.Validate())
}

func TestExpandPaths_EmptyUsesDefaults(t *testing.T) {
	cfg := &Config{}

	err := cfg.expandPaths()
	require.NoError(t, err)

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "worksync", "works.db"), cfg.Store.DBPath)
	assert.Equal(t, filepath.Join(homeDir, "worksync", "index"), cfg.Index.DataPath)
}

func TestExpandPaths_TildeExpansion(t *testing.T) {
	cfg := &Config{
		Store: StoreConfig{DBPath: "~/my-data/works.db"},
	}

	err := cfg.expandPaths()
	require.NoError(t, err)

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "my-data", "works.db"), cfg.Store.DBPath)
}

func TestExpandPaths_RelativePath(t *testing.T) {
	cfg := &Config{
		Index: IndexConfig{DataPath: "relative/index"},
	}

	err := cfg.expandPaths()
	require.NoError(t, err)

	// Should be converted to absolute path.
	assert.True(t, filepath.IsAbs(cfg.Index.DataPath))
	assert.Contains(t, cfg.Index.DataPath, "relative/index")
}

func TestExpandPaths_OverridesLeftEmpty(t *testing.T) {
	cfg := &Config{}

	err := cfg.expandPaths()
	require.NoError(t, err)

	// No default for the override file; empty means disabled.
	assert.Empty(t, cfg.Classify.OverridesPath)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	// Test flag value takes priority.
	result := getConfigValue("flag-value", "ENV_KEY", "default-value")
	assert.Equal(t, "flag-value", result)

	// Test env var when flag is empty.
	os.Setenv("TEST_ENV_KEY", "env-value") //nolint:errcheck // Test setup
	defer os.Unsetenv("TEST_ENV_KEY")      //nolint:errcheck // Test cleanup

	result = getConfigValue("", "TEST_ENV_KEY", "default-value")
	assert.Equal(t, "env-value", result)

	// Test default when both are empty.
	result = getConfigValue("", "NONEXISTENT_KEY", "default-value")
	assert.Equal(t, "default-value", result)
}

func TestGetIntConfigValue(t *testing.T) {
	assert.Equal(t, 42, getIntConfigValue("42", "NONEXISTENT_KEY", 7))
	assert.Equal(t, 7, getIntConfigValue("", "NONEXISTENT_KEY", 7))
	assert.Equal(t, 7, getIntConfigValue("not-a-number", "NONEXISTENT_KEY", 7))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("true", "NONEXISTENT_KEY", false))
	assert.True(t, getBoolConfigValue("1", "NONEXISTENT_KEY", false))
	assert.True(t, getBoolConfigValue("YES", "NONEXISTENT_KEY", false))
	assert.False(t, getBoolConfigValue("false", "NONEXISTENT_KEY", true))
	assert.True(t, getBoolConfigValue("", "NONEXISTENT_KEY", true))
}

func TestParseDurationValue(t *testing.T) {
	d, err := parseDurationValue("45s", "NONEXISTENT_KEY", "30s")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)

	d, err = parseDurationValue("", "NONEXISTENT_KEY", "5m")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)

	_, err = parseDurationValue("banana", "NONEXISTENT_KEY", "30s")
	assert.Error(t, err)
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `# Test env file
ENV=staging
LOG_LEVEL=debug
DB_PATH=/test/works.db
# Comment line
QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	os.Unsetenv("ENV")           //nolint:errcheck // Test cleanup
	os.Unsetenv("LOG_LEVEL")     //nolint:errcheck // Test cleanup
	os.Unsetenv("DB_PATH")       //nolint:errcheck // Test cleanup
	os.Unsetenv("QUOTED_VALUE")  //nolint:errcheck // Test cleanup
	os.Unsetenv("SINGLE_QUOTED") //nolint:errcheck // Test cleanup
	defer func() {
		os.Unsetenv("ENV")           //nolint:errcheck // Test cleanup
		os.Unsetenv("LOG_LEVEL")     //nolint:errcheck // Test cleanup
		os.Unsetenv("DB_PATH")       //nolint:errcheck // Test cleanup
		os.Unsetenv("QUOTED_VALUE")  //nolint:errcheck // Test cleanup
		os.Unsetenv("SINGLE_QUOTED") //nolint:errcheck // Test cleanup
	}()

	err = loadEnvFile(envFile)
	require.NoError(t, err)

	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "/test/works.db", os.Getenv("DB_PATH"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `VALID_KEY=valid_value
INVALID LINE WITHOUT EQUALS
ANOTHER_VALID=value
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	err = loadEnvFile(envFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	err := loadEnvFile("/nonexistent/file/.env")
	assert.Error(t, err)
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	os.Setenv("TEST_VAR", "original-value") //nolint:errcheck // Test setup
	defer os.Unsetenv("TEST_VAR")           //nolint:errcheck // Test cleanup

	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `TEST_VAR=new-value`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	err = loadEnvFile(envFile)
	require.NoError(t, err)

	// Original value should be preserved.
	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}
