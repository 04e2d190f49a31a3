package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from files and environment variables.
	// Priority: defaults → user config → project config → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
	userDir string
}

// NewLoader creates a loader for the project at rootDir. The user-level
// config directory is ~/.codefeat when the home directory is known.
func NewLoader(rootDir string) Loader {
	userDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		userDir = filepath.Join(home, DirName)
	}
	return &loader{rootDir: rootDir, userDir: userDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CODEFEAT_*)
// 2. Project config file (.codefeat/config.yml or .codefeat/config.yaml)
// 3. User config file (~/.codefeat/config.yml or config.yaml)
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	// Enable environment variable overrides
	v.SetEnvPrefix("CODEFEAT")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., CODEFEAT_ANALYSIS_WORKERS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVars(v)

	setDefaults(v)

	for _, dir := range []string{l.userDir, filepath.Join(l.rootDir, DirName)} {
		if err := mergeConfigDir(v, dir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// mergeConfigDir merges dir/config.yml (or .yaml) into v. A missing file is not an error.
func mergeConfigDir(v *viper.Viper, dir string) error {
	if dir == "" {
		return nil
	}

	for _, name := range []string{"config.yml", "config.yaml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.MergeInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
	return nil
}

// bindEnvVars binds scalar keys so AutomaticEnv sees them during Unmarshal.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("analysis.workers")
	v.BindEnv("analysis.timeout")
	v.BindEnv("analysis.max_file_bytes")

	v.BindEnv("cache.enabled")
	v.BindEnv("cache.capacity")
	v.BindEnv("cache.ttl")

	v.BindEnv("storage.path")

	v.BindEnv("logging.level")
	v.BindEnv("logging.format")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("analysis.workers", defaults.Analysis.Workers)
	v.SetDefault("analysis.timeout", defaults.Analysis.Timeout)
	v.SetDefault("analysis.max_file_bytes", defaults.Analysis.MaxFileBytes)

	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.capacity", defaults.Cache.Capacity)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)

	v.SetDefault("storage.path", defaults.Storage.Path)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
