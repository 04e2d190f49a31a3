package config

import (
	"path/filepath"
	"time"

	"github.com/mvp-joe/codefeat/internal/analysis"
)

// DirName is the per-project (and per-user) directory holding config.yml and the history database.
const DirName = ".codefeat"

// Config represents the complete codefeat configuration.
// It can be loaded from .codefeat/config.yml with environment variable overrides.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// PathsConfig defines which files to analyze when a directory is given.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// AnalysisConfig bounds the work done per run.
type AnalysisConfig struct {
	Workers      int           `yaml:"workers" mapstructure:"workers"`               // concurrent analyses
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`               // per-file deadline
	MaxFileBytes int64         `yaml:"max_file_bytes" mapstructure:"max_file_bytes"` // larger files are rejected
}

// CacheConfig configures the in-memory feature cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Capacity int           `yaml:"capacity" mapstructure:"capacity"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// StorageConfig locates the run history database.
type StorageConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // relative paths resolve against the project root
}

// LoggingConfig selects the log level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	include := make([]string, 0, len(analysis.AllExtensions()))
	for _, ext := range analysis.AllExtensions() {
		include = append(include, "**/*"+ext)
	}

	return &Config{
		Paths: PathsConfig{
			Include: include,
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
			},
		},
		Analysis: AnalysisConfig{
			Workers:      4,
			Timeout:      10 * time.Second,
			MaxFileBytes: 1 << 20,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 10000,
			TTL:      time.Hour,
		},
		Storage: StorageConfig{
			Path: filepath.Join(DirName, "history.db"),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// StoragePath resolves the history database location against rootDir.
func (c *Config) StoragePath(rootDir string) string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(rootDir, c.Storage.Path)
}

// SourceExtensions extracts unique file extensions from the include patterns.
// Returns extensions with leading dot (e.g., []string{".go", ".py"}).
func (c *Config) SourceExtensions() []string {
	seen := make(map[string]bool)
	var extensions []string
	for _, pattern := range c.Paths.Include {
		ext := extractExtension(pattern)
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		extensions = append(extensions, ext)
	}
	return extensions
}

// extractExtension extracts the file extension from a glob pattern.
// Examples: "**/*.go" -> ".go", "*.ts" -> ".ts", "src/main" -> "".
func extractExtension(pattern string) string {
	for i := len(pattern) - 1; i >= 1; i-- {
		if pattern[i] == '.' && pattern[i-1] == '*' {
			return pattern[i:]
		}
	}
	return ""
}
