package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/codefeat/internal/logging"
)

var (
	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidTimeout indicates a non-positive per-file timeout
	ErrInvalidTimeout = errors.New("invalid analysis timeout")

	// ErrInvalidMaxFileBytes indicates a non-positive file size limit
	ErrInvalidMaxFileBytes = errors.New("invalid max file size")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrEmptyStoragePath indicates a missing history database path
	ErrEmptyStoragePath = errors.New("empty storage path")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidLogFormat indicates an unknown log format
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// Validate checks that the configuration is valid and complete.
// Every violation is reported, not just the first.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateAnalysis(&cfg.Analysis); err != nil {
		errs = append(errs, err)
	}

	if err := validateCache(&cfg.Cache); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(cfg.Storage.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: path is required", ErrEmptyStoragePath))
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateAnalysis(cfg *AnalysisConfig) error {
	var errs []error

	if cfg.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	if cfg.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidTimeout, cfg.Timeout))
	}

	if cfg.MaxFileBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_bytes must be positive, got %d", ErrInvalidMaxFileBytes, cfg.MaxFileBytes))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateCache(cfg *CacheConfig) error {
	// A disabled cache ignores its sizing.
	if !cfg.Enabled {
		return nil
	}

	var errs []error

	if cfg.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidCacheSettings, cfg.Capacity))
	}

	if cfg.TTL < 0 {
		errs = append(errs, fmt.Errorf("%w: ttl cannot be negative, got %s", ErrInvalidCacheSettings, cfg.TTL))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	var errs []error

	if _, err := logging.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: must be debug, info, warn or error, got '%s'", ErrInvalidLogLevel, cfg.Level))
	}

	if !logging.ValidFormat(cfg.Format) {
		errs = append(errs, fmt.Errorf("%w: must be 'text' or 'json', got '%s'", ErrInvalidLogFormat, cfg.Format))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The sentinels stay reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return &multiError{errs: errs}
}

type multiError struct {
	errs []error
}

func (m *multiError) Error() string {
	msgs := make([]string, 0, len(m.errs))
	for _, err := range m.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (m *multiError) Unwrap() []error {
	return m.errs
}
