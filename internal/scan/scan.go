// Package scan analyzes many files concurrently, bounding both the number of
// analyses in flight and the time any one file may take.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/codefeat/internal/analysis"
	"github.com/mvp-joe/codefeat/internal/cache"
	"github.com/mvp-joe/codefeat/internal/logging"
)

// ErrFileTooLarge indicates a file exceeded the configured size limit and was not analyzed.
var ErrFileTooLarge = errors.New("file too large")

// Defaults used when no option overrides them.
const (
	DefaultWorkers      = 4
	DefaultTimeout      = 10 * time.Second
	DefaultMaxFileBytes = 1 << 20
)

// Analyzer is the part of analysis.Analyzer the scanner needs.
type Analyzer interface {
	Features(source []byte, lang string) (*analysis.CodeFeatures, error)
}

// FileResult is the outcome of analyzing one file. Exactly one of Features and Err is set.
type FileResult struct {
	Path     string
	Language string
	Features *analysis.CodeFeatures
	Err      error
	Cached   bool
	Duration time.Duration
}

// OK reports whether the file was analyzed successfully.
func (r FileResult) OK() bool {
	return r.Err == nil
}

// Stats summarizes one Scan call.
type Stats struct {
	Files     int
	Failed    int
	CacheHits int
	Duration  time.Duration
}

// Scanner runs analyses for batches of files.
type Scanner struct {
	analyzer     Analyzer
	workers      int
	timeout      time.Duration
	maxFileBytes int64
	language     string
	cache        *cache.Cache
	logger       *slog.Logger
	progress     ProgressReporter
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers sets the number of files analyzed concurrently.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTimeout bounds the analysis of a single file.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxFileBytes rejects larger files with ErrFileTooLarge.
func WithMaxFileBytes(n int64) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.maxFileBytes = n
		}
	}
}

// WithLanguage analyzes every file as lang instead of detecting it from the extension.
func WithLanguage(lang string) Option {
	return func(s *Scanner) { s.language = lang }
}

// WithCache reuses reports for content seen before. A nil cache disables caching.
func WithCache(c *cache.Cache) Option {
	return func(s *Scanner) { s.cache = c }
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(s *Scanner) {
		if p != nil {
			s.progress = p
		}
	}
}

// New creates a scanner backed by a.
func New(a Analyzer, opts ...Option) *Scanner {
	s := &Scanner{
		analyzer:     a,
		workers:      DefaultWorkers,
		timeout:      DefaultTimeout,
		maxFileBytes: DefaultMaxFileBytes,
		logger:       logging.NewDiscardLogger(),
		progress:     NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan analyzes paths and returns one result per path, in input order.
// Per-file failures are reported in the results, never as the returned error.
// When ctx is cancelled no further files are started; their results carry
// ctx.Err() and Scan returns it.
func (s *Scanner) Scan(ctx context.Context, paths []string) ([]FileResult, error) {
	start := time.Now()
	results := make([]FileResult, len(paths))
	s.progress.OnScanStart(len(paths))

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			results[i] = FileResult{Path: path, Language: s.detect(path), Err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			results[i] = s.ScanFile(ctx, path)
			s.progress.OnFileAnalyzed(results[i])
			return nil
		})
	}
	_ = g.Wait()

	stats := Stats{Files: len(paths)}
	for _, r := range results {
		if r.Err != nil {
			stats.Failed++
		}
		if r.Cached {
			stats.CacheHits++
		}
	}
	stats.Duration = time.Since(start)
	s.progress.OnScanComplete(stats)

	s.logger.Info("scan complete",
		"files", stats.Files,
		"failed", stats.Failed,
		"cache_hits", stats.CacheHits,
		"duration", stats.Duration)

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// ScanFile analyzes a single file.
func (s *Scanner) ScanFile(ctx context.Context, path string) FileResult {
	start := time.Now()
	result := FileResult{Path: path, Language: s.detect(path)}

	source, err := s.readSource(path)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		s.logger.Warn("skipping file", "path", path, "error", err)
		return result
	}

	if cached, ok := s.cache.Get(result.Language, source); ok {
		result.Features = cached
		result.Cached = true
		result.Duration = time.Since(start)
		s.logger.Debug("cache hit", "path", path, "language", result.Language)
		return result
	}

	features, err := s.analyzeWithDeadline(ctx, source, result.Language)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = fmt.Errorf("failed to analyze %s: %w", path, err)
		s.logger.Warn("analysis failed", "path", path, "language", result.Language, "error", err)
		return result
	}

	s.cache.Set(result.Language, source, features)
	result.Features = features
	s.logger.Debug("analyzed file",
		"path", path,
		"language", result.Language,
		"functions", len(features.Functions),
		"complexity", features.Complexity,
		"duration", result.Duration)
	return result
}

func (s *Scanner) detect(path string) string {
	if s.language != "" {
		return s.language
	}
	return analysis.DetectLanguage(path)
}

func (s *Scanner) readSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > s.maxFileBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, path, info.Size(), s.maxFileBytes)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return source, nil
}

type analysisOutcome struct {
	features *analysis.CodeFeatures
	err      error
}

// analyzeWithDeadline runs the analysis in its own goroutine. Analysis cannot
// be interrupted, so on timeout the goroutine is abandoned and finishes in the
// background; its result is dropped.
func (s *Scanner) analyzeWithDeadline(ctx context.Context, source []byte, lang string) (*analysis.CodeFeatures, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan analysisOutcome, 1)
	go func() {
		features, err := s.analyzer.Features(source, lang)
		done <- analysisOutcome{features: features, err: err}
	}()

	select {
	case out := <-done:
		return out.features, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
