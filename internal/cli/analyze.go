package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codefeat/internal/analysis"
	"github.com/mvp-joe/codefeat/internal/cache"
	"github.com/mvp-joe/codefeat/internal/discovery"
	"github.com/mvp-joe/codefeat/internal/scan"
	"github.com/mvp-joe/codefeat/internal/storage"
	"github.com/mvp-joe/codefeat/internal/watcher"
)

// FailuresError is returned when at least one file could not be analyzed.
// The report has already been written when it is returned.
type FailuresError struct {
	Failed int
	Total  int
}

func (e *FailuresError) Error() string {
	return fmt.Sprintf("%d of %d files failed analysis", e.Failed, e.Total)
}

// analyzeOptions holds the analyze command flags.
type analyzeOptions struct {
	language string
	format   string
	store    bool
	watch    bool
	noCache  bool
	quiet    bool
}

var analyzeOpts analyzeOptions

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Analyze source files and report their features",
	Long: `Analyze parses each file and reports its functions, classes, imports,
lines of code and complexity.

Directories are walked using the include and ignore patterns from
.codefeat/config.yml. Files that fail to parse are reported with status
"error" and do not stop the batch; the exit code is non-zero if any file failed.

Examples:
  # Analyze the current directory
  codefeat analyze

  # Analyze specific files as YAML
  codefeat analyze --format yaml main.py lib/util.py

  # Force a language regardless of extension
  codefeat analyze --lang typescript src/legacy.js

  # Record the run in the history database
  codefeat analyze --store

  # Re-analyze files as they change
  codefeat analyze --watch src/
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		env, err := loadEnvironment(rootDirFlag, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		opts := analyzeOpts
		opts.quiet = opts.quiet || quietFlag
		return runAnalyze(ctx, env, opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeOpts.language, "lang", "l", "", "analyze every file as this language instead of detecting by extension")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.format, "format", "f", formatText, "output format: json, yaml or text")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.store, "store", false, "record the run in the history database")
	analyzeCmd.Flags().BoolVarP(&analyzeOpts.watch, "watch", "w", false, "watch for changes and re-analyze changed files")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.noCache, "no-cache", false, "disable the in-memory result cache")
}

func runAnalyze(ctx context.Context, env *environment, opts analyzeOptions, args []string, stdout, stderr io.Writer) error {
	if !validFormat(opts.format) {
		return fmt.Errorf("unknown format %q (want json, yaml or text)", opts.format)
	}

	analyzer := analysis.NewAnalyzer()
	if opts.language != "" && !analyzer.Supports(opts.language) {
		return &analysis.UnsupportedLanguageError{Language: opts.language}
	}

	if len(args) == 0 {
		args = []string{env.root}
	}

	files, err := discovery.Expand(args, env.cfg.Paths.Include, env.cfg.Paths.Ignore)
	if err != nil {
		return err
	}
	env.logger.Info("discovered files", "count", len(files))

	var featureCache *cache.Cache
	if env.cfg.Cache.Enabled && !opts.noCache {
		featureCache, err = cache.New(env.cfg.Cache.Capacity, env.cfg.Cache.TTL)
		if err != nil {
			return err
		}
		defer featureCache.Close()
	}

	var store *storage.Store
	if opts.store {
		store, err = storage.Open(env.cfg.StoragePath(env.root))
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer store.Close()
	}

	scanner := scan.New(analyzer,
		scan.WithWorkers(env.cfg.Analysis.Workers),
		scan.WithTimeout(env.cfg.Analysis.Timeout),
		scan.WithMaxFileBytes(env.cfg.Analysis.MaxFileBytes),
		scan.WithLanguage(opts.language),
		scan.WithCache(featureCache),
		scan.WithLogger(env.logger),
		scan.WithProgress(newProgressReporter(stderr, opts.quiet || opts.watch)),
	)

	batch := func(paths []string) error {
		started := time.Now()
		results, err := scanner.Scan(ctx, paths)
		if err != nil {
			return err
		}

		report := buildReport(results)
		if store != nil {
			runID, err := store.RecordRun(ctx, env.root, started, results)
			if err != nil {
				return fmt.Errorf("failed to record run: %w", err)
			}
			report.RunID = runID
		}

		if err := writeReport(stdout, opts.format, report); err != nil {
			return err
		}
		if report.Summary.Failed > 0 {
			return &FailuresError{Failed: report.Summary.Failed, Total: report.Summary.Files}
		}
		return nil
	}

	err = batch(files)
	if !opts.watch {
		return err
	}
	var failures *FailuresError
	if err != nil && !errors.As(err, &failures) {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	return watchAndAnalyze(ctx, env, args, batch)
}

// watchAndAnalyze re-runs batch for changed files until ctx is cancelled.
// Removed files and files outside the include patterns are skipped.
func watchAndAnalyze(ctx context.Context, env *environment, args []string, batch func([]string) error) error {
	var dirs []string
	discoveries := make(map[string]*discovery.Discovery)
	for _, arg := range args {
		dir := arg
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			dir = filepath.Dir(arg)
		}
		if _, ok := discoveries[dir]; ok {
			continue
		}
		d, err := discovery.New(dir, env.cfg.Paths.Include, env.cfg.Paths.Ignore)
		if err != nil {
			return err
		}
		discoveries[dir] = d
		dirs = append(dirs, dir)
	}

	w, err := watcher.New(dirs, env.cfg.SourceExtensions(), 0, watcher.WithLogger(env.logger))
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	env.logger.Info("watching for changes", "dirs", dirs)

	err = w.Start(ctx, func(changed []string) {
		var files []string
		for _, path := range changed {
			if _, err := os.Stat(path); err != nil {
				env.logger.Debug("skipping removed file", "path", path)
				continue
			}
			if watchedFile(discoveries, path) {
				files = append(files, path)
			}
		}
		if len(files) == 0 {
			return
		}
		if err := batch(files); err != nil {
			// Failures were already reported; keep watching.
			env.logger.Warn("re-analysis finished with errors", "error", err)
		}
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

func watchedFile(discoveries map[string]*discovery.Discovery, path string) bool {
	for dir, d := range discoveries {
		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if d.Match(rel) {
			return true
		}
	}
	return false
}
