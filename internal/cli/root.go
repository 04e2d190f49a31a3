// Package cli implements the codefeat command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codefeat/internal/config"
	"github.com/mvp-joe/codefeat/internal/logging"
)

var (
	rootDirFlag string
	verbosity   int
	quietFlag   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codefeat",
	Short: "Extract structural features from source code",
	Long: `codefeat parses source files and reports their structural features:
functions, classes, imports, lines of code and cyclomatic complexity.

Supported languages: python, javascript, typescript, java, ruby, rust, c,
php and go. cpp and csharp are recognized with minimal support (line counts only).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var failures *FailuresError
		if !errors.As(err, &failures) || !quietFlag {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDirFlag, "root", "", "project root holding .codefeat/ (default is the working directory)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "disable progress bars and logging")
}

// environment is what every command needs after startup.
type environment struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
}

// loadEnvironment resolves the project root, loads its configuration and
// builds the logger. Verbosity flags override the configured log level.
func loadEnvironment(root string, stderr io.Writer) (*environment, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := logging.LevelFromString(cfg.Logging.Level)
	if verbosity > 0 || quietFlag {
		level = logging.LevelFromVerbosity(verbosity, quietFlag)
	}

	return &environment{
		root:   root,
		cfg:    cfg,
		logger: logging.NewLogger(stderr, level, cfg.Logging.Format),
	}, nil
}
