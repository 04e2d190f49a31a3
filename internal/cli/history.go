package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codefeat/internal/storage"
)

// historyOptions holds the history command flags.
type historyOptions struct {
	limit  int
	top    int
	format string
}

var historyOpts historyOptions

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded analysis runs",
	Long: `History lists runs recorded with "codefeat analyze --store", newest first.

Given a run ID it shows that run's per-file summaries and its most complex
functions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(rootDirFlag, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		runID := ""
		if len(args) == 1 {
			runID = args[0]
		}
		return runHistory(cmd.Context(), env, historyOpts, runID, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 20, "maximum runs to list (0 for all)")
	historyCmd.Flags().IntVar(&historyOpts.top, "top", 10, "number of most complex functions to show for a run")
	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", formatText, "output format: json, yaml or text")
}

// runDetailOutput is the document written for a single run.
type runDetailOutput struct {
	Run          *storage.Run             `json:"run" yaml:"run"`
	Files        []storage.FileReport     `json:"files" yaml:"files"`
	TopFunctions []storage.FunctionRecord `json:"top_functions" yaml:"top_functions"`
}

func runHistory(ctx context.Context, env *environment, opts historyOptions, runID string, w io.Writer) error {
	if !validFormat(opts.format) {
		return fmt.Errorf("unknown format %q (want json, yaml or text)", opts.format)
	}

	dbPath := env.cfg.StoragePath(env.root)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no history at %s (run codefeat analyze --store first)", dbPath)
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if runID == "" {
		runs, err := store.ListRuns(ctx, opts.limit)
		if err != nil {
			return err
		}
		return writeRuns(w, opts.format, runs)
	}

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	files, err := store.FileReports(ctx, runID)
	if err != nil {
		return err
	}
	top, err := store.TopFunctions(ctx, runID, opts.top)
	if err != nil {
		return err
	}
	return writeRunDetail(w, opts.format, runDetailOutput{Run: run, Files: files, TopFunctions: top})
}

func writeRuns(w io.Writer, format string, runs []storage.Run) error {
	if format != formatText {
		return writeDocument(w, format, runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tFILES\tERRORS\tROOT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.FileCount, r.ErrorCount, r.Root)
	}
	return tw.Flush()
}

func writeRunDetail(w io.Writer, format string, detail runDetailOutput) error {
	if format != formatText {
		return writeDocument(w, format, detail)
	}

	r := detail.Run
	fmt.Fprintf(w, "Run %s\n", r.ID)
	fmt.Fprintf(w, "  Root:    %s\n", r.Root)
	fmt.Fprintf(w, "  Started: %s\n", r.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "  Files:   %d (%d errors)\n\n", r.FileCount, r.ErrorCount)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tLANGUAGE\tSTATUS\tLOC\tCOMPLEXITY\tFUNCTIONS\tCLASSES")
	for _, f := range detail.Files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			f.Path, f.Language, f.Status, f.LinesOfCode, f.Complexity, f.FunctionCount, f.ClassCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(detail.TopFunctions) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nMost complex functions:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPLEXITY\tFUNCTION\tLOCATION\tARGS")
	for _, fn := range detail.TopFunctions {
		fmt.Fprintf(tw, "%d\t%s\t%s:%d-%d\t%d\n",
			fn.Complexity, fn.Name, fn.Path, fn.LineStart, fn.LineEnd, fn.ArgsCount)
	}
	return tw.Flush()
}
