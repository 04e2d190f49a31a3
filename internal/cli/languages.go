package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codefeat/internal/analysis"
)

var languagesFormat string

// languagesCmd represents the languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their file extensions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLanguages(cmd.OutOrStdout(), languagesFormat)
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
	languagesCmd.Flags().StringVarP(&languagesFormat, "format", "f", formatText, "output format: json, yaml or text")
}

func runLanguages(w io.Writer, format string) error {
	if !validFormat(format) {
		return fmt.Errorf("unknown format %q (want json, yaml or text)", format)
	}

	langs := analysis.NewAnalyzer().Languages()
	if format != formatText {
		return writeDocument(w, format, langs)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tSUPPORT\tEXTENSIONS")
	for _, l := range langs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, l.Support, strings.Join(l.Extensions, " "))
	}
	return tw.Flush()
}
