package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/codefeat/internal/analysis"
	"github.com/mvp-joe/codefeat/internal/scan"
	"github.com/mvp-joe/codefeat/internal/storage"
)

// Output formats accepted by --format.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

func validFormat(format string) bool {
	switch format {
	case formatJSON, formatYAML, formatText:
		return true
	}
	return false
}

// fileOutput is one file in an analysis report.
type fileOutput struct {
	Path     string                 `json:"path" yaml:"path"`
	Language string                 `json:"language" yaml:"language"`
	Status   string                 `json:"status" yaml:"status"`
	Error    string                 `json:"error,omitempty" yaml:"error,omitempty"`
	Cached   bool                   `json:"cached,omitempty" yaml:"cached,omitempty"`
	Features *analysis.CodeFeatures `json:"features,omitempty" yaml:"features,omitempty"`
}

// summaryOutput totals a report.
type summaryOutput struct {
	Files      int `json:"files" yaml:"files"`
	Failed     int `json:"failed" yaml:"failed"`
	Lines      int `json:"lines_of_code" yaml:"lines_of_code"`
	Functions  int `json:"functions" yaml:"functions"`
	Classes    int `json:"classes" yaml:"classes"`
	Complexity int `json:"complexity" yaml:"complexity"`
}

// reportOutput is the document written by the analyze command.
type reportOutput struct {
	RunID   string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Files   []fileOutput  `json:"files" yaml:"files"`
	Summary summaryOutput `json:"summary" yaml:"summary"`
}

func buildReport(results []scan.FileResult) reportOutput {
	report := reportOutput{Files: make([]fileOutput, 0, len(results))}
	for _, r := range results {
		f := fileOutput{
			Path:     r.Path,
			Language: r.Language,
			Status:   storage.StatusOK,
			Cached:   r.Cached,
			Features: r.Features,
		}
		if r.Err != nil {
			f.Status = storage.StatusError
			f.Error = r.Err.Error()
			f.Features = nil
			report.Summary.Failed++
		} else if r.Features != nil {
			report.Summary.Lines += r.Features.LinesOfCode
			report.Summary.Functions += len(r.Features.Functions)
			report.Summary.Classes += len(r.Features.Classes)
			report.Summary.Complexity += r.Features.Complexity
		}
		report.Files = append(report.Files, f)
	}
	report.Summary.Files = len(results)
	return report
}

// writeDocument encodes v as JSON or YAML.
func writeDocument(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

func writeReport(w io.Writer, format string, report reportOutput) error {
	if format != formatText {
		return writeDocument(w, format, report)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tLANGUAGE\tSTATUS\tLOC\tCOMPLEXITY\tFUNCTIONS\tCLASSES\tIMPORTS")
	for _, f := range report.Files {
		if f.Features == nil {
			fmt.Fprintf(tw, "%s\t%s\t%s\t-\t-\t-\t-\t-\n", f.Path, f.Language, f.Status)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			f.Path, f.Language, f.Status,
			f.Features.LinesOfCode, f.Features.Complexity,
			len(f.Features.Functions), len(f.Features.Classes), len(f.Features.Imports))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, f := range report.Files {
		if f.Error != "" {
			fmt.Fprintf(w, "error: %s: %s\n", f.Path, firstLine(f.Error))
		}
	}

	s := report.Summary
	fmt.Fprintf(w, "\n%d files, %d failed, %d lines, %d functions, %d classes, complexity %d\n",
		s.Files, s.Failed, s.Lines, s.Functions, s.Classes, s.Complexity)
	if report.RunID != "" {
		fmt.Fprintf(w, "run: %s\n", report.RunID)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
