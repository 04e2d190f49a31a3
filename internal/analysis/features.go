// Package analysis extracts structural features from source code.
//
// Each supported language has a Visitor that parses the source once, walks the
// resulting syntax tree and freezes what it saw into a language-agnostic
// CodeFeatures report: functions, classes, imports, line counts and a
// McCabe-style complexity score.
package analysis

// CodeFeatures is the normalized feature report for one analyzed unit.
// A report is never modified after it is returned; use Clone before mutating.
type CodeFeatures struct {
	LinesOfCode int            `json:"lines_of_code" yaml:"lines_of_code"`
	Functions   []FunctionInfo `json:"functions" yaml:"functions"`
	Classes     []ClassInfo    `json:"classes" yaml:"classes"`
	Complexity  int            `json:"complexity" yaml:"complexity"`
	Imports     []string       `json:"imports" yaml:"imports"`
	Variables   []string       `json:"variables" yaml:"variables"` // reserved
}

// FunctionInfo describes one function or method definition.
type FunctionInfo struct {
	Name        string   `json:"name" yaml:"name"`
	LineStart   int      `json:"line_start" yaml:"line_start"`
	LineEnd     int      `json:"line_end" yaml:"line_end"`
	ArgsCount   int      `json:"args_count" yaml:"args_count"`
	Decorators  []string `json:"decorators" yaml:"decorators"`
	Complexity  int      `json:"complexity" yaml:"complexity"`
	LinesOfCode int      `json:"lines_of_code" yaml:"lines_of_code"`
}

// ClassInfo describes one class (or the closest equivalent type declaration).
type ClassInfo struct {
	Name        string   `json:"name" yaml:"name"`
	LineStart   int      `json:"line_start" yaml:"line_start"`
	LineEnd     int      `json:"line_end" yaml:"line_end"`
	Methods     []string `json:"methods" yaml:"methods"` // reserved; methods are listed in CodeFeatures.Functions
	BaseClasses []string `json:"base_classes" yaml:"base_classes"`
	Decorators  []string `json:"decorators" yaml:"decorators"`
}

// FunctionComplexity returns the sum of all per-function complexities.
func (f *CodeFeatures) FunctionComplexity() int {
	total := 0
	for _, fn := range f.Functions {
		total += fn.Complexity
	}
	return total
}

// Clone returns a deep copy of the report. Nil slices stay nil.
func (f *CodeFeatures) Clone() *CodeFeatures {
	if f == nil {
		return nil
	}

	out := &CodeFeatures{
		LinesOfCode: f.LinesOfCode,
		Complexity:  f.Complexity,
		Imports:     cloneStrings(f.Imports),
		Variables:   cloneStrings(f.Variables),
	}
	if f.Functions != nil {
		out.Functions = make([]FunctionInfo, len(f.Functions))
		for i, fn := range f.Functions {
			fn.Decorators = cloneStrings(fn.Decorators)
			out.Functions[i] = fn
		}
	}
	if f.Classes != nil {
		out.Classes = make([]ClassInfo, len(f.Classes))
		for i, c := range f.Classes {
			c.Methods = cloneStrings(c.Methods)
			c.BaseClasses = cloneStrings(c.BaseClasses)
			c.Decorators = cloneStrings(c.Decorators)
			out.Classes[i] = c
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
