package analysis

import "bytes"

// accumulator collects traversal results for a single analysis call.
// It is created per call and never shared between calls.
type accumulator struct {
	functions  []FunctionInfo
	classes    []ClassInfo
	imports    []string
	variables  []string
	complexity int
}

func newAccumulator() *accumulator {
	return &accumulator{}
}

// addFunction records a function and charges its complexity to the aggregate.
func (a *accumulator) addFunction(fn FunctionInfo) {
	if fn.Decorators == nil {
		fn.Decorators = []string{}
	}
	a.functions = append(a.functions, fn)
	a.complexity += fn.Complexity
}

func (a *accumulator) addClass(c ClassInfo) {
	if c.Methods == nil {
		c.Methods = []string{}
	}
	if c.BaseClasses == nil {
		c.BaseClasses = []string{}
	}
	if c.Decorators == nil {
		c.Decorators = []string{}
	}
	a.classes = append(a.classes, c)
}

func (a *accumulator) addImports(names ...string) {
	a.imports = append(a.imports, names...)
}

// addBranch counts a branch point seen anywhere in the tree. This counter is
// independent of the per-function scores that already include the same branch.
func (a *accumulator) addBranch() {
	a.complexity++
}

// freeze assembles the final report. The accumulator must not be used afterwards.
func (a *accumulator) freeze(source []byte) *CodeFeatures {
	features := &CodeFeatures{
		LinesOfCode: countLines(source),
		Functions:   a.functions,
		Classes:     a.classes,
		Complexity:  a.complexity,
		Imports:     a.imports,
		Variables:   a.variables,
	}
	if features.Functions == nil {
		features.Functions = []FunctionInfo{}
	}
	if features.Classes == nil {
		features.Classes = []ClassInfo{}
	}
	if features.Imports == nil {
		features.Imports = []string{}
	}
	if features.Variables == nil {
		features.Variables = []string{}
	}
	// A unit with no branches still has one path through it.
	if features.Complexity < 1 {
		features.Complexity = 1
	}
	return features
}

// minimalFeatures is the report for languages without a syntax-aware visitor.
func minimalFeatures(source []byte) *CodeFeatures {
	return newAccumulator().freeze(source)
}

// countLines counts newline-delimited lines. A trailing newline does not start
// a new line and empty input has no lines.
func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := bytes.Count(source, []byte{'\n'})
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}
