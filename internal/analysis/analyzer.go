package analysis

import (
	"sort"
)

// Support is how much of the feature model a visitor fills in.
type Support string

const (
	// SupportFull visitors parse the source and report every feature.
	SupportFull Support = "full"
	// SupportMinimal visitors report line counts only and never fail.
	SupportMinimal Support = "minimal"
)

// Visitor parses source text of one language and extracts its features in a single pass.
type Visitor interface {
	// Language returns the identifier the visitor is registered under.
	Language() string

	// Support reports whether the visitor is syntax-aware.
	Support() Support

	// ParseAndAnalyze parses source and walks the tree once. The only error it
	// returns is a *SyntaxError. The returned tree may be nil.
	ParseAndAnalyze(source []byte) (*Tree, *CodeFeatures, error)
}

// LanguageInfo describes one registered language.
type LanguageInfo struct {
	Name       string   `json:"name" yaml:"name"`
	Support    Support  `json:"support" yaml:"support"`
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// Analyzer dispatches analysis requests to the visitor registered for a language.
// The registry is fixed at construction, so an Analyzer is safe for concurrent use.
type Analyzer struct {
	visitors map[string]Visitor
}

// NewAnalyzer returns an Analyzer with every built-in visitor registered.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWith(
		NewPythonVisitor(),
		NewJavaScriptVisitor(),
		NewTypeScriptVisitor(),
		NewJavaVisitor(),
		NewRubyVisitor(),
		NewRustVisitor(),
		NewCVisitor(),
		NewPHPVisitor(),
		NewGoVisitor(),
		NewMinimalVisitor("cpp"),
		NewMinimalVisitor("csharp"),
	)
}

// NewAnalyzerWith returns an Analyzer restricted to the given visitors.
// A later visitor replaces an earlier one registered under the same identifier.
func NewAnalyzerWith(visitors ...Visitor) *Analyzer {
	a := &Analyzer{visitors: make(map[string]Visitor, len(visitors))}
	for _, v := range visitors {
		a.visitors[v.Language()] = v
	}
	return a
}

// Visitor returns the visitor for lang. Identifiers are case-sensitive.
func (a *Analyzer) Visitor(lang string) (Visitor, error) {
	v, ok := a.visitors[lang]
	if !ok {
		return nil, &UnsupportedLanguageError{Language: lang}
	}
	return v, nil
}

// Analyze parses source as lang and returns its syntax tree and features.
// The caller owns the tree and must Close it.
func (a *Analyzer) Analyze(source []byte, lang string) (*Tree, *CodeFeatures, error) {
	v, err := a.Visitor(lang)
	if err != nil {
		return nil, nil, err
	}
	return v.ParseAndAnalyze(source)
}

// Features is Analyze for callers that do not need the tree.
func (a *Analyzer) Features(source []byte, lang string) (*CodeFeatures, error) {
	tree, features, err := a.Analyze(source, lang)
	if err != nil {
		return nil, err
	}
	tree.Close()
	return features, nil
}

// Supports reports whether lang has a registered visitor.
func (a *Analyzer) Supports(lang string) bool {
	_, ok := a.visitors[lang]
	return ok
}

// Languages lists the registered languages sorted by identifier.
func (a *Analyzer) Languages() []LanguageInfo {
	out := make([]LanguageInfo, 0, len(a.visitors))
	for name, v := range a.visitors {
		out = append(out, LanguageInfo{
			Name:       name,
			Support:    v.Support(),
			Extensions: Extensions(name),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
