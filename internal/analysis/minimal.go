package analysis

// minimalVisitor is the documented default for languages without a
// syntax-aware implementation: it never fails and reports only line counts.
type minimalVisitor struct {
	lang string
}

// NewMinimalVisitor returns a minimal-support visitor for lang.
func NewMinimalVisitor(lang string) Visitor {
	return minimalVisitor{lang: lang}
}

func (v minimalVisitor) Language() string { return v.lang }

func (minimalVisitor) Support() Support { return SupportMinimal }

// ParseAndAnalyze returns a nil tree and a report with empty sequences and complexity 1.
func (minimalVisitor) ParseAndAnalyze(source []byte) (*Tree, *CodeFeatures, error) {
	return nil, minimalFeatures(source), nil
}
