package analysis

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Analyzer:
// - Unknown identifiers fail with UnsupportedLanguageError naming the identifier
// - Identifiers are case-sensitive
// - Minimal languages never fail and report lines only
// - Repeated analysis of the same input yields identical reports
// - Function order follows source order
// - Adding a branch raises function and aggregate complexity by one each
// - Every registered full language reports complexity >= 1 for trivial input
// - Concurrent use returns the same reports as sequential use
// - Languages lists registered identifiers sorted with support levels
// - Features releases the tree and returns only the report

func TestAnalyzer_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer()

	tree, features, err := a.Analyze([]byte("IDENTIFICATION DIVISION."), "cobol")
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.Nil(t, features)

	assert.True(t, errors.Is(err, ErrUnsupportedLanguage))
	var uerr *UnsupportedLanguageError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "cobol", uerr.Language)
	assert.Equal(t, "unsupported language: cobol", err.Error())
}

func TestAnalyzer_CaseSensitive(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer()

	_, err := a.Features([]byte("x = 1\n"), "Python")
	assert.True(t, errors.Is(err, ErrUnsupportedLanguage))
	assert.False(t, a.Supports("Python"))
	assert.True(t, a.Supports("python"))
}

func TestAnalyzer_MinimalLanguages(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer()

	for _, lang := range []string{"cpp", "csharp"} {
		t.Run(lang, func(t *testing.T) {
			t.Parallel()

			// Deliberately not valid in any language.
			src := "line one\nline two {{{\n\nline four\nline five"
			tree, features, err := a.Analyze([]byte(src), lang)
			require.NoError(t, err)
			assert.Nil(t, tree)

			assert.Equal(t, 5, features.LinesOfCode)
			assert.Equal(t, 1, features.Complexity)
			assert.Empty(t, features.Functions)
			assert.Empty(t, features.Classes)
			assert.Empty(t, features.Imports)
			assert.Empty(t, features.Variables)

			features, err = a.Features([]byte(src+"\n"), lang)
			require.NoError(t, err)
			assert.Equal(t, 5, features.LinesOfCode)
		})
	}
}

func TestAnalyzer_Idempotent(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer()
	src := []byte("import os\n\n@cache\ndef f(a, b):\n    if a or b:\n        return 1\n\nclass C(Base):\n    pass\n")

	first, err := a.Features(src, "python")
	require.NoError(t, err)
	second, err := a.Features(src, "python")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyzer_OrderPreserved(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer()
	src := "def c():\n    pass\n\ndef a():\n    pass\n\ndef b():\n    pass\n"

	features, err := a.Features([]byte(src), "python")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, functionNames(features))
}

func TestAnalyzer_Monotonic(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer()
	base := "def f(x):\n    if x:\n        pass\n"
	more := base + "    if x > 1:\n        pass\n"

	before, err := a.Features([]byte(base), "python")
	require.NoError(t, err)
	after, err := a.Features([]byte(more), "python")
	require.NoError(t, err)

	require.Len(t, before.Functions, 1)
	require.Len(t, after.Functions, 1)
	assert.Equal(t, before.Functions[0].Complexity+1, after.Functions[0].Complexity)
	// One from the function score, one from the aggregate walk.
	assert.Equal(t, before.Complexity+2, after.Complexity)
}

func TestAnalyzer_TrivialSourcesScoreAtLeastOne(t *testing.T) {
	t.Parallel()

	sources := map[string]string{
		"python":     "x = 1\n",
		"javascript": "let x = 1;\n",
		"typescript": "let x: number = 1;\n",
		"java":       "class A {}\n",
		"ruby":       "x = 1\n",
		"rust":       "const X: i32 = 1;\n",
		"c":          "int x = 1;\n",
		"php":        "<?php\n$x = 1;\n",
		"go":         "package p\n\nvar x = 1\n",
	}

	a := NewAnalyzer()
	for lang, src := range sources {
		t.Run(lang, func(t *testing.T) {
			t.Parallel()

			features, err := a.Features([]byte(src), lang)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, features.Complexity, 1)
			assert.GreaterOrEqual(t, features.Complexity, features.FunctionComplexity())
			assert.Equal(t, strings.Count(src, "\n"), features.LinesOfCode)
		})
	}
}

func TestAnalyzer_Concurrent(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer()

	sources := make([][]byte, 16)
	want := make([]*CodeFeatures, len(sources))
	for i := range sources {
		var b strings.Builder
		for j := 0; j <= i; j++ {
			fmt.Fprintf(&b, "def f%d(a):\n    if a and %d:\n        return a\n", j, j)
		}
		sources[i] = []byte(b.String())

		features, err := a.Features(sources[i], "python")
		require.NoError(t, err)
		want[i] = features
	}

	var wg sync.WaitGroup
	got := make([]*CodeFeatures, len(sources)*4)
	errs := make([]error, len(got))
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = a.Features(sources[i%len(sources)], "python")
		}(i)
	}
	wg.Wait()

	for i := range got {
		require.NoError(t, errs[i])
		assert.Equal(t, want[i%len(sources)], got[i])
	}
}

func TestAnalyzer_Languages(t *testing.T) {
	t.Parallel()

	langs := NewAnalyzer().Languages()

	names := make([]string, 0, len(langs))
	support := map[string]Support{}
	for _, l := range langs {
		names = append(names, l.Name)
		support[l.Name] = l.Support
	}

	assert.Equal(t, []string{"c", "cpp", "csharp", "go", "java", "javascript", "php", "python", "ruby", "rust", "typescript"}, names)
	assert.Equal(t, SupportFull, support["python"])
	assert.Equal(t, SupportFull, support["go"])
	assert.Equal(t, SupportMinimal, support["cpp"])
	assert.Equal(t, SupportMinimal, support["csharp"])
	assert.Contains(t, langs[0].Extensions, ".c")
}

func TestAnalyzer_NewAnalyzerWith(t *testing.T) {
	t.Parallel()

	a := NewAnalyzerWith(NewMinimalVisitor("python"))

	v, err := a.Visitor("python")
	require.NoError(t, err)
	assert.Equal(t, SupportMinimal, v.Support())

	// The minimal replacement never fails, even on malformed input.
	features, err := a.Features([]byte("def f(:\n"), "python")
	require.NoError(t, err)
	assert.Equal(t, 1, features.LinesOfCode)

	_, err = a.Visitor("go")
	assert.True(t, errors.Is(err, ErrUnsupportedLanguage))
}

func TestAnalyzer_SyntaxErrorsPerLanguage(t *testing.T) {
	t.Parallel()

	broken := map[string]string{
		"python":     "def f(:\n",
		"javascript": "function f( {\n",
		"java":       "class A { void f( }\n",
		"rust":       "fn f( {\n",
		"c":          "int f( {\n",
		"go":         "package p\nfunc (\n",
	}

	a := NewAnalyzer()
	for lang, src := range broken {
		t.Run(lang, func(t *testing.T) {
			t.Parallel()

			_, _, err := a.Analyze([]byte(src), lang)
			require.Error(t, err)

			var serr *SyntaxError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, lang, serr.Language)
			assert.NotEmpty(t, serr.Message)
		})
	}
}
