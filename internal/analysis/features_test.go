package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeFeatures_Clone(t *testing.T) {
	t.Parallel()

	orig := &CodeFeatures{
		LinesOfCode: 10,
		Complexity:  4,
		Functions: []FunctionInfo{
			{Name: "f", LineStart: 1, LineEnd: 3, Decorators: []string{"cache"}, Complexity: 2},
		},
		Classes: []ClassInfo{
			{Name: "C", Methods: []string{}, BaseClasses: []string{"Base"}, Decorators: []string{}},
		},
		Imports:   []string{"os"},
		Variables: []string{},
	}

	clone := orig.Clone()
	require.Equal(t, orig, clone)

	clone.Functions[0].Decorators[0] = "changed"
	clone.Classes[0].BaseClasses[0] = "Other"
	clone.Imports[0] = "sys"

	assert.Equal(t, "cache", orig.Functions[0].Decorators[0])
	assert.Equal(t, "Base", orig.Classes[0].BaseClasses[0])
	assert.Equal(t, "os", orig.Imports[0])

	var nilFeatures *CodeFeatures
	assert.Nil(t, nilFeatures.Clone())
}

func TestCodeFeatures_CloneKeepsNilSlices(t *testing.T) {
	t.Parallel()

	orig := &CodeFeatures{
		LinesOfCode: 3,
		Complexity:  1,
		Functions:   []FunctionInfo{{Name: "f"}},
		Classes:     []ClassInfo{{Name: "C", BaseClasses: []string{}}},
	}

	clone := orig.Clone()
	require.Equal(t, orig, clone)
	assert.Nil(t, clone.Imports)
	assert.Nil(t, clone.Variables)
	assert.Nil(t, clone.Functions[0].Decorators)
	assert.Nil(t, clone.Classes[0].Methods)
	assert.NotNil(t, clone.Classes[0].BaseClasses)

	empty := (&CodeFeatures{}).Clone()
	assert.Nil(t, empty.Functions)
	assert.Nil(t, empty.Classes)
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"x", 1},
		{"x\n", 1},
		{"x\ny", 2},
		{"x\n\n", 2},
		{"\n", 1},
		{"a\nb\nc\nd\ne", 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, countLines([]byte(tt.in)), "input %q", tt.in)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"main.go":         "go",
		"app.PY":          "python",
		"src/index.tsx":   "typescript",
		"lib/util.mjs":    "javascript",
		"Main.java":       "java",
		"x.rb":            "ruby",
		"lib.rs":          "rust",
		"a.h":             "c",
		"a.hpp":           "cpp",
		"Program.cs":      "csharp",
		"index.php":       "php",
		"README.md":       Unknown,
		"Makefile":        Unknown,
		"archive.tar.cbl": Unknown,
	}
	for file, want := range tests {
		assert.Equal(t, want, DetectLanguage(file), file)
	}

	assert.Equal(t, []string{".cjs", ".js", ".jsx", ".mjs"}, Extensions("javascript"))
	assert.Empty(t, Extensions("cobol"))
	assert.Contains(t, AllExtensions(), ".go")
}
