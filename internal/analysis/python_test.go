package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the Python visitor:
// - A single function with one branch scores 2 and the aggregate counts the branch again
// - Decorators are rendered without "@" in source order
// - Parameter counting drops position-only, *args, keyword-only and **kwargs
// - Class bases exclude keyword arguments
// - Import rendering for plain, aliased, from and relative imports
// - boolean operators, loops and with blocks add to function complexity
// - Nested functions are recorded separately and double-counted in the aggregate
// - elif clauses count toward the aggregate
// - async functions are recorded
// - Trailing comments inside a body do not extend function or class line spans
// - Malformed source fails with a SyntaxError naming python
// - Python 2 print and exec statements are rejected as syntax errors

func analyzePython(t *testing.T, src string) *CodeFeatures {
	t.Helper()

	tree, features, err := NewPythonVisitor().ParseAndAnalyze([]byte(src))
	require.NoError(t, err)
	require.NotNil(t, tree)
	t.Cleanup(tree.Close)
	assert.Equal(t, "python", tree.Language())
	require.NotNil(t, tree.RootNode())
	return features
}

func TestPythonVisitor_SingleBranch(t *testing.T) {
	t.Parallel()

	features := analyzePython(t, "def f():\n    if True:\n        pass\n")

	require.Len(t, features.Functions, 1)
	fn := features.Functions[0]
	assert.Equal(t, "f", fn.Name)
	assert.Equal(t, 2, fn.Complexity)
	assert.Equal(t, 1, fn.LineStart)
	assert.Equal(t, 3, fn.LineEnd)
	assert.Equal(t, 2, fn.LinesOfCode)
	assert.Equal(t, 0, fn.ArgsCount)
	assert.Empty(t, fn.Decorators)
	assert.NotNil(t, fn.Decorators)

	assert.Equal(t, 3, features.LinesOfCode)
	assert.Equal(t, 3, features.Complexity)
	assert.Empty(t, features.Classes)
	assert.Empty(t, features.Imports)
	assert.NotNil(t, features.Variables)
}

func TestPythonVisitor_Decorators(t *testing.T) {
	t.Parallel()

	src := `@app.route('/x')
@staticmethod
def handler(a, b):
    return a
`
	features := analyzePython(t, src)

	require.Len(t, features.Functions, 1)
	fn := features.Functions[0]
	assert.Equal(t, "handler", fn.Name)
	assert.Equal(t, []string{"app.route('/x')", "staticmethod"}, fn.Decorators)
	assert.Equal(t, 2, fn.ArgsCount)
	// The span covers the def itself, not its decorators.
	assert.Equal(t, 3, fn.LineStart)
	assert.Equal(t, 4, fn.LineEnd)
}

func TestPythonVisitor_ArgsCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want int
	}{
		{"none", "def f():\n    pass\n", 0},
		{"plain", "def f(a, b, c):\n    pass\n", 3},
		{"self and typed", "def f(self, x: int, y: int = 2):\n    pass\n", 3},
		{"defaults", "def f(a, b=1):\n    pass\n", 2},
		{"position only", "def f(a, /, b, c=1):\n    pass\n", 2},
		{"star args", "def f(a, *args, b):\n    pass\n", 1},
		{"keyword only", "def f(a, *, b):\n    pass\n", 1},
		{"kwargs", "def f(a, **kwargs):\n    pass\n", 1},
		{"everything", "def f(a, /, b, c=1, *args, d, **kw):\n    pass\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			features := analyzePython(t, tt.src)
			require.Len(t, features.Functions, 1)
			assert.Equal(t, tt.want, features.Functions[0].ArgsCount)
		})
	}
}

func TestPythonVisitor_Classes(t *testing.T) {
	t.Parallel()

	src := `@dataclass
class Point(Base, mixins.Printable, metaclass=Meta):
    def norm(self):
        return 0

class Empty:
    pass
`
	features := analyzePython(t, src)

	require.Len(t, features.Classes, 2)
	point := features.Classes[0]
	assert.Equal(t, "Point", point.Name)
	assert.Equal(t, []string{"Base", "mixins.Printable"}, point.BaseClasses)
	assert.Equal(t, []string{"dataclass"}, point.Decorators)
	assert.Equal(t, 2, point.LineStart)
	assert.Equal(t, 4, point.LineEnd)
	assert.Empty(t, point.Methods)

	empty := features.Classes[1]
	assert.Equal(t, "Empty", empty.Name)
	assert.Empty(t, empty.BaseClasses)
	assert.NotNil(t, empty.BaseClasses)

	// Methods live in the flat function list.
	require.Len(t, features.Functions, 1)
	assert.Equal(t, "norm", features.Functions[0].Name)
	assert.Equal(t, 1, features.Functions[0].ArgsCount)
}

func TestPythonVisitor_Imports(t *testing.T) {
	t.Parallel()

	src := `import os
import a.b as c
from m import x, y as z
from . import r
from .pkg import s
from os.path import *
import os
`
	features := analyzePython(t, src)

	assert.Equal(t, []string{"os", "a.b", "m.x", "m.y", ".r", "pkg.s", "os.path.*", "os"}, features.Imports)
}

func TestPythonVisitor_Complexity(t *testing.T) {
	t.Parallel()

	src := `def f(a, b):
    if a and b:
        return 1
    for i in range(3):
        while a:
            pass
    with open("x") as fh:
        pass
    try:
        pass
    except Exception:
        pass
    return 0
`
	features := analyzePython(t, src)

	require.Len(t, features.Functions, 1)
	// 1 + if + and + for + while + with + try
	assert.Equal(t, 7, features.Functions[0].Complexity)
	// with blocks only count inside functions: if, for, while, try
	assert.Equal(t, 7+4, features.Complexity)
}

func TestPythonVisitor_BooleanChain(t *testing.T) {
	t.Parallel()

	features := analyzePython(t, "def f(a, b, c):\n    return a and b or c\n")

	require.Len(t, features.Functions, 1)
	assert.Equal(t, 3, features.Functions[0].Complexity)
	assert.Equal(t, 3, features.Complexity)
}

func TestPythonVisitor_NestedFunctions(t *testing.T) {
	t.Parallel()

	src := `def outer():
    def inner():
        if x:
            pass
    return inner
`
	features := analyzePython(t, src)

	require.Len(t, features.Functions, 2)
	assert.Equal(t, "outer", features.Functions[0].Name)
	assert.Equal(t, "inner", features.Functions[1].Name)
	assert.Equal(t, 2, features.Functions[0].Complexity)
	assert.Equal(t, 2, features.Functions[1].Complexity)
	assert.Equal(t, 2+2+1, features.Complexity)
	assert.GreaterOrEqual(t, features.Complexity, features.FunctionComplexity())
}

func TestPythonVisitor_ModuleLevelBranches(t *testing.T) {
	t.Parallel()

	src := `if a:
    pass
elif b:
    pass
else:
    pass
while c:
    break
`
	features := analyzePython(t, src)

	assert.Empty(t, features.Functions)
	assert.Equal(t, 3, features.Complexity)
}

func TestPythonVisitor_Async(t *testing.T) {
	t.Parallel()

	src := `async def fetch(session, url):
    async with session.get(url) as resp:
        return resp
`
	features := analyzePython(t, src)

	require.Len(t, features.Functions, 1)
	assert.Equal(t, "fetch", features.Functions[0].Name)
	assert.Equal(t, 2, features.Functions[0].ArgsCount)
	assert.Equal(t, 2, features.Functions[0].Complexity)
}

func TestPythonVisitor_SyntaxError(t *testing.T) {
	t.Parallel()

	tree, features, err := NewPythonVisitor().ParseAndAnalyze([]byte("def f(:\n    pass\n"))
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.Nil(t, features)

	assert.True(t, errors.Is(err, ErrSyntax))
	var serr *SyntaxError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "python", serr.Language)
	assert.Equal(t, 1, serr.Line)
	assert.Positive(t, serr.Column)
	assert.NotEmpty(t, serr.Message)
	assert.Contains(t, err.Error(), "syntax error in python code")
}

func TestPythonVisitor_TrailingComments(t *testing.T) {
	t.Parallel()

	src := `def f():
    pass
    # comment

# other

class C:
    def m(self):
        return 1
        # old code
    # end of C
`
	features := analyzePython(t, src)

	f := findFunction(t, features, "f")
	assert.Equal(t, 1, f.LineStart)
	assert.Equal(t, 2, f.LineEnd)
	assert.Equal(t, 1, f.LinesOfCode)

	m := findFunction(t, features, "m")
	assert.Equal(t, 8, m.LineStart)
	assert.Equal(t, 9, m.LineEnd)

	require.Len(t, features.Classes, 1)
	assert.Equal(t, 7, features.Classes[0].LineStart)
	assert.Equal(t, 9, features.Classes[0].LineEnd)
}

func TestPythonVisitor_Python2Statements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
		line int
	}{
		{"print", "x = 1\nprint \"hello\"\n", "print", 2},
		{"exec", "exec \"x = 1\"\n", "exec", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree, features, err := NewPythonVisitor().ParseAndAnalyze([]byte(tt.src))
			require.Error(t, err)
			assert.Nil(t, tree)
			assert.Nil(t, features)

			var serr *SyntaxError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, "python", serr.Language)
			assert.Equal(t, tt.line, serr.Line)
			assert.Equal(t, 1, serr.Column)
			assert.Contains(t, serr.Message, "Missing parentheses in call to '"+tt.want+"'")
		})
	}

	// The function forms are ordinary calls.
	features := analyzePython(t, "print(\"hello\")\nexec(\"x = 1\")\n")
	assert.Equal(t, 2, features.LinesOfCode)
}

func TestPythonVisitor_Empty(t *testing.T) {
	t.Parallel()

	features := analyzePython(t, "")

	assert.Equal(t, 0, features.LinesOfCode)
	assert.Equal(t, 1, features.Complexity)
	assert.Empty(t, features.Functions)
}
