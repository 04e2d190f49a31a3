package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codefeat/internal/analysis"
)

// Test Plan for Cache:
// - Key depends on both language and source and is stable
// - Get after Set returns an equal report; a miss reports false
// - Returned and stored reports are copies
// - Stats count hits and misses
// - A nil cache never hits and never panics
// - Invalid capacity fails at construction

func sampleFeatures() *analysis.CodeFeatures {
	return &analysis.CodeFeatures{
		LinesOfCode: 3,
		Complexity:  3,
		Functions: []analysis.FunctionInfo{
			{Name: "f", LineStart: 1, LineEnd: 3, Decorators: []string{}, Complexity: 2, LinesOfCode: 2},
		},
		Classes:   []analysis.ClassInfo{},
		Imports:   []string{"os"},
		Variables: []string{},
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	src := []byte("def f():\n    pass\n")

	assert.Equal(t, Key("python", src), Key("python", src))
	assert.Len(t, Key("python", src), 64)
	assert.NotEqual(t, Key("python", src), Key("ruby", src))
	assert.NotEqual(t, Key("python", src), Key("python", append(src, ' ')))
	assert.NotEqual(t, Key("py", []byte("thon")), Key("python", nil))
}

func TestCache_GetSet(t *testing.T) {
	t.Parallel()

	c, err := New(100, time.Hour)
	require.NoError(t, err)
	defer c.Close()

	src := []byte("def f():\n    pass\n")

	_, ok := c.Get("python", src)
	assert.False(t, ok)

	c.Set("python", src, sampleFeatures())

	got, ok := c.Get("python", src)
	require.True(t, ok)
	assert.Equal(t, sampleFeatures(), got)
	assert.Equal(t, 1, c.Len())

	_, ok = c.Get("ruby", src)
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
}

func TestCache_CopiesOnGetAndSet(t *testing.T) {
	t.Parallel()

	c, err := New(10, 0)
	require.NoError(t, err)
	defer c.Close()

	src := []byte("x")
	stored := sampleFeatures()
	c.Set("python", src, stored)

	// Mutating the caller's value does not change the cached one.
	stored.Imports[0] = "changed"

	first, ok := c.Get("python", src)
	require.True(t, ok)
	assert.Equal(t, "os", first.Imports[0])

	// Nor does mutating a value handed out earlier.
	first.Functions[0].Name = "g"
	second, ok := c.Get("python", src)
	require.True(t, ok)
	assert.Equal(t, "f", second.Functions[0].Name)
}

func TestCache_Nil(t *testing.T) {
	t.Parallel()

	var c *Cache
	c.Set("python", []byte("x"), sampleFeatures())

	_, ok := c.Get("python", []byte("x"))
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Stats{}, c.Stats())
	c.Close()
}

func TestNew_InvalidCapacity(t *testing.T) {
	t.Parallel()

	_, err := New(0, time.Minute)
	assert.Error(t, err)
}
