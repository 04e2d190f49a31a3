package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the Rust visitor:
// - use trees expand into one path per leaf, extern crate names its crate
// - Structs, enums and traits are classes; outer attributes are decorators
// - Trait supertraits are bases
// - Wildcard match arms do not count, others do
// - self parameters count

func TestRustVisitor_Items(t *testing.T) {
	t.Parallel()

	src := `use std::collections::{HashMap, HashSet};
use std::io;
extern crate serde;

#[derive(Debug)]
struct Point {
    x: i32,
}

enum Shape {
    Circle,
}

trait Named: Clone + Send {
    fn name(&self) -> String;
}

fn check(a: i32, b: i32) -> bool {
    match a {
        1 => true,
        _ => a > 0 && b > 0,
    }
}
`
	features := analyzeWith(t, NewRustVisitor(), src)

	assert.Equal(t, []string{
		"std::collections::HashMap",
		"std::collections::HashSet",
		"std::io",
		"serde",
	}, features.Imports)

	require.Len(t, features.Classes, 3)
	assert.Equal(t, "Point", features.Classes[0].Name)
	assert.Equal(t, []string{"derive(Debug)"}, features.Classes[0].Decorators)
	assert.Equal(t, "Shape", features.Classes[1].Name)
	assert.Equal(t, "Named", features.Classes[2].Name)
	assert.Equal(t, []string{"Clone", "Send"}, features.Classes[2].BaseClasses)

	require.Len(t, features.Functions, 1)
	check := features.Functions[0]
	assert.Equal(t, "check", check.Name)
	assert.Equal(t, 2, check.ArgsCount)
	assert.Equal(t, 3, check.Complexity)

	assert.Equal(t, 3+1, features.Complexity)
}

func TestRustVisitor_Methods(t *testing.T) {
	t.Parallel()

	src := `impl Point {
    #[inline]
    pub fn scale(&mut self, by: i32) {
        for _ in 0..by {
            loop {
                break;
            }
        }
    }
}
`
	features := analyzeWith(t, NewRustVisitor(), src)

	scale := findFunction(t, features, "scale")
	assert.Equal(t, 2, scale.ArgsCount)
	assert.Equal(t, []string{"inline"}, scale.Decorators)
	assert.Equal(t, 3, scale.Complexity)
	assert.Equal(t, 5, features.Complexity)
}
