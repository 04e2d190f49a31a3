package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the Ruby visitor:
// - require and require_relative calls are imports
// - Classes report their superclass, modules are classes without bases
// - Methods count plain and optional parameters
// - Keyword tokens are not mistaken for branch nodes

func TestRubyVisitor_Class(t *testing.T) {
	t.Parallel()

	src := `require 'json'
require_relative "lib/helper"

module Pets
  class Dog < Animal
    def bark(times, loud = false)
      if loud && times > 1
        puts 'WOOF'
      end
    end

    def self.create(*args)
      new
    end
  end
end
`
	features := analyzeWith(t, NewRubyVisitor(), src)

	assert.Equal(t, []string{"json", "lib/helper"}, features.Imports)

	require.Len(t, features.Classes, 2)
	assert.Equal(t, "Pets", features.Classes[0].Name)
	assert.Empty(t, features.Classes[0].BaseClasses)
	assert.Equal(t, "Dog", features.Classes[1].Name)
	assert.Equal(t, []string{"Animal"}, features.Classes[1].BaseClasses)

	assert.Equal(t, []string{"bark", "create"}, functionNames(features))

	bark := findFunction(t, features, "bark")
	assert.Equal(t, 2, bark.ArgsCount)
	assert.Equal(t, 3, bark.Complexity)
	assert.Equal(t, 6, bark.LineStart)
	assert.Equal(t, 10, bark.LineEnd)

	create := findFunction(t, features, "create")
	assert.Equal(t, 0, create.ArgsCount)
	assert.Equal(t, 1, create.Complexity)

	assert.Equal(t, 3+1+1, features.Complexity)
}

func TestRubyVisitor_Loops(t *testing.T) {
	t.Parallel()

	src := `def drain(queue)
  until queue.empty?
    queue.pop
  end
  return nil unless queue
  case queue.size
  when 0 then :empty
  when 1 then :one
  end
end
`
	features := analyzeWith(t, NewRubyVisitor(), src)

	drain := findFunction(t, features, "drain")
	// until + unless modifier + two whens
	assert.Equal(t, 5, drain.Complexity)
	assert.Equal(t, 9, features.Complexity)
}
