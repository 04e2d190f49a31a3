package analysis

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// baseComplexity is charged to every function, so a function without branches scores 1.
const baseComplexity = 1

// weightFunc is the complexity a single node contributes to its enclosing function.
type weightFunc func(n *sitter.Node, source []byte) int

// scoreNode computes the cyclomatic complexity of a function node: the base
// complexity plus the weight of every named descendant. The scan is not scoped
// to the immediate body, so nested functions and classes count toward their
// parent too.
func scoreNode(fn *sitter.Node, source []byte, weight weightFunc) int {
	complexity := baseComplexity
	walkTree(fn, func(n *sitter.Node) bool {
		if n.IsNamed() {
			complexity += weight(n, source)
		}
		return true
	})
	return complexity
}
