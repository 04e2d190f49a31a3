package analysis

import (
	"go/ast"
	"go/token"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tree is the syntax tree produced by one analysis. It is handed on untouched
// to downstream consumers (rule engines) together with the language identifier.
// Trees backed by tree-sitter hold native memory and must be released with Close.
type Tree struct {
	language string
	source   []byte

	ts *sitter.Tree

	goFile *ast.File
	fset   *token.FileSet
}

// Language returns the identifier of the language the tree was parsed as.
func (t *Tree) Language() string {
	if t == nil {
		return ""
	}
	return t.language
}

// Source returns the source text the tree was built from.
func (t *Tree) Source() []byte {
	if t == nil {
		return nil
	}
	return t.source
}

// RootNode returns the tree-sitter root, or nil for trees not built by tree-sitter.
func (t *Tree) RootNode() *sitter.Node {
	if t == nil || t.ts == nil {
		return nil
	}
	return t.ts.RootNode()
}

// GoFile returns the Go syntax tree and its file set, or nils for other languages.
func (t *Tree) GoFile() (*ast.File, *token.FileSet) {
	if t == nil {
		return nil, nil
	}
	return t.goFile, t.fset
}

// Close releases the native tree. It is safe to call on a nil Tree and more than once.
func (t *Tree) Close() {
	if t == nil || t.ts == nil {
		return
	}
	t.ts.Close()
	t.ts = nil
}
