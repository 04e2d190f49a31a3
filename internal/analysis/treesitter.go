package analysis

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeRole is what a syntax node means to the feature walk.
type nodeRole int

const (
	roleNone nodeRole = iota
	roleFunction
	roleClass
	roleImport
	roleBranch
)

// grammarRules maps the node kinds of one tree-sitter grammar onto the feature model.
type grammarRules interface {
	// role classifies a named node. Unknown kinds return roleNone and are only recursed into.
	role(n *sitter.Node, source []byte) nodeRole

	// function describes a roleFunction node: name, argument count and decorators.
	function(n *sitter.Node, source []byte) FunctionInfo

	// class describes a roleClass node: name, base classes and decorators.
	class(n *sitter.Node, source []byte) ClassInfo

	// imports renders a roleImport node, one entry per imported name.
	imports(n *sitter.Node, source []byte) []string

	// weight is the complexity a descendant adds to the function that contains it.
	weight(n *sitter.Node, source []byte) int
}

// rejectingRules is implemented by grammars that parse constructs the
// language itself no longer accepts. reject returns the error message for
// such a node, or "".
type rejectingRules interface {
	reject(n *sitter.Node) string
}

// treeSitterVisitor is the shared Visitor for every grammar-backed language.
type treeSitterVisitor struct {
	lang     string
	language *sitter.Language
	rules    grammarRules
}

func newTreeSitterVisitor(lang string, language *sitter.Language, rules grammarRules) *treeSitterVisitor {
	return &treeSitterVisitor{
		lang:     lang,
		language: language,
		rules:    rules,
	}
}

func (v *treeSitterVisitor) Language() string { return v.lang }

func (v *treeSitterVisitor) Support() Support { return SupportFull }

// ParseAndAnalyze parses source and walks the tree once.
func (v *treeSitterVisitor) ParseAndAnalyze(source []byte) (*Tree, *CodeFeatures, error) {
	tree, err := buildTree(v.lang, v.language, source)
	if err != nil {
		return nil, nil, err
	}
	if r, ok := v.rules.(rejectingRules); ok {
		if serr := firstRejected(tree.RootNode(), r); serr != nil {
			serr.Language = v.lang
			tree.Close()
			return nil, nil, serr
		}
	}

	acc := newAccumulator()
	v.visit(tree.RootNode(), source, acc)

	return &Tree{language: v.lang, source: source, ts: tree}, acc.freeze(source), nil
}

// visit walks depth-first, recursing into every node including function and class bodies.
func (v *treeSitterVisitor) visit(root *sitter.Node, source []byte, acc *accumulator) {
	walkTree(root, func(n *sitter.Node) bool {
		if !n.IsNamed() {
			return true
		}

		switch v.rules.role(n, source) {
		case roleFunction:
			fn := v.rules.function(n, source)
			fn.LineStart, fn.LineEnd = lineSpan(n)
			fn.LinesOfCode = fn.LineEnd - fn.LineStart
			fn.Complexity = scoreNode(n, source, v.rules.weight)
			acc.addFunction(fn)
		case roleClass:
			c := v.rules.class(n, source)
			c.LineStart, c.LineEnd = lineSpan(n)
			acc.addClass(c)
		case roleImport:
			acc.addImports(v.rules.imports(n, source)...)
		case roleBranch:
			acc.addBranch()
		default:
			// Unclassified nodes only contribute through their children.
		}
		return true
	})
}

// buildTree parses source with a fresh parser. Parsers are cheap and not safe
// for concurrent use, so none is kept between calls.
func buildTree(lang string, language *sitter.Language, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to load %s grammar: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &SyntaxError{Language: lang, Message: "parser produced no tree"}
	}

	root := tree.RootNode()
	if root.HasError() {
		serr := firstSyntaxError(root, source)
		serr.Language = lang
		tree.Close()
		return nil, serr
	}

	return tree, nil
}

// firstSyntaxError locates the first ERROR or MISSING node in document order.
func firstSyntaxError(root *sitter.Node, source []byte) *SyntaxError {
	var bad *sitter.Node
	walkTree(root, func(n *sitter.Node) bool {
		if bad != nil {
			return false
		}
		if n.IsError() || n.IsMissing() {
			bad = n
			return false
		}
		return n.HasError()
	})

	if bad == nil {
		pos := root.StartPosition()
		return &SyntaxError{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1, Message: "invalid syntax"}
	}

	pos := bad.StartPosition()
	serr := &SyntaxError{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1}
	switch {
	case bad.IsMissing():
		serr.Message = fmt.Sprintf("missing %q", bad.Kind())
	default:
		if snippet := errorSnippet(extractNodeText(bad, source)); snippet != "" {
			serr.Message = fmt.Sprintf("unexpected %q", snippet)
		} else {
			serr.Message = "invalid syntax"
		}
	}
	return serr
}

// firstRejected finds the first node, in document order, that r rejects.
func firstRejected(root *sitter.Node, r rejectingRules) *SyntaxError {
	var serr *SyntaxError
	walkTree(root, func(n *sitter.Node) bool {
		if serr != nil {
			return false
		}
		if msg := r.reject(n); msg != "" {
			pos := n.StartPosition()
			serr = &SyntaxError{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1, Message: msg}
			return false
		}
		return true
	})
	return serr
}

const maxSnippetLen = 20

func errorSnippet(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if len(text) > maxSnippetLen {
		text = text[:maxSnippetLen]
	}
	return text
}

// lineSpan returns the 1-based inclusive line range of a node. Trailing
// comments do not extend the range, and a node ending at column 0 ends on the
// previous line.
func lineSpan(n *sitter.Node) (start, end int) {
	s := n.StartPosition()
	e := lastContent(n).EndPosition()
	start = int(s.Row) + 1
	end = int(e.Row) + 1
	if e.Column == 0 && e.Row > s.Row {
		end--
	}
	return start, end
}

// lastContent returns the last leaf of n that is not inside a comment.
// Some grammars (Python) attach comments after the final statement to the block.
func lastContent(n *sitter.Node) *sitter.Node {
	for n.ChildCount() > 0 {
		var last *sitter.Node
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			child := n.Child(uint(i))
			if child != nil && !isComment(child) {
				last = child
				break
			}
		}
		if last == nil {
			return n
		}
		n = last
	}
	return n
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// fieldText returns the trimmed text of the named field, or "".
func fieldText(node *sitter.Node, field string, source []byte) string {
	return strings.TrimSpace(extractNodeText(node.ChildByFieldName(field), source))
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
// Returning false from the visitor skips the node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all child nodes with the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == nodeType {
			results = append(results, child)
		}
	}
	return results
}

// namedChildren returns the named children of node, skipping comments.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}

	children := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || isComment(child) {
			continue
		}
		children = append(children, child)
	}
	return children
}

// precedingSiblings returns the contiguous run of siblings of the given kind
// immediately before node, in source order. Comments between them are skipped.
func precedingSiblings(node *sitter.Node, kind string) []*sitter.Node {
	var found []*sitter.Node
	for s := node.PrevSibling(); s != nil; s = s.PrevSibling() {
		if isComment(s) {
			continue
		}
		if s.Kind() != kind {
			break
		}
		found = append(found, s)
	}

	for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
		found[i], found[j] = found[j], found[i]
	}
	return found
}

func isComment(n *sitter.Node) bool {
	switch n.Kind() {
	case "comment", "line_comment", "block_comment":
		return true
	}
	return false
}

// unquote strips one layer of matching string delimiters.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return s[1 : len(s)-1]
		}
		if first == '<' && last == '>' {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// operatorIn reports whether the node's operator field is one of ops.
func operatorIn(n *sitter.Node, source []byte, ops ...string) bool {
	op := fieldText(n, "operator", source)
	for _, candidate := range ops {
		if op == candidate {
			return true
		}
	}
	return false
}
