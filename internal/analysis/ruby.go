package analysis

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

// NewRubyVisitor returns the Ruby visitor. Classes and modules are both
// reported as classes; require-style calls are reported as imports.
func NewRubyVisitor() Visitor {
	return newTreeSitterVisitor("ruby", sitter.NewLanguage(ruby.Language()), rubyRules{})
}

type rubyRules struct{}

var rubyLoadMethods = map[string]bool{
	"require":          true,
	"require_relative": true,
	"load":             true,
}

// Keyword tokens such as "if" share kind names with these nodes; only named
// nodes reach role and weight.
var rubyBranchKinds = map[string]bool{
	"if":              true,
	"unless":          true,
	"elsif":           true,
	"if_modifier":     true,
	"unless_modifier": true,
	"while":           true,
	"until":           true,
	"while_modifier":  true,
	"until_modifier":  true,
	"for":             true,
	"when":            true,
	"rescue":          true,
}

func (rubyRules) role(n *sitter.Node, source []byte) nodeRole {
	kind := n.Kind()
	switch {
	case kind == "method" || kind == "singleton_method":
		return roleFunction
	case kind == "class" || kind == "module":
		return roleClass
	case kind == "call" && rubyRequireTarget(n, source) != "":
		return roleImport
	case rubyBranchKinds[kind]:
		return roleBranch
	}
	return roleNone
}

func (rubyRules) weight(n *sitter.Node, source []byte) int {
	if rubyBranchKinds[n.Kind()] {
		return 1
	}
	if n.Kind() == "binary" && operatorIn(n, source, "&&", "||", "and", "or") {
		return 1
	}
	return 0
}

func (rubyRules) function(n *sitter.Node, source []byte) FunctionInfo {
	args := 0
	for _, p := range namedChildren(n.ChildByFieldName("parameters")) {
		if p.Kind() == "identifier" || p.Kind() == "optional_parameter" {
			args++
		}
	}
	return FunctionInfo{
		Name:      fieldText(n, "name", source),
		ArgsCount: args,
	}
}

func (rubyRules) class(n *sitter.Node, source []byte) ClassInfo {
	var bases []string
	if super := n.ChildByFieldName("superclass"); super != nil {
		text := strings.TrimSpace(extractNodeText(super, source))
		bases = append(bases, strings.TrimSpace(strings.TrimPrefix(text, "<")))
	}
	return ClassInfo{
		Name:        fieldText(n, "name", source),
		BaseClasses: bases,
	}
}

func (rubyRules) imports(n *sitter.Node, source []byte) []string {
	if target := rubyRequireTarget(n, source); target != "" {
		return []string{target}
	}
	return nil
}

// rubyRequireTarget returns the string argument of a receiverless require,
// require_relative or load call, or "" for any other call.
func rubyRequireTarget(n *sitter.Node, source []byte) string {
	if n.ChildByFieldName("receiver") != nil {
		return ""
	}
	if !rubyLoadMethods[fieldText(n, "method", source)] {
		return ""
	}

	args := n.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for _, arg := range namedChildren(args) {
		if arg.Kind() != "string" {
			return ""
		}
		if content := findChildByType(arg, "string_content"); content != nil {
			return extractNodeText(content, source)
		}
		return unquote(extractNodeText(arg, source))
	}
	return ""
}
