package analysis

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// NewRustVisitor returns the Rust visitor. Structs, enums, unions and traits
// are reported as classes; outer attributes as decorators.
func NewRustVisitor() Visitor {
	return newTreeSitterVisitor("rust", sitter.NewLanguage(rust.Language()), rustRules{})
}

type rustRules struct{}

func (rustRules) role(n *sitter.Node, source []byte) nodeRole {
	switch n.Kind() {
	case "function_item":
		return roleFunction
	case "struct_item", "enum_item", "union_item", "trait_item":
		return roleClass
	case "use_declaration", "extern_crate_declaration":
		return roleImport
	case "if_expression", "for_expression", "while_expression", "loop_expression":
		return roleBranch
	case "match_arm":
		if !isWildcardArm(n, source) {
			return roleBranch
		}
	}
	return roleNone
}

func (r rustRules) weight(n *sitter.Node, source []byte) int {
	if n.Kind() == "binary_expression" {
		if operatorIn(n, source, "&&", "||") {
			return 1
		}
		return 0
	}
	if r.role(n, source) == roleBranch {
		return 1
	}
	return 0
}

func (rustRules) function(n *sitter.Node, source []byte) FunctionInfo {
	args := 0
	for _, p := range namedChildren(n.ChildByFieldName("parameters")) {
		if p.Kind() == "parameter" || p.Kind() == "self_parameter" {
			args++
		}
	}
	return FunctionInfo{
		Name:       fieldText(n, "name", source),
		ArgsCount:  args,
		Decorators: rustAttributes(n, source),
	}
}

func (rustRules) class(n *sitter.Node, source []byte) ClassInfo {
	var bases []string
	if n.Kind() == "trait_item" {
		for _, b := range namedChildren(n.ChildByFieldName("bounds")) {
			bases = append(bases, strings.TrimSpace(extractNodeText(b, source)))
		}
	}
	return ClassInfo{
		Name:        fieldText(n, "name", source),
		BaseClasses: bases,
		Decorators:  rustAttributes(n, source),
	}
}

func (rustRules) imports(n *sitter.Node, source []byte) []string {
	if n.Kind() == "extern_crate_declaration" {
		return []string{fieldText(n, "name", source)}
	}
	return expandUseTree(n.ChildByFieldName("argument"), "", source)
}

// expandUseTree flattens a use tree into one "::" path per leaf.
func expandUseTree(n *sitter.Node, prefix string, source []byte) []string {
	if n == nil {
		return nil
	}

	switch n.Kind() {
	case "use_as_clause":
		return expandUseTree(n.ChildByFieldName("path"), prefix, source)
	case "use_list":
		var out []string
		for _, item := range namedChildren(n) {
			out = append(out, expandUseTree(item, prefix, source)...)
		}
		return out
	case "scoped_use_list":
		if path := n.ChildByFieldName("path"); path != nil {
			prefix = joinRustPath(prefix, extractNodeText(path, source))
		}
		return expandUseTree(n.ChildByFieldName("list"), prefix, source)
	default:
		return []string{joinRustPath(prefix, strings.TrimSpace(extractNodeText(n, source)))}
	}
}

func joinRustPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "::" + name
}

// rustAttributes renders the outer attributes directly above an item.
func rustAttributes(n *sitter.Node, source []byte) []string {
	var out []string
	for _, item := range precedingSiblings(n, "attribute_item") {
		if attr := findChildByType(item, "attribute"); attr != nil {
			out = append(out, strings.TrimSpace(extractNodeText(attr, source)))
		}
	}
	return out
}

func isWildcardArm(n *sitter.Node, source []byte) bool {
	return fieldText(n, "pattern", source) == "_"
}
