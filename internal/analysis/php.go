package analysis

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

// NewPHPVisitor returns the PHP visitor. Sources are expected to open with a
// "<?php" tag; attributes are reported as decorators.
func NewPHPVisitor() Visitor {
	return newTreeSitterVisitor("php", sitter.NewLanguage(php.LanguagePHP()), phpRules{})
}

type phpRules struct{}

func (phpRules) role(n *sitter.Node, _ []byte) nodeRole {
	switch n.Kind() {
	case "function_definition", "method_declaration":
		return roleFunction
	case "class_declaration", "interface_declaration", "trait_declaration", "enum_declaration":
		return roleClass
	case "namespace_use_declaration",
		"require_expression", "require_once_expression", "include_expression", "include_once_expression":
		return roleImport
	case "if_statement", "else_if_clause", "for_statement", "foreach_statement", "while_statement",
		"do_statement", "case_statement", "try_statement":
		return roleBranch
	}
	return roleNone
}

func (r phpRules) weight(n *sitter.Node, source []byte) int {
	if n.Kind() == "binary_expression" {
		if operatorIn(n, source, "&&", "||", "and", "or") {
			return 1
		}
		return 0
	}
	if r.role(n, source) == roleBranch {
		return 1
	}
	return 0
}

func (phpRules) function(n *sitter.Node, source []byte) FunctionInfo {
	args := 0
	for _, p := range namedChildren(n.ChildByFieldName("parameters")) {
		if p.Kind() == "simple_parameter" || p.Kind() == "property_promotion_parameter" {
			args++
		}
	}
	return FunctionInfo{
		Name:       fieldText(n, "name", source),
		ArgsCount:  args,
		Decorators: phpAttributes(n, source),
	}
}

func (phpRules) class(n *sitter.Node, source []byte) ClassInfo {
	var bases []string
	for _, kind := range []string{"base_clause", "class_interface_clause"} {
		clause := findChildByType(n, kind)
		for _, name := range namedChildren(clause) {
			bases = append(bases, strings.TrimSpace(extractNodeText(name, source)))
		}
	}
	return ClassInfo{
		Name:        fieldText(n, "name", source),
		BaseClasses: bases,
		Decorators:  phpAttributes(n, source),
	}
}

func (phpRules) imports(n *sitter.Node, source []byte) []string {
	if n.Kind() != "namespace_use_declaration" {
		// require/include: the operand, unquoted when it is a literal.
		operand := namedChildren(n)
		if len(operand) == 0 {
			return nil
		}
		return []string{phpStringValue(operand[0], source)}
	}

	prefix := ""
	if group := findChildByType(n, "namespace_use_group"); group != nil {
		if ns := findChildByType(n, "namespace_name"); ns != nil {
			prefix = strings.TrimSpace(extractNodeText(ns, source))
		}
	}

	var out []string
	walkTree(n, func(child *sitter.Node) bool {
		switch child.Kind() {
		case "namespace_use_clause", "namespace_use_group_clause":
			name := phpUseClauseName(child, source)
			if prefix != "" {
				name = prefix + `\` + strings.TrimPrefix(name, `\`)
			}
			out = append(out, name)
			return false
		}
		return true
	})
	return out
}

// phpUseClauseName renders the imported name of a use clause without its alias.
func phpUseClauseName(n *sitter.Node, source []byte) string {
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "qualified_name", "namespace_name", "name":
			return strings.TrimSpace(extractNodeText(child, source))
		}
	}
	return strings.TrimSpace(extractNodeText(n, source))
}

func phpStringValue(n *sitter.Node, source []byte) string {
	switch n.Kind() {
	case "string", "encapsed_string":
		if content := findChildByType(n, "string_content"); content != nil {
			return extractNodeText(content, source)
		}
		return unquote(extractNodeText(n, source))
	case "parenthesized_expression":
		if inner := namedChildren(n); len(inner) == 1 {
			return phpStringValue(inner[0], source)
		}
	}
	return strings.TrimSpace(extractNodeText(n, source))
}

// phpAttributes renders each #[...] attribute on a declaration.
func phpAttributes(n *sitter.Node, source []byte) []string {
	list := findChildByType(n, "attribute_list")
	if list == nil {
		return nil
	}

	var out []string
	walkTree(list, func(child *sitter.Node) bool {
		if child.Kind() == "attribute" {
			out = append(out, strings.TrimSpace(extractNodeText(child, source)))
			return false
		}
		return true
	})
	return out
}
