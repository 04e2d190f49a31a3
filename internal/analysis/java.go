package analysis

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// NewJavaVisitor returns the Java visitor. Annotations are reported as decorators.
func NewJavaVisitor() Visitor {
	return newTreeSitterVisitor("java", sitter.NewLanguage(java.Language()), javaRules{})
}

type javaRules struct{}

func (javaRules) role(n *sitter.Node, source []byte) nodeRole {
	switch n.Kind() {
	case "method_declaration", "constructor_declaration":
		return roleFunction
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		return roleClass
	case "import_declaration":
		return roleImport
	case "if_statement", "for_statement", "enhanced_for_statement", "while_statement",
		"do_statement", "try_statement", "try_with_resources_statement":
		return roleBranch
	case "switch_label":
		if !isDefaultLabel(n, source) {
			return roleBranch
		}
	}
	return roleNone
}

func (r javaRules) weight(n *sitter.Node, source []byte) int {
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

func (javaRules) function(n *sitter.Node, source []byte) FunctionInfo {
	args := len(findChildrenByType(n.ChildByFieldName("parameters"), "formal_parameter"))
	return FunctionInfo{
		Name:       fieldText(n, "name", source),
		ArgsCount:  args,
		Decorators: javaAnnotations(n, source),
	}
}

func (javaRules) class(n *sitter.Node, source []byte) ClassInfo {
	var bases []string
	if super := n.ChildByFieldName("superclass"); super != nil {
		for _, t := range namedChildren(super) {
			bases = append(bases, strings.TrimSpace(extractNodeText(t, source)))
		}
	}

	// Implemented interfaces for classes, enums and records; extended ones for interfaces.
	for _, kind := range []string{"super_interfaces", "extends_interfaces"} {
		clause := findChildByType(n, kind)
		if clause == nil {
			continue
		}
		if list := findChildByType(clause, "type_list"); list != nil {
			for _, t := range namedChildren(list) {
				bases = append(bases, strings.TrimSpace(extractNodeText(t, source)))
			}
		}
	}

	return ClassInfo{
		Name:        fieldText(n, "name", source),
		BaseClasses: bases,
		Decorators:  javaAnnotations(n, source),
	}
}

func (javaRules) imports(n *sitter.Node, source []byte) []string {
	var path string
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "scoped_identifier", "identifier":
			path = extractNodeText(child, source)
		case "asterisk":
			path += ".*"
		}
	}
	if path == "" {
		return nil
	}
	return []string{path}
}

func javaAnnotations(n *sitter.Node, source []byte) []string {
	modifiers := findChildByType(n, "modifiers")
	if modifiers == nil {
		return nil
	}

	var out []string
	for _, m := range namedChildren(modifiers) {
		if m.Kind() == "marker_annotation" || m.Kind() == "annotation" {
			out = append(out, strings.TrimPrefix(strings.TrimSpace(extractNodeText(m, source)), "@"))
		}
	}
	return out
}

func isDefaultLabel(n *sitter.Node, source []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(extractNodeText(n, source)), "default")
}
