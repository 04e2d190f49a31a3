package analysis

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

// NewCVisitor returns the C visitor. Named structs and unions with a body are
// reported as classes and #include directives as imports.
func NewCVisitor() Visitor {
	return newTreeSitterVisitor("c", sitter.NewLanguage(c.Language()), cRules{})
}

type cRules struct{}

func (cRules) role(n *sitter.Node, _ []byte) nodeRole {
	switch n.Kind() {
	case "function_definition":
		return roleFunction
	case "struct_specifier", "union_specifier":
		if n.ChildByFieldName("name") != nil && n.ChildByFieldName("body") != nil {
			return roleClass
		}
	case "preproc_include":
		return roleImport
	case "if_statement", "for_statement", "while_statement", "do_statement":
		return roleBranch
	case "case_statement":
		// "default:" has no value.
		if n.ChildByFieldName("value") != nil {
			return roleBranch
		}
	}
	return roleNone
}

func (r cRules) weight(n *sitter.Node, source []byte) int {
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

func (cRules) function(n *sitter.Node, source []byte) FunctionInfo {
	decl := functionDeclarator(n.ChildByFieldName("declarator"))
	if decl == nil {
		return FunctionInfo{}
	}

	args := 0
	for _, p := range findChildrenByType(decl.ChildByFieldName("parameters"), "parameter_declaration") {
		if strings.TrimSpace(extractNodeText(p, source)) == "void" {
			continue
		}
		args++
	}

	return FunctionInfo{
		Name:      fieldText(decl, "declarator", source),
		ArgsCount: args,
	}
}

func (cRules) class(n *sitter.Node, source []byte) ClassInfo {
	return ClassInfo{Name: fieldText(n, "name", source)}
}

func (cRules) imports(n *sitter.Node, source []byte) []string {
	path := fieldText(n, "path", source)
	if path == "" {
		return nil
	}
	return []string{unquote(path)}
}

// functionDeclarator unwraps pointer and parenthesized declarators, as in
// "char *name(void)".
func functionDeclarator(n *sitter.Node) *sitter.Node {
	for n != nil {
		if n.Kind() == "function_declarator" {
			return n
		}
		n = n.ChildByFieldName("declarator")
	}
	return nil
}
