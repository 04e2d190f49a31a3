package analysis

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// NewJavaScriptVisitor returns the JavaScript visitor. JavaScript (including JSX)
// is parsed with the TSX grammar, which accepts plain JavaScript as a subset.
func NewJavaScriptVisitor() Visitor {
	return newTreeSitterVisitor("javascript", sitter.NewLanguage(typescript.LanguageTSX()), scriptRules{})
}

// NewTypeScriptVisitor returns the TypeScript visitor.
func NewTypeScriptVisitor() Visitor {
	return newTreeSitterVisitor("typescript", sitter.NewLanguage(typescript.LanguageTypescript()), scriptRules{})
}

// scriptRules covers both the TypeScript and TSX grammars, which share node kinds.
type scriptRules struct{}

func (scriptRules) role(n *sitter.Node, _ []byte) nodeRole {
	switch n.Kind() {
	case "function_declaration", "generator_function_declaration", "method_definition":
		return roleFunction
	case "function_expression", "arrow_function", "generator_function":
		if boundDeclarator(n) != nil {
			return roleFunction
		}
	case "class_declaration", "abstract_class_declaration":
		return roleClass
	case "import_statement":
		return roleImport
	case "if_statement", "for_statement", "for_in_statement", "while_statement",
		"do_statement", "switch_case", "try_statement":
		return roleBranch
	}
	return roleNone
}

func (scriptRules) weight(n *sitter.Node, source []byte) int {
	switch n.Kind() {
	case "if_statement", "for_statement", "for_in_statement", "while_statement",
		"do_statement", "switch_case", "try_statement":
		return 1
	case "binary_expression":
		if operatorIn(n, source, "&&", "||", "??") {
			return 1
		}
	}
	return 0
}

func (scriptRules) function(n *sitter.Node, source []byte) FunctionInfo {
	name := fieldText(n, "name", source)
	if decl := boundDeclarator(n); decl != nil {
		name = fieldText(decl, "name", source)
	}

	args := 0
	if single := n.ChildByFieldName("parameter"); single != nil {
		args = 1
	} else {
		for _, p := range namedChildren(n.ChildByFieldName("parameters")) {
			if isRestParameter(p) {
				continue
			}
			args++
		}
	}

	return FunctionInfo{
		Name:       name,
		ArgsCount:  args,
		Decorators: scriptDecorators(n, source),
	}
}

func (scriptRules) class(n *sitter.Node, source []byte) ClassInfo {
	var bases []string
	if heritage := findChildByType(n, "class_heritage"); heritage != nil {
		for _, clause := range namedChildren(heritage) {
			switch clause.Kind() {
			case "extends_clause", "implements_clause":
				for _, t := range namedChildren(clause) {
					if t.Kind() == "type_arguments" {
						continue
					}
					bases = append(bases, strings.TrimSpace(extractNodeText(t, source)))
				}
			default:
				// Plain JavaScript: class_heritage holds the superclass expression directly.
				bases = append(bases, strings.TrimSpace(extractNodeText(clause, source)))
			}
		}
	}

	return ClassInfo{
		Name:        fieldText(n, "name", source),
		BaseClasses: bases,
		Decorators:  scriptDecorators(n, source),
	}
}

func (scriptRules) imports(n *sitter.Node, source []byte) []string {
	if req := findChildByType(n, "import_require_clause"); req != nil {
		return []string{unquote(fieldText(req, "source", source))}
	}

	module := unquote(fieldText(n, "source", source))
	clause := findChildByType(n, "import_clause")
	if clause == nil {
		return []string{module}
	}

	var out []string
	for _, part := range namedChildren(clause) {
		switch part.Kind() {
		case "identifier":
			out = append(out, module+".default")
		case "namespace_import":
			out = append(out, module+".*")
		case "named_imports":
			for _, spec := range findChildrenByType(part, "import_specifier") {
				out = append(out, module+"."+fieldText(spec, "name", source))
			}
		}
	}
	if len(out) == 0 {
		out = append(out, module)
	}
	return out
}

// boundDeclarator returns the variable_declarator a function expression is
// assigned to, as in "const f = () => {}".
func boundDeclarator(n *sitter.Node) *sitter.Node {
	parent := n.Parent()
	if parent == nil || parent.Kind() != "variable_declarator" {
		return nil
	}
	value := parent.ChildByFieldName("value")
	if value == nil || !sameNode(value, n) {
		return nil
	}
	return parent
}

func isRestParameter(p *sitter.Node) bool {
	if p.Kind() == "rest_pattern" {
		return true
	}
	if pattern := p.ChildByFieldName("pattern"); pattern != nil && pattern.Kind() == "rest_pattern" {
		return true
	}
	return false
}

// scriptDecorators collects decorators attached as children (classes) or as
// preceding siblings in a class body (methods).
func scriptDecorators(n *sitter.Node, source []byte) []string {
	nodes := precedingSiblings(n, "decorator")
	nodes = append(nodes, findChildrenByType(n, "decorator")...)
	if parent := n.Parent(); parent != nil && parent.Kind() == "export_statement" {
		nodes = append(findChildrenByType(parent, "decorator"), nodes...)
	}

	var decorators []string
	for _, d := range nodes {
		text := strings.TrimSpace(extractNodeText(d, source))
		decorators = append(decorators, strings.TrimPrefix(text, "@"))
	}
	return decorators
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}
