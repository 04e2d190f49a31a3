package analysis

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// NewPythonVisitor returns the reference visitor for Python sources.
func NewPythonVisitor() Visitor {
	return newTreeSitterVisitor("python", sitter.NewLanguage(python.Language()), pythonRules{})
}

type pythonRules struct{}

func (pythonRules) role(n *sitter.Node, _ []byte) nodeRole {
	switch n.Kind() {
	case "function_definition":
		return roleFunction
	case "class_definition":
		return roleClass
	case "import_statement", "import_from_statement", "future_import_statement":
		return roleImport
	case "if_statement", "elif_clause", "for_statement", "while_statement", "try_statement":
		return roleBranch
	}
	return roleNone
}

// reject refuses the Python 2 statements the grammar still parses.
func (pythonRules) reject(n *sitter.Node) string {
	switch n.Kind() {
	case "print_statement":
		return "Missing parentheses in call to 'print'"
	case "exec_statement":
		return "Missing parentheses in call to 'exec'"
	}
	return ""
}

func (pythonRules) weight(n *sitter.Node, _ []byte) int {
	switch n.Kind() {
	case "if_statement", "elif_clause", "for_statement", "while_statement", "try_statement", "with_statement":
		return 1
	case "boolean_operator":
		return 1
	}
	return 0
}

func (pythonRules) function(n *sitter.Node, source []byte) FunctionInfo {
	return FunctionInfo{
		Name:       fieldText(n, "name", source),
		ArgsCount:  pythonArgsCount(n.ChildByFieldName("parameters")),
		Decorators: pythonDecorators(n, source),
	}
}

func (pythonRules) class(n *sitter.Node, source []byte) ClassInfo {
	var bases []string
	if args := n.ChildByFieldName("superclasses"); args != nil {
		for _, arg := range namedChildren(args) {
			if arg.Kind() == "keyword_argument" || arg.Kind() == "dictionary_splat" {
				continue
			}
			bases = append(bases, strings.TrimSpace(extractNodeText(arg, source)))
		}
	}

	return ClassInfo{
		Name:        fieldText(n, "name", source),
		BaseClasses: bases,
		Decorators:  pythonDecorators(n, source),
	}
}

func (pythonRules) imports(n *sitter.Node, source []byte) []string {
	switch n.Kind() {
	case "import_statement":
		var out []string
		for _, name := range namedChildren(n) {
			out = append(out, pythonImportedName(name, source))
		}
		return out

	case "future_import_statement":
		var out []string
		for _, name := range namedChildren(n) {
			out = append(out, "__future__."+pythonImportedName(name, source))
		}
		return out

	case "import_from_statement":
		moduleNode := n.ChildByFieldName("module_name")
		module := pythonModuleName(moduleNode, source)

		var out []string
		for _, name := range namedChildren(n) {
			if moduleNode != nil && name.StartByte() == moduleNode.StartByte() {
				continue
			}
			imported := "*"
			if name.Kind() != "wildcard_import" {
				imported = pythonImportedName(name, source)
			}
			out = append(out, module+"."+imported)
		}
		return out
	}
	return nil
}

// pythonImportedName renders a dotted_name or aliased_import without its alias.
func pythonImportedName(n *sitter.Node, source []byte) string {
	if n.Kind() == "aliased_import" {
		return fieldText(n, "name", source)
	}
	return strings.TrimSpace(extractNodeText(n, source))
}

// pythonModuleName strips the relative-import dots: "from .pkg import x"
// names module "pkg" and "from . import x" names none.
func pythonModuleName(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	if n.Kind() == "relative_import" {
		if dotted := findChildByType(n, "dotted_name"); dotted != nil {
			return extractNodeText(dotted, source)
		}
		return ""
	}
	return strings.TrimSpace(extractNodeText(n, source))
}

// pythonArgsCount counts positional-or-keyword parameters. Position-only
// parameters before "/" are dropped; counting stops at "*" or *args.
func pythonArgsCount(params *sitter.Node) int {
	count := 0
	for _, p := range namedChildren(params) {
		switch p.Kind() {
		case "positional_separator":
			count = 0
		case "keyword_separator", "list_splat_pattern", "dictionary_splat_pattern":
			return count
		case "typed_parameter":
			if findChildByType(p, "list_splat_pattern") != nil || findChildByType(p, "dictionary_splat_pattern") != nil {
				return count
			}
			count++
		default:
			count++
		}
	}
	return count
}

// pythonDecorators renders the decorators of an enclosing decorated_definition.
func pythonDecorators(n *sitter.Node, source []byte) []string {
	parent := n.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return nil
	}

	var decorators []string
	for _, d := range findChildrenByType(parent, "decorator") {
		text := strings.TrimSpace(extractNodeText(d, source))
		decorators = append(decorators, strings.TrimSpace(strings.TrimPrefix(text, "@")))
	}
	return decorators
}
