package analysis

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"strconv"
)

// goVisitor analyzes Go sources with the standard library parser.
// Structs and interfaces are reported as classes and embedded types as their bases.
type goVisitor struct{}

// NewGoVisitor returns the Go visitor.
func NewGoVisitor() Visitor {
	return goVisitor{}
}

func (goVisitor) Language() string { return "go" }

func (goVisitor) Support() Support { return SupportFull }

func (goVisitor) ParseAndAnalyze(source []byte) (*Tree, *CodeFeatures, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "source.go", source, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, nil, goSyntaxError(err)
	}

	acc := newAccumulator()
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			path = imp.Path.Value
		}
		acc.addImports(path)
	}

	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.FuncDecl:
			acc.addFunction(goFunction(node, fset))
		case *ast.TypeSpec:
			if c, ok := goClass(node, fset); ok {
				acc.addClass(c)
			}
		default:
			if isGoBranch(n) {
				acc.addBranch()
			}
		}
		return true
	})

	tree := &Tree{language: "go", source: source, goFile: file, fset: fset}
	return tree, acc.freeze(source), nil
}

func goFunction(decl *ast.FuncDecl, fset *token.FileSet) FunctionInfo {
	start := fset.Position(decl.Pos()).Line
	end := fset.Position(decl.End()).Line

	args := 0
	for _, field := range decl.Type.Params.List {
		if _, variadic := field.Type.(*ast.Ellipsis); variadic {
			continue
		}
		if len(field.Names) == 0 {
			args++
			continue
		}
		args += len(field.Names)
	}

	return FunctionInfo{
		Name:        decl.Name.Name,
		LineStart:   start,
		LineEnd:     end,
		ArgsCount:   args,
		Complexity:  goComplexity(decl),
		LinesOfCode: end - start,
	}
}

func goClass(spec *ast.TypeSpec, fset *token.FileSet) (ClassInfo, bool) {
	var fields *ast.FieldList
	switch t := spec.Type.(type) {
	case *ast.StructType:
		fields = t.Fields
	case *ast.InterfaceType:
		fields = t.Methods
	default:
		return ClassInfo{}, false
	}

	var bases []string
	if fields != nil {
		for _, field := range fields.List {
			if len(field.Names) == 0 {
				bases = append(bases, types.ExprString(field.Type))
			}
		}
	}

	return ClassInfo{
		Name:        spec.Name.Name,
		LineStart:   fset.Position(spec.Pos()).Line,
		LineEnd:     fset.Position(spec.End()).Line,
		BaseClasses: bases,
	}, true
}

// goComplexity scores a function declaration the same way the tree-sitter
// scorer does: one plus every branch and short-circuit operator inside it.
func goComplexity(decl *ast.FuncDecl) int {
	complexity := baseComplexity
	ast.Inspect(decl, func(n ast.Node) bool {
		if isGoBranch(n) {
			complexity++
		}
		if bin, ok := n.(*ast.BinaryExpr); ok && (bin.Op == token.LAND || bin.Op == token.LOR) {
			complexity++
		}
		return true
	})
	return complexity
}

func isGoBranch(n ast.Node) bool {
	switch node := n.(type) {
	case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt:
		return true
	case *ast.CaseClause:
		return node.List != nil
	case *ast.CommClause:
		return node.Comm != nil
	}
	return false
}

func goSyntaxError(err error) *SyntaxError {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		return &SyntaxError{
			Language: "go",
			Line:     first.Pos.Line,
			Column:   first.Pos.Column,
			Message:  first.Msg,
		}
	}
	return &SyntaxError{Language: "go", Message: err.Error()}
}
