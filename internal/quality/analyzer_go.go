package quality

import (
	"go/ast"
	"go/parser"
	"go/token"
)

// GoAnalyzer scores Go source by walking its AST.
// Deductions: undocumented exported declarations, missing error checks in
// non-trivial code, and no declared results in longer snippets. Code that
// fails to parse scores 0.
type GoAnalyzer struct{}

// Score implements Analyzer.
func (a *GoAnalyzer) Score(code string) float64 {
	score := 1.0

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "generated.go", code, parser.ParseComments)
	if err != nil {
		// Generated snippets often omit the package clause.
		file, err = parser.ParseFile(fset, "generated.go", "package generated\n\n"+code, parser.ParseComments)
		if err != nil {
			return 0.0
		}
	}

	hasErrCheck := false
	hasResults := false

	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.FuncDecl:
			if node.Name.IsExported() && node.Doc == nil {
				score -= 0.1
			}
			if node.Type.Results != nil && len(node.Type.Results.List) > 0 {
				hasResults = true
			}
		case *ast.GenDecl:
			for _, spec := range node.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				if ts.Name.IsExported() && node.Doc == nil && ts.Doc == nil {
					score -= 0.1
				}
			}
		case *ast.BinaryExpr:
			// err != nil comparisons count as error handling
			if node.Op == token.NEQ {
				if ident, ok := node.Y.(*ast.Ident); ok && ident.Name == "nil" {
					hasErrCheck = true
				}
			}
		}
		return true
	})

	if !hasErrCheck && len(code) > 100 {
		score -= 0.1
	}
	if !hasResults && len(code) > 50 {
		score -= 0.05
	}

	return clamp(score)
}
