package quality

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// JSAnalyzer scores JavaScript/TypeScript source using a tree-sitter parse.
// Deductions: var declarations, console.log calls, and missing try/catch.
// Source with parse errors scores 0.
type JSAnalyzer struct {
	lang *sitter.Language
}

// NewJSAnalyzer creates a tree-sitter backed JavaScript analyzer.
func NewJSAnalyzer() *JSAnalyzer {
	return &JSAnalyzer{lang: javascript.GetLanguage()}
}

// Score implements Analyzer.
func (a *JSAnalyzer) Score(code string) float64 {
	parser := sitter.NewParser()
	parser.SetLanguage(a.lang)

	src := []byte(code)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		return 0.0
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return 0.0
	}

	score := 1.0
	stats := jsStats{}
	collect(root, src, &stats)

	if stats.varDecls > 0 {
		score -= 0.1
	}
	if stats.consoleLogs > 0 {
		score -= 0.05
	}
	if !stats.hasTryCatch {
		score -= 0.1
	}

	return clamp(score)
}

type jsStats struct {
	varDecls    int
	consoleLogs int
	hasTryCatch bool
}

// collect walks the syntax tree counting quality signals.
func collect(node *sitter.Node, src []byte, stats *jsStats) {
	switch node.Type() {
	case "variable_declaration":
		// tree-sitter uses variable_declaration only for `var`;
		// let/const parse as lexical_declaration
		stats.varDecls++
	case "try_statement":
		stats.hasTryCatch = true
	case "call_expression":
		if node.ChildCount() > 0 {
			callee := node.Child(0).Content(src)
			if strings.HasPrefix(callee, "console.log") || callee == "console.log" {
				stats.consoleLogs++
			}
			// Promise .catch chains also count as error handling
			if strings.HasSuffix(callee, ".catch") {
				stats.hasTryCatch = true
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		collect(node.Child(i), src, stats)
	}
}
