package selfmod

import (
	"fmt"
	"go/parser"
	"go/token"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"codeforge/internal/logging"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:\\w+)?\\n(.*?)```")

// extractCode pulls the first fenced block from an LLM response, or
// returns the response unchanged when there is no fence.
func extractCode(response string) string {
	if m := codeFenceRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(response)
}

// validateModification rejects trivially broken output before it touches
// disk: too short, unchanged, or (for Go) unparseable.
func validateModification(targetFile, original, modified string) error {
	if len(strings.TrimSpace(modified)) < 10 {
		return fmt.Errorf("modified code too short (%d bytes)", len(modified))
	}
	if strings.TrimSpace(modified) == strings.TrimSpace(original) {
		return fmt.Errorf("modification produced no change")
	}

	if filepath.Ext(targetFile) == ".go" {
		fset := token.NewFileSet()
		f, err := parser.ParseFile(fset, filepath.Base(targetFile), modified, parser.ParseComments)
		if err != nil {
			return fmt.Errorf("modified code does not parse: %w", err)
		}

		// Deeper check via the interpreter, only when every import is
		// resolvable from its symbol set (standard library).
		if stdlibOnly(importPaths(fset, modified)) {
			if err := typeCheck(modified); err != nil {
				return fmt.Errorf("modified code does not type-check: %w", err)
			}
		} else {
			logging.SelfModDebug("skipping interpreter check for %s: non-stdlib imports", f.Name.Name)
		}
	}
	return nil
}

// importPaths lists the import paths of a Go source string.
func importPaths(fset *token.FileSet, src string) []string {
	f, err := parser.ParseFile(fset, "mod.go", src, parser.ImportsOnly)
	if err != nil {
		return nil
	}
	paths := make([]string, 0, len(f.Imports))
	for _, imp := range f.Imports {
		paths = append(paths, strings.Trim(imp.Path.Value, `"`))
	}
	return paths
}

// stdlibOnly reports whether every import path has no domain component.
func stdlibOnly(paths []string) bool {
	for _, p := range paths {
		first := p
		if i := strings.Index(p, "/"); i >= 0 {
			first = p[:i]
		}
		if strings.Contains(first, ".") {
			return false
		}
	}
	return true
}

// typeCheck compiles the source in a sandboxed interpreter without
// executing it.
func typeCheck(src string) error {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("interpreter setup failed: %w", err)
	}
	if _, err := i.Compile(src); err != nil {
		return err
	}
	return nil
}
