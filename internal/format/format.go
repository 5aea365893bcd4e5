// Package format normalizes generated code per language.
// Go source goes through goimports, then gofmt as a fallback, then is
// returned unchanged if both fail. Other languages pass through.
package format

import (
	"go/format"

	"golang.org/x/tools/imports"

	"codeforge/internal/logging"
)

// Formatter formats source code for one language.
type Formatter interface {
	Format(code string) string
}

// Registry maps language identifiers to formatters.
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry returns a registry with the built-in formatters.
func NewRegistry() *Registry {
	return &Registry{
		formatters: map[string]Formatter{
			"go": &GoFormatter{},
		},
	}
}

// Format formats code in the given language. Languages without a
// formatter pass through unchanged.
func (r *Registry) Format(language, code string) string {
	f, ok := r.formatters[language]
	if !ok {
		return code
	}
	return f.Format(code)
}

// GoFormatter formats Go source.
type GoFormatter struct{}

// Format runs goimports, falling back to gofmt, falling back to the input.
func (f *GoFormatter) Format(code string) string {
	src := []byte(code)

	out, err := imports.Process("generated.go", src, nil)
	if err == nil {
		return string(out)
	}
	logging.Get(logging.CategoryFormat).Debug("goimports failed, trying gofmt: %v", err)

	out, err = format.Source(src)
	if err == nil {
		return string(out)
	}
	logging.Get(logging.CategoryFormat).Debug("gofmt failed, returning unformatted: %v", err)

	return code
}
