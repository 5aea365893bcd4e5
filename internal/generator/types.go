// Package generator implements the CodeForge code generation engine:
// LLM-backed generation with a solution pre-check, template fallback,
// quality scoring, and a persistent generation cache.
package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
)

// CodeType enumerates generation task kinds.
type CodeType string

const (
	TypeFunction         CodeType = "function"
	TypeStruct           CodeType = "struct"
	TypeModule           CodeType = "module"
	TypeScript           CodeType = "script"
	TypeTest             CodeType = "test"
	TypeRefactor         CodeType = "refactor"
	TypeOptimization     CodeType = "optimization"
	TypeDocumentation    CodeType = "documentation"
	TypeSelfModification CodeType = "self_modification"
)

// Language enumerates supported target languages.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangCPP        Language = "cpp"
	LangShell      Language = "shell"
)

// ErrNoTemplate is returned when neither an LLM client nor a matching
// template can serve a request.
var ErrNoTemplate = errors.New("no template for request")

// Request describes a code generation task.
type Request struct {
	Description  string
	Type         CodeType
	Language     Language
	Requirements []string
	Constraints  []string
	Examples     []string
	Context      map[string]string
}

// Hash returns a stable key for caching this request. Every field that
// influences the generation prompt participates.
func (r Request) Hash() string {
	h := sha256.New()
	h.Write([]byte(r.Description))
	h.Write([]byte(r.Type))
	h.Write([]byte(r.Language))
	h.Write([]byte(strings.Join(r.Requirements, "\n")))
	h.Write([]byte(strings.Join(r.Constraints, "\n")))
	h.Write([]byte(strings.Join(r.Examples, "\n")))

	keys := make([]string, 0, len(r.Context))
	for k := range r.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte(r.Context[k]))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Generated is the result of one generation.
type Generated struct {
	ID            string
	Code          string
	Language      Language
	Description   string
	Tests         string
	Documentation string
	QualityScore  float64
	FromCache     bool
	UsedLibrary   string // set when the solution pre-check produced library-usage code
}
