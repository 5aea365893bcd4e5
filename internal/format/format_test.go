package format

import (
	"strings"
	"testing"
)

func TestRegistryPassthroughForUnknownLanguage(t *testing.T) {
	r := NewRegistry()

	code := "def add(a, b):\n    return a+b"
	if got := r.Format("python", code); got != code {
		t.Errorf("python should pass through, got %q", got)
	}
}

func TestGoFormatterNormalizesWhitespace(t *testing.T) {
	r := NewRegistry()

	got := r.Format("go", "package demo\nfunc   Add(a,b int)int{return a+b}")
	if !strings.Contains(got, "func Add(a, b int) int { return a + b }") {
		t.Errorf("unexpected formatting:\n%s", got)
	}
}

func TestGoFormatterAddsImports(t *testing.T) {
	r := NewRegistry()

	code := `package demo

func Greet() {
	fmt.Println("hello")
}
`
	got := r.Format("go", code)
	if !strings.Contains(got, `import "fmt"`) {
		t.Errorf("goimports should add the fmt import:\n%s", got)
	}
}

func TestGoFormatterInvalidInputUnchanged(t *testing.T) {
	r := NewRegistry()

	code := "func {{{"
	if got := r.Format("go", code); got != code {
		t.Errorf("unparseable code must pass through, got %q", got)
	}
}

func TestGoFormatterFragment(t *testing.T) {
	r := NewRegistry()

	// Snippets without a package clause still get gofmt treatment.
	got := r.Format("go", "func  Add(a,b int)int{ return a+b }")
	if !strings.Contains(got, "func Add(a, b int) int") {
		t.Errorf("fragment not formatted:\n%s", got)
	}
}
