package generator

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"

	"codeforge/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// go.opencensus.io starts a background worker in package init,
		// before any test runs; it is not a leak from this package.
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

// testConfig returns a config with the solution check disabled so the
// generation path under test is deterministic.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Generation.SolutionCheck = false
	return cfg
}

func TestGenerateTemplateFallback(t *testing.T) {
	g := New(nil, testConfig())

	result, err := g.Generate(context.Background(), Request{
		Description: "reverse a string",
		Type:        TypeFunction,
		Language:    LangGo,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(result.Code, "func ReverseAString() error") {
		t.Errorf("expected rendered go_function template, got:\n%s", result.Code)
	}
	if result.ID == "" {
		t.Error("expected a generated ID")
	}
}

func TestGenerateTemplateFallbackUnknownType(t *testing.T) {
	g := New(nil, testConfig())

	result, err := g.Generate(context.Background(), Request{
		Description: "deployment script",
		Type:        TypeScript,
		Language:    LangShell,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(result.Code, "TODO: implement deployment script") {
		t.Errorf("expected stub for missing template, got:\n%s", result.Code)
	}
}

func TestGenerateWithLLM(t *testing.T) {
	client := &MockLLMClient{
		CompleteWithSystemFunc: func(ctx context.Context, sys, user string) (string, error) {
			return "Here is the code:\n```go\n// Add returns the sum of two ints.\nfunc Add(a, b int) int {\n\treturn a + b\n}\n```", nil
		},
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "tests") {
				return "```go\nfunc TestAdd(t *testing.T) {}\n```", nil
			}
			return "## Add\n\nAdds two integers.", nil
		},
	}

	g := New(client, testConfig())
	result, err := g.Generate(context.Background(), Request{
		Description: "add two integers",
		Type:        TypeFunction,
		Language:    LangGo,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.Contains(result.Code, "func Add(a, b int) int") {
		t.Errorf("code not extracted from response:\n%s", result.Code)
	}
	if strings.Contains(result.Code, "Here is the code") {
		t.Errorf("prose leaked into code:\n%s", result.Code)
	}
	if !strings.Contains(result.Tests, "TestAdd") {
		t.Errorf("expected generated tests, got: %q", result.Tests)
	}
	if result.Documentation == "" {
		t.Error("expected generated documentation")
	}
	if result.QualityScore <= 0 {
		t.Errorf("expected positive quality score, got %f", result.QualityScore)
	}
}

func TestGenerateSkipsTestsForTestRequests(t *testing.T) {
	var testPrompts atomic.Int32
	client := &MockLLMClient{
		CompleteWithSystemFunc: func(ctx context.Context, sys, user string) (string, error) {
			return "```go\nfunc TestThing(t *testing.T) {}\n```", nil
		},
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "unit tests") {
				testPrompts.Add(1)
			}
			return "docs", nil
		},
	}

	g := New(client, testConfig())
	result, err := g.Generate(context.Background(), Request{
		Description: "test for the Add function",
		Type:        TypeTest,
		Language:    LangGo,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Tests != "" {
		t.Errorf("tests should not be generated for a test request, got %q", result.Tests)
	}
	if n := testPrompts.Load(); n != 0 {
		t.Errorf("expected no test prompt, saw %d", n)
	}
}

func TestGenerateUsesMemoryCache(t *testing.T) {
	var calls atomic.Int32
	client := &MockLLMClient{
		CompleteWithSystemFunc: func(ctx context.Context, sys, user string) (string, error) {
			calls.Add(1)
			return "```go\nfunc Cached() {}\n```", nil
		},
	}

	g := New(client, testConfig())
	req := Request{Description: "cached thing", Type: TypeFunction, Language: LangGo}

	first, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	second, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("expected 1 LLM generation call, got %d", calls.Load())
	}
	if first != second {
		t.Error("expected the cached result to be returned")
	}
}

func TestGenerateCacheDisabled(t *testing.T) {
	var calls atomic.Int32
	client := &MockLLMClient{
		CompleteWithSystemFunc: func(ctx context.Context, sys, user string) (string, error) {
			calls.Add(1)
			return "```go\nfunc Uncached() {}\n```", nil
		},
	}

	cfg := testConfig()
	cfg.Generation.CacheEnabled = false
	g := New(client, cfg)
	req := Request{Description: "uncached thing", Type: TypeFunction, Language: LangGo}

	for i := 0; i < 2; i++ {
		if _, err := g.Generate(context.Background(), req); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 LLM calls with cache disabled, got %d", calls.Load())
	}
}

func TestGeneratePrefersKnownLibrary(t *testing.T) {
	cfg := config.DefaultConfig()
	g := New(nil, cfg)

	result, err := g.Generate(context.Background(), Request{
		Description: "parse yaml config file into a struct",
		Type:        TypeFunction,
		Language:    LangGo,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.UsedLibrary != "gopkg.in/yaml.v3" {
		t.Errorf("expected yaml library recommendation, got %q", result.UsedLibrary)
	}
	if result.QualityScore != 0.9 {
		t.Errorf("library usage quality should be 0.9, got %f", result.QualityScore)
	}
	if result.Documentation == "" {
		t.Error("expected a rationale document")
	}
}

func TestOptimizeWithoutClientIsPassthrough(t *testing.T) {
	g := New(nil, testConfig())
	code := "func Slow() {}"

	out, err := g.Optimize(context.Background(), code, LangGo)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if out != code {
		t.Errorf("expected passthrough, got %q", out)
	}
}

func TestRefactorExtractsCode(t *testing.T) {
	client := &MockLLMClient{
		CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
			if !strings.Contains(prompt, "- split into helpers") {
				t.Errorf("goal missing from prompt:\n%s", prompt)
			}
			return "```go\nfunc Fast() {}\n```", nil
		},
	}
	g := New(client, testConfig())

	out, err := g.Refactor(context.Background(), "func Slow() {}", LangGo, []string{"split into helpers"})
	if err != nil {
		t.Fatalf("Refactor failed: %v", err)
	}
	if out != "func Fast() {}" {
		t.Errorf("unexpected refactor output: %q", out)
	}
}

func TestGenerateBatchPreservesOrder(t *testing.T) {
	client := &MockLLMClient{
		CompleteWithSystemFunc: func(ctx context.Context, sys, user string) (string, error) {
			for i := 0; i < 8; i++ {
				marker := fmt.Sprintf("task %d", i)
				if strings.Contains(user, marker) {
					return fmt.Sprintf("```go\nfunc Task%d() {}\n```", i), nil
				}
			}
			return "```go\nfunc Unknown() {}\n```", nil
		},
	}

	cfg := testConfig()
	cfg.MaxWorkers = 3
	g := New(client, cfg)

	reqs := make([]Request, 8)
	for i := range reqs {
		reqs[i] = Request{
			Description: fmt.Sprintf("task %d", i),
			Type:        TypeFunction,
			Language:    LangGo,
		}
	}

	results, err := g.GenerateBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("GenerateBatch failed: %v", err)
	}
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	for i, result := range results {
		want := fmt.Sprintf("func Task%d()", i)
		if !strings.Contains(result.Code, want) {
			t.Errorf("result %d out of order: %q", i, result.Code)
		}
	}
}

func TestGenerateBatchPropagatesError(t *testing.T) {
	client := &MockLLMClient{
		CompleteWithSystemFunc: func(ctx context.Context, sys, user string) (string, error) {
			if strings.Contains(user, "bad request") {
				return "", fmt.Errorf("model unavailable")
			}
			return "```go\nfunc OK() {}\n```", nil
		},
	}
	g := New(client, testConfig())

	_, err := g.GenerateBatch(context.Background(), []Request{
		{Description: "good request", Type: TypeFunction, Language: LangGo},
		{Description: "bad request", Type: TypeFunction, Language: LangGo},
	})
	if err == nil {
		t.Fatal("expected batch error")
	}
}

func TestRequestHash(t *testing.T) {
	a := Request{Description: "parse dates", Type: TypeFunction, Language: LangGo}
	b := Request{Description: "parse dates", Type: TypeFunction, Language: LangGo}
	c := Request{Description: "parse dates", Type: TypeFunction, Language: LangPython}

	if a.Hash() != b.Hash() {
		t.Error("identical requests must hash equally")
	}
	if a.Hash() == c.Hash() {
		t.Error("different languages must hash differently")
	}
	if len(a.Hash()) != 16 {
		t.Errorf("expected 16-char hash, got %d", len(a.Hash()))
	}
}

func TestRequestHashCoversPromptInputs(t *testing.T) {
	base := Request{Description: "fibonacci", Type: TypeFunction, Language: LangGo}

	withExample := base
	withExample.Examples = []string{"func fib(n int) int { ... }"}
	if base.Hash() == withExample.Hash() {
		t.Error("examples flow into the prompt and must change the hash")
	}

	withContext := base
	withContext.Context = map[string]string{"module": "mathutil"}
	if base.Hash() == withContext.Hash() {
		t.Error("context must change the hash")
	}

	// Map iteration order must not leak into the key.
	ctx1 := base
	ctx1.Context = map[string]string{"a": "1", "b": "2", "c": "3"}
	ctx2 := base
	ctx2.Context = map[string]string{"c": "3", "b": "2", "a": "1"}
	if ctx1.Hash() != ctx2.Hash() {
		t.Error("equal context maps must hash equally")
	}
}

func TestGenerateCacheMissesOnDifferentExamples(t *testing.T) {
	var calls atomic.Int32
	client := &MockLLMClient{
		CompleteWithSystemFunc: func(ctx context.Context, sys, user string) (string, error) {
			n := calls.Add(1)
			return fmt.Sprintf("```go\nfunc Fib%d() {}\n```", n), nil
		},
	}

	g := New(client, testConfig())

	recursive := Request{
		Description: "fibonacci",
		Type:        TypeFunction,
		Language:    LangGo,
		Examples:    []string{"func fib(n int) int { return fib(n-1) + fib(n-2) }"},
	}
	iterative := recursive
	iterative.Examples = []string{"for i := 0; i < n; i++ { a, b = b, a+b }"}

	first, err := g.Generate(context.Background(), recursive)
	if err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	second, err := g.Generate(context.Background(), iterative)
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	if calls.Load() != 2 {
		t.Fatalf("requests with different examples must both reach the LLM, got %d calls", calls.Load())
	}
	if first.Code == second.Code {
		t.Error("second request must not receive the first request's cached code")
	}
}
