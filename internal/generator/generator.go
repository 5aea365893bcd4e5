package generator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeforge/internal/config"
	"codeforge/internal/format"
	"codeforge/internal/llm"
	"codeforge/internal/logging"
	"codeforge/internal/quality"
	"codeforge/internal/solutions"
	"codeforge/internal/store"
)

// Generator produces code from requests. With an LLM client it runs the
// full pipeline (solution pre-check, generation, formatting, tests, docs,
// quality scoring); without one it falls back to templates.
type Generator struct {
	client     llm.Client
	cfg        *config.Config
	templates  *TemplateRegistry
	finder     *solutions.Finder
	formatters *format.Registry
	analyzers  *quality.Registry

	history *store.HistoryStore

	mu    sync.Mutex
	cache map[string]*Generated
}

// New creates a Generator. client may be nil (template-only mode).
func New(client llm.Client, cfg *config.Config) *Generator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	g := &Generator{
		client:     client,
		cfg:        cfg,
		templates:  NewTemplateRegistry(),
		formatters: format.NewRegistry(),
		analyzers:  quality.NewRegistry(),
		cache:      make(map[string]*Generated),
	}
	if cfg.Generation.SolutionCheck {
		g.finder = solutions.NewFinder(client)
	}
	if cfg.Generation.TemplatesDir != "" {
		if err := g.templates.LoadDir(cfg.Generation.TemplatesDir); err != nil {
			logging.Get(logging.CategoryTemplates).Warn("user templates unavailable: %v", err)
		}
	}
	return g
}

// SetHistoryStore attaches a persistent cache backend.
func (g *Generator) SetHistoryStore(h *store.HistoryStore) {
	g.history = h
}

// Templates exposes the template registry (for the hot-reload watcher).
func (g *Generator) Templates() *TemplateRegistry {
	return g.templates
}

// slowGenerationWarn is how long a full generation round trip may take
// before it is logged as a warning.
const slowGenerationWarn = 30 * time.Second

// Generate produces code for a request.
func (g *Generator) Generate(ctx context.Context, req Request) (*Generated, error) {
	timer := logging.StartTimer(logging.CategoryGenerator, "Generate")
	defer timer.StopWithThreshold(slowGenerationWarn)

	logging.Generator("generating %s in %s: %s", req.Type, req.Language, req.Description)

	if cached, ok := g.lookupCache(req); ok {
		logging.GeneratorDebug("cache hit for %s", req.Hash())
		return cached, nil
	}

	// Check for an existing open source solution before writing custom code
	if g.finder != nil {
		check, err := g.finder.Check(ctx, solutions.Spec{
			Description: req.Description,
			Level:       solutionLevel(req.Type),
			Features:    req.Requirements,
			Constraints: req.Constraints,
		})
		if err == nil && check.ShouldUseLibrary && len(check.Solutions) > 0 {
			logging.Generator("found open source solution: %s", check.Recommendation)
			result, err := g.generateLibraryUsage(ctx, req, check)
			if err == nil {
				g.storeCache(req, result)
			}
			return result, err
		}
		logging.GeneratorDebug("no suitable open source solution, generating custom code")
	}

	var result *Generated
	var err error
	if g.client != nil {
		result, err = g.generateWithLLM(ctx, req)
	} else {
		result, err = g.generateWithTemplates(req)
	}
	if err != nil {
		return nil, err
	}

	g.storeCache(req, result)
	return result, nil
}

// generateWithLLM runs the full LLM pipeline.
func (g *Generator) generateWithLLM(ctx context.Context, req Request) (*Generated, error) {
	prompt := buildGenerationPrompt(req)

	response, err := g.client.CompleteWithSystem(ctx, generationSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	code := extractCodeBlock(response)
	code = g.formatters.Format(string(req.Language), code)

	result := &Generated{
		ID:          uuid.NewString(),
		Code:        code,
		Language:    req.Language,
		Description: req.Description,
	}

	if req.Type != TypeTest {
		tests, err := g.generateTests(ctx, code, req)
		if err != nil {
			logging.GeneratorDebug("test generation failed: %v", err)
		} else {
			result.Tests = tests
		}
	}

	doc, err := g.generateDocumentation(ctx, code, req)
	if err != nil {
		logging.GeneratorDebug("documentation generation failed: %v", err)
	} else {
		result.Documentation = doc
	}

	result.QualityScore = g.analyzers.Score(string(req.Language), code)
	return result, nil
}

// generateWithTemplates is the offline fallback.
func (g *Generator) generateWithTemplates(req Request) (*Generated, error) {
	key := fmt.Sprintf("%s_%s", req.Language, req.Type)

	code, err := g.templates.Render(key, req)
	if err != nil {
		logging.GeneratorDebug("no template %s, emitting stub", key)
		code = fmt.Sprintf("// TODO: implement %s", req.Description)
	}

	return &Generated{
		ID:          uuid.NewString(),
		Code:        code,
		Language:    req.Language,
		Description: req.Description,
	}, nil
}

// generateTests asks the LLM for a test file covering the code.
func (g *Generator) generateTests(ctx context.Context, code string, req Request) (string, error) {
	if g.client == nil {
		return "", nil
	}
	response, err := g.client.Complete(ctx, buildTestPrompt(code, req))
	if err != nil {
		return "", err
	}
	return extractCodeBlock(response), nil
}

// generateDocumentation asks the LLM to document the code.
func (g *Generator) generateDocumentation(ctx context.Context, code string, req Request) (string, error) {
	if g.client == nil {
		return "Documentation pending", nil
	}
	return g.client.Complete(ctx, buildDocPrompt(code, req))
}

// Optimize rewrites code for performance and readability. Without a
// client the input is returned unchanged.
func (g *Generator) Optimize(ctx context.Context, code string, lang Language) (string, error) {
	if g.client == nil {
		return code, nil
	}
	response, err := g.client.Complete(ctx, buildOptimizePrompt(code, lang))
	if err != nil {
		return "", fmt.Errorf("optimization failed: %w", err)
	}
	optimized := extractCodeBlock(response)
	return g.formatters.Format(string(lang), optimized), nil
}

// Refactor rewrites code toward explicit goals. Without a client the
// input is returned unchanged.
func (g *Generator) Refactor(ctx context.Context, code string, lang Language, goals []string) (string, error) {
	if g.client == nil {
		return code, nil
	}
	response, err := g.client.Complete(ctx, buildRefactorPrompt(code, lang, goals))
	if err != nil {
		return "", fmt.Errorf("refactoring failed: %w", err)
	}
	return extractCodeBlock(response), nil
}

// lookupCache checks the in-memory cache, then the persistent store.
func (g *Generator) lookupCache(req Request) (*Generated, bool) {
	if !g.cfg.Generation.CacheEnabled {
		return nil, false
	}
	hash := req.Hash()

	g.mu.Lock()
	if cached, ok := g.cache[hash]; ok {
		g.mu.Unlock()
		return cached, true
	}
	g.mu.Unlock()

	if g.history == nil {
		return nil, false
	}
	persisted, ok, err := g.history.GetGeneration(hash)
	if err != nil || !ok {
		return nil, false
	}
	result := &Generated{
		ID:           hash,
		Code:         persisted.Code,
		Language:     Language(persisted.Language),
		Description:  req.Description,
		QualityScore: persisted.Quality,
		FromCache:    true,
	}
	g.mu.Lock()
	g.cache[hash] = result
	g.mu.Unlock()
	return result, true
}

// storeCache records a result in memory and, when attached, in SQLite.
func (g *Generator) storeCache(req Request, result *Generated) {
	if !g.cfg.Generation.CacheEnabled || result == nil {
		return
	}
	hash := req.Hash()

	g.mu.Lock()
	g.cache[hash] = result
	g.mu.Unlock()

	if g.history != nil {
		err := g.history.PutGeneration(store.CachedGeneration{
			Hash:     hash,
			Language: string(result.Language),
			Code:     result.Code,
			Quality:  result.QualityScore,
		})
		if err != nil {
			logging.Get(logging.CategoryGenerator).Warn("failed to persist generation: %v", err)
		}
	}
}

// solutionLevel maps code types to solution lookup granularity.
func solutionLevel(t CodeType) solutions.Level {
	switch t {
	case TypeFunction:
		return solutions.LevelFunction
	case TypeStruct:
		return solutions.LevelModule
	case TypeModule, TypeScript:
		return solutions.LevelPackage
	default:
		return solutions.LevelFunction
	}
}
