// Package quality scores generated code per language. Scores are in [0,1];
// a parse failure scores 0 and an unsupported language scores the neutral 0.5.
package quality

import (
	"codeforge/internal/logging"
)

// Analyzer scores source code for one language.
type Analyzer interface {
	Score(code string) float64
}

// Registry maps language identifiers to analyzers.
type Registry struct {
	analyzers map[string]Analyzer
}

// NewRegistry returns a registry with the built-in analyzers.
func NewRegistry() *Registry {
	return &Registry{
		analyzers: map[string]Analyzer{
			"go":         &GoAnalyzer{},
			"javascript": NewJSAnalyzer(),
			"typescript": NewJSAnalyzer(),
		},
	}
}

// Register adds or replaces the analyzer for a language.
func (r *Registry) Register(language string, a Analyzer) {
	r.analyzers[language] = a
}

// Score analyzes code in the given language. Languages without an
// analyzer get the neutral score.
func (r *Registry) Score(language, code string) float64 {
	a, ok := r.analyzers[language]
	if !ok {
		logging.Quality("no analyzer for language %q, neutral score", language)
		return 0.5
	}
	score := a.Score(code)
	logging.Quality("scored %s code: %.2f (%d bytes)", language, score, len(code))
	return score
}

// clamp bounds a score to [0,1].
func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
