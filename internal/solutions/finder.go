// Package solutions looks for existing open-source libraries before custom
// code gets generated. Heuristic keyword matching runs first; the LLM is
// only consulted for ambiguous matches.
package solutions

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"codeforge/internal/llm"
	"codeforge/internal/logging"
)

// Level describes the granularity of the requirement being checked.
type Level string

const (
	LevelFunction Level = "function"
	LevelModule   Level = "module"
	LevelPackage  Level = "package"
)

// Spec describes a requirement to check against known solutions.
type Spec struct {
	Description string
	Level       Level
	Features    []string
	Constraints []string
}

// Solution is a known open-source library that may satisfy a requirement.
type Solution struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Installation string   `json:"installation"`
	URL          string   `json:"url"`
	Pros         []string `json:"pros"`
	MatchScore   float64  `json:"match_score"`
}

// CheckResult is the outcome of a solution lookup.
type CheckResult struct {
	ShouldUseLibrary bool
	Solutions        []Solution
	Recommendation   string
	CodeExample      string
}

// knownSolution pairs a catalog entry with the keywords that activate it.
type knownSolution struct {
	solution Solution
	keywords []string
	example  string
}

// Finder matches requirements against a curated solution catalog.
type Finder struct {
	client  llm.Client
	catalog []knownSolution
}

// NewFinder creates a finder with the built-in catalog. The client may be
// nil; lookups then stay purely heuristic.
func NewFinder(client llm.Client) *Finder {
	return &Finder{
		client:  client,
		catalog: builtinCatalog(),
	}
}

// recommendThreshold is the heuristic score at which a library is
// recommended without consulting the LLM.
const recommendThreshold = 0.7

// ambiguousThreshold is the score above which the LLM is asked to break
// the tie.
const ambiguousThreshold = 0.4

// Check looks for an existing solution matching the spec.
func (f *Finder) Check(ctx context.Context, spec Spec) (*CheckResult, error) {
	timer := logging.StartTimer(logging.CategorySolutions, "Check")
	defer timer.Stop()

	matches := f.match(spec)

	result := &CheckResult{Solutions: matches}
	if len(matches) == 0 {
		logging.SolutionsDebug("no catalog match for %q", spec.Description)
		result.Recommendation = "No suitable open source solution found"
		return result, nil
	}

	best := matches[0]
	logging.Solutions("best match for %q: %s (%.2f)", spec.Description, best.Name, best.MatchScore)

	if best.MatchScore >= recommendThreshold {
		result.ShouldUseLibrary = true
		result.Recommendation = fmt.Sprintf("Use %s instead of custom code", best.Name)
		result.CodeExample = f.exampleFor(best.Name)
		return result, nil
	}

	// Ambiguous score: let the LLM break the tie when available.
	if best.MatchScore >= ambiguousThreshold && f.client != nil {
		return f.refineWithLLM(ctx, spec, result)
	}

	result.Recommendation = "Match too weak, generate custom code"
	return result, nil
}

// match scores the catalog against the spec description and features.
func (f *Finder) match(spec Spec) []Solution {
	haystack := strings.ToLower(spec.Description + " " + strings.Join(spec.Features, " "))

	var matches []Solution
	for _, entry := range f.catalog {
		hits := 0
		for _, kw := range entry.keywords {
			if strings.Contains(haystack, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		s := entry.solution
		s.MatchScore = float64(hits) / float64(len(entry.keywords))
		matches = append(matches, s)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches
}

// refineWithLLM asks the LLM whether the top match actually fits.
// Any LLM failure falls back to the heuristic result.
func (f *Finder) refineWithLLM(ctx context.Context, spec Spec, heuristic *CheckResult) (*CheckResult, error) {
	best := heuristic.Solutions[0]

	prompt := fmt.Sprintf(`Decide whether an existing library fits this requirement.

Requirement: %s
Level: %s
Features: %v
Constraints: %v

Candidate library: %s
Candidate description: %s

Return JSON only:
{
  "should_use_library": true/false,
  "match_score": 0.0-1.0,
  "recommendation": "one sentence"
}

JSON only:`, spec.Description, spec.Level, spec.Features, spec.Constraints,
		best.Name, best.Description)

	resp, err := f.client.Complete(ctx, prompt)
	if err != nil {
		logging.SolutionsDebug("LLM refinement failed, keeping heuristic result: %v", err)
		heuristic.Recommendation = "Match too weak, generate custom code"
		return heuristic, nil
	}

	var verdict struct {
		ShouldUseLibrary bool    `json:"should_use_library"`
		MatchScore       float64 `json:"match_score"`
		Recommendation   string  `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp)), &verdict); err != nil {
		heuristic.Recommendation = "Match too weak, generate custom code"
		return heuristic, nil
	}

	heuristic.ShouldUseLibrary = verdict.ShouldUseLibrary
	heuristic.Recommendation = verdict.Recommendation
	if verdict.MatchScore > 0 {
		heuristic.Solutions[0].MatchScore = verdict.MatchScore
	}
	if verdict.ShouldUseLibrary {
		heuristic.CodeExample = f.exampleFor(best.Name)
	}
	return heuristic, nil
}

// exampleFor returns the catalog usage example for a solution, if any.
func (f *Finder) exampleFor(name string) string {
	for _, entry := range f.catalog {
		if entry.solution.Name == name {
			return entry.example
		}
	}
	return ""
}

// extractJSON extracts the first JSON object or array from mixed text.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		start = strings.Index(text, "[")
	}
	if start == -1 {
		return "{}"
	}

	depth := 0
	inString := false
	escaped := false
	startChar := rune(text[start])
	endChar := '}'
	if startChar == '[' {
		endChar = ']'
	}

	for i := start; i < len(text); i++ {
		ch := rune(text[i])

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString {
			if ch == startChar || ch == '{' || ch == '[' {
				depth++
			} else if ch == endChar || ch == '}' || ch == ']' {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return ""
}
