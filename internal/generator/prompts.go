package generator

import (
	"fmt"
	"strings"
)

// generationSystemPrompt frames every generation call.
const generationSystemPrompt = `You are a code generator.
Generate clean, idiomatic code that follows these conventions:
- Use the standard library where possible
- Include proper error handling
- Add clear comments
- Make functions testable
- Follow the target language's naming conventions

Output exactly one fenced code block containing complete, compilable code.`

// buildGenerationPrompt assembles the user prompt for a request.
func buildGenerationPrompt(req Request) string {
	parts := []string{
		fmt.Sprintf("Generate %s code in %s.", req.Type, req.Language),
		fmt.Sprintf("Description: %s", req.Description),
		"\nRequirements:",
	}
	for _, r := range req.Requirements {
		parts = append(parts, fmt.Sprintf("- %s", r))
	}

	if len(req.Constraints) > 0 {
		parts = append(parts, "\nConstraints:")
		for _, c := range req.Constraints {
			parts = append(parts, fmt.Sprintf("- %s", c))
		}
	}

	if len(req.Examples) > 0 {
		parts = append(parts, "\nExamples for reference:")
		for _, e := range req.Examples {
			parts = append(parts, fmt.Sprintf("```\n%s\n```", e))
		}
	}

	parts = append(parts,
		"\nGenerate clean, efficient, well-documented code.",
		"Include error handling and edge cases.",
		"Follow best practices and coding standards.",
		fmt.Sprintf("Output the code in %s format.", req.Language),
	)
	return strings.Join(parts, "\n")
}

// buildTestPrompt asks for a test file covering the generated code.
func buildTestPrompt(code string, req Request) string {
	return fmt.Sprintf(`Generate comprehensive tests for the following %s code:

`+"```%s\n%s\n```"+`

Generate unit tests that:
- Test normal cases
- Test edge cases
- Test error conditions
- Achieve high code coverage
- Follow testing best practices for %s
`, req.Language, req.Language, truncateCode(code, 8000), req.Language)
}

// buildDocPrompt asks for documentation of the generated code.
func buildDocPrompt(code string, req Request) string {
	return fmt.Sprintf(`Generate comprehensive documentation for the following %s code:

`+"```%s\n%s\n```"+`

Include:
- Overview and purpose
- Usage examples
- Parameter descriptions
- Return value documentation
- Potential errors
- Performance considerations
`, req.Language, req.Language, truncateCode(code, 8000))
}

// buildOptimizePrompt asks for an optimized rewrite.
func buildOptimizePrompt(code string, lang Language) string {
	return fmt.Sprintf(`Optimize the following %s code for:
- Performance
- Memory usage
- Readability
- Best practices

Code:
`+"```%s\n%s\n```"+`

Generate the optimized version:
`, lang, lang, truncateCode(code, 8000))
}

// buildRefactorPrompt asks for a goal-driven rewrite.
func buildRefactorPrompt(code string, lang Language, goals []string) string {
	var goalList strings.Builder
	for _, goal := range goals {
		fmt.Fprintf(&goalList, "- %s\n", goal)
	}
	return fmt.Sprintf(`Refactor the following %s code to achieve these goals:
%s
Code:
`+"```%s\n%s\n```"+`

Generate the refactored version:
`, lang, goalList.String(), lang, truncateCode(code, 8000))
}
