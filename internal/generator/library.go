package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"codeforge/internal/solutions"
)

// generateLibraryUsage produces code that uses an existing library instead
// of a custom implementation, plus a rationale document.
func (g *Generator) generateLibraryUsage(ctx context.Context, req Request, check *solutions.CheckResult) (*Generated, error) {
	best := check.Solutions[0]

	var sb strings.Builder
	fmt.Fprintf(&sb, "// Using %s instead of a custom implementation.\n", best.Name)
	fmt.Fprintf(&sb, "// %s\n", best.Description)
	fmt.Fprintf(&sb, "// Installation: %s\n\n", best.Installation)
	if check.CodeExample != "" {
		sb.WriteString(check.CodeExample)
		sb.WriteString("\n\n")
	}

	if g.client != nil {
		prompt := fmt.Sprintf(`Generate %s code that uses the %q library to implement: %s

The library provides: %s
Installation: %s

Generate clean, production-ready code that properly uses this library:`,
			req.Language, best.Name, req.Description, best.Description, best.Installation)

		response, err := g.client.Complete(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("library usage generation failed: %w", err)
		}
		sb.WriteString(extractCodeBlock(response))
	} else {
		fmt.Fprintf(&sb, "// TODO: implement using %s\n// See documentation: %s\n", best.Name, best.URL)
	}

	code := g.formatters.Format(string(req.Language), sb.String())

	pros := "Well-maintained, tested solution"
	if len(best.Pros) > 0 {
		pros = strings.Join(best.Pros, ", ")
	}
	doc := fmt.Sprintf(`## Implementation using %s

This implementation uses the open source library %q instead of custom code.

### Why use this library?
%s

### Installation
`+"```bash\n%s\n```"+`

### Documentation
%s

### Match Score
%.2f - %s
`, best.Name, best.Name, pros, best.Installation, best.URL, best.MatchScore, check.Recommendation)

	return &Generated{
		ID:            uuid.NewString(),
		Code:          code,
		Language:      req.Language,
		Description:   fmt.Sprintf("Implementation using %s: %s", best.Name, req.Description),
		Documentation: doc,
		QualityScore:  0.9,
		UsedLibrary:   best.Name,
	}, nil
}
