package generator

import (
	"regexp"
	"strings"
	"unicode"
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:\\w+)?\\n(.*?)```")

// extractCodeBlock pulls the first fenced code block out of an LLM
// response. Responses without fences get their prose lines stripped
// instead.
func extractCodeBlock(response string) string {
	if m := codeBlockRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}

	// No fences: drop lines that look like narration around the code.
	proseMarkers := []string{"here", "this", "the following", "code:", "example:"}
	var kept []string
	for _, line := range strings.Split(response, "\n") {
		lower := strings.ToLower(line)
		prose := false
		for _, marker := range proseMarkers {
			if strings.Contains(lower, marker) {
				prose = true
				break
			}
		}
		if !prose {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// identifierFrom derives an exported Go identifier from a free-form
// description, capped at a readable length.
func identifierFrom(description string) string {
	var sb strings.Builder
	upperNext := true
	for _, r := range description {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upperNext {
				sb.WriteRune(unicode.ToUpper(r))
				upperNext = false
			} else {
				sb.WriteRune(r)
			}
		default:
			upperNext = true
		}
		if sb.Len() >= 30 {
			break
		}
	}
	if sb.Len() == 0 {
		return "Generated"
	}
	name := sb.String()
	if unicode.IsDigit(rune(name[0])) {
		name = "X" + name
	}
	return name
}

// truncateCode truncates code for LLM prompts while preserving structure.
func truncateCode(code string, maxLen int) string {
	if len(code) <= maxLen {
		return code
	}
	return code[:maxLen] + "\n// ... (truncated)"
}
