package generator

import (
	"strings"
	"testing"
)

func TestExtractCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "fenced with language",
			response: "Here is the code:\n```go\nfunc A() {}\n```\nHope that helps!",
			want:     "func A() {}",
		},
		{
			name:     "fenced without language",
			response: "```\nfunc B() {}\n```",
			want:     "func B() {}",
		},
		{
			name:     "first of multiple fences",
			response: "```go\nfunc First() {}\n```\nand also\n```go\nfunc Second() {}\n```",
			want:     "func First() {}",
		},
		{
			name:     "no fences strips prose lines",
			response: "Here is your function:\nfunc C() {}\nThis should work.",
			want:     "func C() {}",
		},
		{
			name:     "plain code unchanged",
			response: "func D() {}",
			want:     "func D() {}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractCodeBlock(tt.response)
			if got != tt.want {
				t.Errorf("extractCodeBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentifierFrom(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"reverse a string", "ReverseAString"},
		{"parse RFC 3339 timestamps", "ParseRFC3339Timestamps"},
		{"", "Generated"},
		{"!!!", "Generated"},
		{"42 things", "X42Things"},
	}

	for _, tt := range tests {
		got := identifierFrom(tt.description)
		if got != tt.want {
			t.Errorf("identifierFrom(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}

func TestIdentifierFromCapsLength(t *testing.T) {
	long := strings.Repeat("very long description ", 10)
	got := identifierFrom(long)
	if len(got) > 31 {
		t.Errorf("identifier too long: %d chars", len(got))
	}
}

func TestTruncateCode(t *testing.T) {
	code := strings.Repeat("x", 100)

	if got := truncateCode(code, 200); got != code {
		t.Error("short code must not be truncated")
	}

	got := truncateCode(code, 50)
	if !strings.HasPrefix(got, strings.Repeat("x", 50)) {
		t.Errorf("unexpected truncation prefix: %q", got[:60])
	}
	if !strings.Contains(got, "truncated") {
		t.Error("expected truncation marker")
	}
}
