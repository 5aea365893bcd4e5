package selfmod

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type mockClient struct {
	completeFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockClient) Complete(ctx context.Context, prompt string) (string, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, prompt)
	}
	return "", nil
}

func (m *mockClient) CompleteWithSystem(ctx context.Context, sys, user string) (string, error) {
	return m.Complete(ctx, user)
}

const originalSource = `package demo

// Greet returns a greeting.
func Greet() string {
	return "hello"
}
`

const modifiedSource = `package demo

// Greet returns a friendlier greeting.
func Greet() string {
	return "hello there"
}
`

func writeTarget(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forge_demo.go")
	if err := os.WriteFile(path, []byte(originalSource), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestModifyAppliesChangeAndBacksUp(t *testing.T) {
	target := writeTarget(t)
	client := &mockClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "```go\n" + modifiedSource + "```", nil
		},
	}

	e := New(client, []string{"forge_*.go"}, ".bak")
	if err := e.Modify(context.Background(), target, "friendlier greeting"); err != nil {
		t.Fatalf("Modify failed: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "hello there") {
		t.Errorf("modification not applied:\n%s", got)
	}

	backup, err := os.ReadFile(target + ".bak")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != originalSource {
		t.Error("backup must hold the original content")
	}

	history := e.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].File != target || history[0].Request != "friendlier greeting" {
		t.Errorf("unexpected history entry: %+v", history[0])
	}
}

func TestModifyBlockedByAllowList(t *testing.T) {
	target := writeTarget(t)

	e := New(&mockClient{}, []string{"internal/core/*.go"}, ".bak")
	err := e.Modify(context.Background(), target, "anything")
	if !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}

	got, _ := os.ReadFile(target)
	if string(got) != originalSource {
		t.Error("blocked modification must not touch the file")
	}
}

func TestModifyRequiresClient(t *testing.T) {
	target := writeTarget(t)

	e := New(nil, []string{"forge_*.go"}, ".bak")
	if err := e.Modify(context.Background(), target, "anything"); !errors.Is(err, ErrNoClient) {
		t.Fatalf("expected ErrNoClient, got %v", err)
	}
}

func TestModifyRejectsInvalidOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "too short", response: "```go\nok\n```"},
		{name: "unchanged", response: "```go\n" + originalSource + "```"},
		{name: "does not parse", response: "```go\npackage demo\n\nfunc Greet() string {\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := writeTarget(t)
			client := &mockClient{
				completeFunc: func(ctx context.Context, prompt string) (string, error) {
					return tt.response, nil
				},
			}

			e := New(client, []string{"forge_*.go"}, ".bak")
			err := e.Modify(context.Background(), target, "break it")
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}

			got, _ := os.ReadFile(target)
			if string(got) != originalSource {
				t.Error("rejected modification must not touch the file")
			}
			if _, err := os.Stat(target + ".bak"); !os.IsNotExist(err) {
				t.Error("no backup should be written for a rejected modification")
			}
		})
	}
}

func TestRollbackRestoresBackup(t *testing.T) {
	target := writeTarget(t)
	client := &mockClient{
		completeFunc: func(ctx context.Context, prompt string) (string, error) {
			return "```go\n" + modifiedSource + "```", nil
		},
	}

	e := New(client, []string{"forge_*.go"}, ".bak")
	if err := e.Modify(context.Background(), target, "friendlier greeting"); err != nil {
		t.Fatalf("Modify failed: %v", err)
	}
	if err := e.Rollback(target); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	got, _ := os.ReadFile(target)
	if string(got) != originalSource {
		t.Error("rollback must restore the original content")
	}
}

func TestRollbackWithoutBackup(t *testing.T) {
	e := New(nil, []string{"*.go"}, ".bak")
	if err := e.Rollback("nonexistent.go"); !errors.Is(err, ErrNoBackup) {
		t.Fatalf("expected ErrNoBackup, got %v", err)
	}
}

func TestValidateModification(t *testing.T) {
	goTarget := "forge_demo.go"

	if err := validateModification(goTarget, originalSource, modifiedSource); err != nil {
		t.Errorf("valid modification rejected: %v", err)
	}

	nonGo := "notes.txt"
	if err := validateModification(nonGo, "old content here", "completely new content"); err != nil {
		t.Errorf("non-Go files only need the basic checks: %v", err)
	}
	if err := validateModification(nonGo, "same same same", "same same same"); err == nil {
		t.Error("unchanged content must be rejected")
	}
}

func TestStdlibOnly(t *testing.T) {
	if !stdlibOnly([]string{"fmt", "os/exec", "encoding/json"}) {
		t.Error("standard library imports misclassified")
	}
	if stdlibOnly([]string{"fmt", "github.com/spf13/cobra"}) {
		t.Error("third-party import misclassified")
	}
}
