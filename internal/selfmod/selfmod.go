// Package selfmod applies LLM-generated modifications to CodeForge's own
// source files, with an allow-list gate, validation, backups, and rollback.
package selfmod

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeforge/internal/llm"
	"codeforge/internal/logging"
	"codeforge/internal/store"
)

var (
	// ErrNotAllowed means the target file is outside the allow-list.
	ErrNotAllowed = errors.New("self-modification not allowed for target")

	// ErrValidation means the generated modification failed validation.
	ErrValidation = errors.New("modification validation failed")

	// ErrNoClient means self-modification was attempted without an LLM client.
	ErrNoClient = errors.New("LLM client required for self-modification")

	// ErrNoBackup means no backup exists for the requested rollback.
	ErrNoBackup = errors.New("no backup found")
)

// Modification records one applied self-modification.
type Modification struct {
	File      string    `json:"file"`
	Request   string    `json:"request"`
	Backup    string    `json:"backup"`
	AppliedAt time.Time `json:"applied_at"`
}

// Engine performs guarded self-modifications.
type Engine struct {
	client          llm.Client
	allowedPatterns []string
	backupSuffix    string
	history         *store.HistoryStore

	mu      sync.Mutex
	applied []Modification
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistoryStore persists modification records.
func WithHistoryStore(h *store.HistoryStore) Option {
	return func(e *Engine) { e.history = h }
}

// New creates an Engine. allowedPatterns are filepath.Match globs checked
// against both the full path and its base name.
func New(client llm.Client, allowedPatterns []string, backupSuffix string, opts ...Option) *Engine {
	if backupSuffix == "" {
		backupSuffix = ".bak"
	}
	e := &Engine{
		client:          client,
		allowedPatterns: allowedPatterns,
		backupSuffix:    backupSuffix,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Modify applies a requested change to targetFile. The original content is
// backed up next to the file before the modified version is written.
func (e *Engine) Modify(ctx context.Context, targetFile, request string) error {
	timer := logging.StartTimer(logging.CategorySelfMod, "Modify")
	defer timer.Stop()

	logging.Get(logging.CategorySelfMod).Warn("self-modification requested for %s", targetFile)

	if !e.isSafeToModify(targetFile) {
		logging.Get(logging.CategorySelfMod).Error("self-modification blocked for %s", targetFile)
		return fmt.Errorf("%w: %s", ErrNotAllowed, targetFile)
	}

	original, err := os.ReadFile(targetFile)
	if err != nil {
		return fmt.Errorf("failed to read target %s: %w", targetFile, err)
	}

	if e.client == nil {
		return ErrNoClient
	}

	modified, err := e.generateModification(ctx, string(original), request)
	if err != nil {
		return fmt.Errorf("failed to generate modification: %w", err)
	}

	if err := validateModification(targetFile, string(original), modified); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	backupPath := targetFile + e.backupSuffix
	if err := os.WriteFile(backupPath, original, 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.WriteFile(targetFile, []byte(modified), 0644); err != nil {
		return fmt.Errorf("failed to write modified file: %w", err)
	}

	mod := Modification{
		File:      targetFile,
		Request:   request,
		Backup:    backupPath,
		AppliedAt: time.Now(),
	}

	e.mu.Lock()
	e.applied = append(e.applied, mod)
	e.mu.Unlock()

	if e.history != nil {
		if _, err := e.history.RecordModification(targetFile, request, backupPath); err != nil {
			logging.Get(logging.CategorySelfMod).Warn("failed to persist modification record: %v", err)
		}
	}

	logging.SelfMod("successfully modified %s (backup: %s)", targetFile, backupPath)
	return nil
}

// isSafeToModify checks the target against the allow-list.
func (e *Engine) isSafeToModify(targetFile string) bool {
	clean := filepath.ToSlash(filepath.Clean(targetFile))
	base := filepath.Base(clean)

	for _, pattern := range e.allowedPatterns {
		if ok, _ := filepath.Match(pattern, clean); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// generateModification asks the LLM for the complete modified file.
func (e *Engine) generateModification(ctx context.Context, original, request string) (string, error) {
	prompt := fmt.Sprintf(`Modify the following code according to the request:

Original Code:
`+"```\n%s\n```"+`

Modification Request:
%s

Requirements:
- Preserve existing functionality unless explicitly changed
- Maintain code style and conventions
- Add appropriate error handling
- Include comments for significant changes
- Ensure backward compatibility

Generate the complete modified code:`, original, request)

	response, err := e.client.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return extractCode(response), nil
}

// Rollback restores the most recent backup for a file: the in-memory
// record first, then the persistent history.
func (e *Engine) Rollback(file string) error {
	backup := ""

	e.mu.Lock()
	for i := len(e.applied) - 1; i >= 0; i-- {
		if e.applied[i].File == file {
			backup = e.applied[i].Backup
			break
		}
	}
	e.mu.Unlock()

	if backup == "" && e.history != nil {
		if b, err := e.history.LatestBackup(file); err == nil {
			backup = b
		}
	}
	if backup == "" {
		logging.Get(logging.CategorySelfMod).Error("no backup found for %s", file)
		return fmt.Errorf("%w: %s", ErrNoBackup, file)
	}

	data, err := os.ReadFile(backup)
	if err != nil {
		return fmt.Errorf("failed to read backup %s: %w", backup, err)
	}
	if err := os.WriteFile(file, data, 0644); err != nil {
		return fmt.Errorf("failed to restore %s: %w", file, err)
	}

	logging.SelfMod("rolled back %s from %s", file, backup)
	return nil
}

// History returns a copy of the in-memory modification records.
func (e *Engine) History() []Modification {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Modification, len(e.applied))
	copy(out, e.applied)
	return out
}
