package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func setupWorkspace(t *testing.T, configYAML string) string {
	t.Helper()
	ws := t.TempDir()
	if err := os.MkdirAll(filepath.Join(ws, ".forge"), 0755); err != nil {
		t.Fatal(err)
	}
	if configYAML != "" {
		if err := os.WriteFile(filepath.Join(ws, ".forge", "config.yaml"), []byte(configYAML), 0644); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(func() {
		CloseAll()
		// Reset package state for the next test.
		logsDir = ""
		workspace = ""
		config = loggingConfig{}
		logLevel = LevelInfo
	})
	return ws
}

func TestInitializeDisabledByDefault(t *testing.T) {
	ws := setupWorkspace(t, "")

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if IsDebugMode() {
		t.Error("debug mode must be off without config")
	}

	Generator("this must go nowhere")
	if _, err := os.Stat(filepath.Join(ws, ".forge", "logs")); !os.IsNotExist(err) {
		t.Error("no log directory should be created in production mode")
	}
}

func TestInitializeDebugModeWritesFiles(t *testing.T) {
	ws := setupWorkspace(t, "logging:\n  debug_mode: true\n  level: debug\n")

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("debug mode should be on")
	}

	Generator("generation started for %s", "demo")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(ws, ".forge", "logs"))
	if err != nil {
		t.Fatalf("log directory missing: %v", err)
	}

	found := false
	for _, e := range entries {
		if !strings.Contains(e.Name(), "generator") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(ws, ".forge", "logs", e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(data), "generation started for demo") {
			found = true
		}
	}
	if !found {
		t.Error("expected the message in the generator log file")
	}
}

func TestCategoryToggle(t *testing.T) {
	ws := setupWorkspace(t, `logging:
  debug_mode: true
  level: debug
  categories:
    generator: false
    quality: true
`)
	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if IsCategoryEnabled(CategoryGenerator) {
		t.Error("generator category should be disabled")
	}
	if !IsCategoryEnabled(CategoryQuality) {
		t.Error("quality category should be enabled")
	}
	// Categories absent from the config default to enabled.
	if !IsCategoryEnabled(CategoryStore) {
		t.Error("unlisted categories should be enabled")
	}
}

func TestLevelFiltering(t *testing.T) {
	ws := setupWorkspace(t, "logging:\n  debug_mode: true\n  level: warn\n")

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	l := Get(CategoryQuality)
	l.Debug("debug line")
	l.Info("info line")
	l.Warn("warn line")
	CloseAll()

	entries, _ := os.ReadDir(filepath.Join(ws, ".forge", "logs"))
	var content string
	for _, e := range entries {
		if strings.Contains(e.Name(), "quality") {
			data, _ := os.ReadFile(filepath.Join(ws, ".forge", "logs", e.Name()))
			content = string(data)
		}
	}

	if strings.Contains(content, "info line") {
		t.Error("info must be filtered at warn level")
	}
	if !strings.Contains(content, "warn line") {
		t.Error("warn must be written at warn level")
	}
}

func TestTimerStopWithThreshold(t *testing.T) {
	ws := setupWorkspace(t, "logging:\n  debug_mode: true\n  level: warn\n")

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// At warn level only the over-threshold path produces output.
	slow := StartTimer(CategoryGenerator, "slow op")
	time.Sleep(2 * time.Millisecond)
	slow.StopWithThreshold(time.Millisecond)

	fast := StartTimer(CategoryGenerator, "fast op")
	fast.StopWithThreshold(time.Minute)
	CloseAll()

	entries, _ := os.ReadDir(filepath.Join(ws, ".forge", "logs"))
	var content string
	for _, e := range entries {
		if strings.Contains(e.Name(), "generator") {
			data, _ := os.ReadFile(filepath.Join(ws, ".forge", "logs", e.Name()))
			content = string(data)
		}
	}

	if !strings.Contains(content, "slow op took") {
		t.Error("over-threshold timer must log a warning")
	}
	if strings.Contains(content, "fast op") {
		t.Error("under-threshold timer logs at debug, filtered at warn level")
	}
}

func TestConcurrentWrites(t *testing.T) {
	ws := setupWorkspace(t, "logging:\n  debug_mode: true\n  level: debug\n")

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				Get(CategoryStore).Info("writer %d line %d", n, j)
			}
		}(i)
	}
	wg.Wait()
}

func TestGetIsNoopWhenUninitialized(t *testing.T) {
	// Must not panic or create files.
	Get(CategoryAPI).Info("nothing happens")
	APIDebug("still nothing")
}
