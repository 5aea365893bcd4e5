// Package config holds CodeForge configuration: defaults, YAML loading,
// and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is the CodeForge release version. It must match the latest
// entry in CHANGELOG.md.
const Version = "0.1.0"

// ErrInvalid is wrapped by all configuration validation failures.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all CodeForge configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Verbose enables debug-level CLI logging.
	Verbose bool `yaml:"verbose"`

	// MaxWorkers bounds concurrent generations in batch mode.
	MaxWorkers int `yaml:"max_workers"`

	// Timeout bounds a single LLM round trip ("120s", "2m").
	Timeout string `yaml:"timeout"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Generation settings
	Generation GenerationConfig `yaml:"generation"`

	// Self-modification settings
	SelfMod SelfModConfig `yaml:"selfmod"`

	// Storage
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, anthropic, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

// GenerationConfig configures the code generator.
type GenerationConfig struct {
	// TemplatesDir holds user template packs (*.yaml). Empty disables loading.
	TemplatesDir string `yaml:"templates_dir"`

	// CacheEnabled persists generations keyed by request hash.
	CacheEnabled bool `yaml:"cache_enabled"`

	// SolutionCheck gates the open-source solution lookup before generating.
	SolutionCheck bool `yaml:"solution_check"`
}

// SelfModConfig configures the self-modification engine.
type SelfModConfig struct {
	// AllowedPatterns are filepath.Match globs a target must match.
	AllowedPatterns []string `yaml:"allowed_patterns"`

	// BackupSuffix is appended to the original file before overwrite.
	BackupSuffix string `yaml:"backup_suffix"`
}

// StorageConfig configures persistence.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
	JSONFormat bool            `yaml:"json_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:       "codeforge",
		Version:    Version,
		Verbose:    false,
		MaxWorkers: 4,
		Timeout:    "120s",

		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
			// BaseURL empty: each client applies its provider default.
		},

		Generation: GenerationConfig{
			TemplatesDir:  "",
			CacheEnabled:  true,
			SolutionCheck: true,
		},

		SelfMod: SelfModConfig{
			AllowedPatterns: []string{
				"forge_*.go",
				"internal/*/*.go",
				"tools/*.go",
			},
			BackupSuffix: ".bak",
		},

		Storage: StorageConfig{
			DatabasePath: filepath.Join(".forge", "history.db"),
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads configuration from a YAML file, applying defaults for
// unset fields and environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads .forge/config.yaml under the workspace root,
// falling back to defaults (plus env overrides) when absent.
func LoadOrDefault() *Config {
	root, err := FindWorkspaceRoot()
	if err == nil {
		path := filepath.Join(root, ".forge", "config.yaml")
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	return cfg
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FORGE_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("FORGE_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("FORGE_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("FORGE_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("FORGE_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxWorkers = n
		}
	}
	if v := os.Getenv("FORGE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Timeout = v
		}
	}
}

// Validate checks invariants that would break subsystems downstream.
func (c *Config) Validate() error {
	if c.MaxWorkers < 1 {
		return fmt.Errorf("%w: max_workers must be >= 1, got %d", ErrInvalid, c.MaxWorkers)
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("%w: timeout must be a positive duration, got %q", ErrInvalid, c.Timeout)
	}
	switch c.LLM.Provider {
	case "", "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalid, c.LLM.Provider)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// TimeoutDuration parses the configured timeout, defaulting to 120s on
// malformed values.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// FindWorkspaceRoot walks up from the working directory until it finds a
// directory containing .forge/ or go.mod.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ".forge")); err == nil && info.IsDir() {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no workspace root found")
		}
		dir = parent
	}
}
