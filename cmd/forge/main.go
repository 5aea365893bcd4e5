package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codeforge/internal/config"
	"codeforge/internal/generator"
	"codeforge/internal/llm"
	"codeforge/internal/logging"
	"codeforge/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string
	provider   string
	model      string
	apiKey     string

	// Logger
	logger *zap.Logger

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "CodeForge - autonomous code generation and self-modification",
	Long: `CodeForge generates, optimizes, and refactors code using LLM providers,
checks for existing open source solutions before writing custom code,
and can modify its own source files behind an allow-list with backups
and rollback.

Configuration is read from .forge/config.yaml under the workspace root;
FORGE_* environment variables override file values.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg = loadConfig()
		if verbose {
			cfg.Verbose = true
			cfg.Logging.DebugMode = true
		}

		if root, err := config.FindWorkspaceRoot(); err == nil {
			if err := logging.Initialize(root); err != nil {
				logger.Warn("file logging unavailable", zap.Error(err))
			}
		}
		logging.Boot("forge %s starting: %s", config.Version, cmd.Name())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// loadConfig resolves configuration with CLI flags on top.
func loadConfig() *config.Config {
	var c *config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			logger.Warn("failed to load config, using defaults", zap.String("path", configPath), zap.Error(err))
			c = config.DefaultConfig()
		} else {
			c = loaded
		}
	} else {
		c = config.LoadOrDefault()
	}

	if provider != "" {
		c.LLM.Provider = provider
	}
	if model != "" {
		c.LLM.Model = model
	}
	if apiKey != "" {
		c.LLM.APIKey = apiKey
	}
	return c
}

// newGenerator wires a Generator with its LLM client and history store.
// The returned closer releases the store; it is never nil.
func newGenerator() (*generator.Generator, func(), error) {
	client, err := llm.New(cfg)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create LLM client: %w", err)
	}
	if client == nil {
		logger.Info("no API key configured, running in template-only mode")
	}

	g := generator.New(client, cfg)

	closer := func() {}
	if h, err := openHistory(); err == nil {
		g.SetHistoryStore(h)
		closer = func() { _ = h.Close() }
	} else {
		logger.Warn("history store unavailable", zap.Error(err))
	}
	return g, closer, nil
}

// openHistory opens the SQLite history database under the workspace root.
func openHistory() (*store.HistoryStore, error) {
	path := cfg.Storage.DatabasePath
	if root, err := config.FindWorkspaceRoot(); err == nil {
		path = joinWorkspace(root, path)
	}
	return store.Open(path)
}

func joinWorkspace(root, path string) string {
	if len(path) > 0 && path[0] == '/' {
		return path
	}
	return root + "/" + path
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default .forge/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider (openai, anthropic, gemini)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "LLM model override")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (overrides FORGE_API_KEY)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
