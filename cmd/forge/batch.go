package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"codeforge/internal/generator"
)

var batchOutputDir string

// batchRequest is the YAML shape of one entry in a batch file.
type batchRequest struct {
	Description  string   `yaml:"description"`
	Type         string   `yaml:"type"`
	Language     string   `yaml:"language"`
	Requirements []string `yaml:"requirements"`
	Constraints  []string `yaml:"constraints"`
	Output       string   `yaml:"output"`
}

// batchCmd generates code for every request in a YAML file
var batchCmd = &cobra.Command{
	Use:   "batch [requests.yaml]",
	Short: "Generate code for a batch of requests",
	Long: `Reads a YAML file containing a list of generation requests and runs
them concurrently, bounded by max_workers. Each entry may name an output
file; entries without one are written under --output-dir.

Batch file format:
  - description: parse a YAML config file
    type: function
    language: go
    output: parse_config.go
  - description: retry with exponential backoff
    type: function
    language: go`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read batch file: %w", err)
	}
	var entries []batchRequest
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse batch file: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("batch file %s contains no requests", args[0])
	}

	reqs := make([]generator.Request, len(entries))
	for i, e := range entries {
		if e.Type == "" {
			e.Type = "function"
		}
		if e.Language == "" {
			e.Language = "go"
		}
		reqs[i] = generator.Request{
			Description:  e.Description,
			Type:         generator.CodeType(e.Type),
			Language:     generator.Language(e.Language),
			Requirements: e.Requirements,
			Constraints:  e.Constraints,
		}
	}

	g, closeStore, err := newGenerator()
	if err != nil {
		return err
	}
	defer closeStore()

	// Scale the timeout with batch depth so a full queue can drain.
	waves := (len(reqs) + cfg.MaxWorkers - 1) / cfg.MaxWorkers
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration()*time.Duration(waves))
	defer cancel()

	results, err := g.GenerateBatch(ctx, reqs)
	if err != nil {
		return err
	}

	for i, result := range results {
		out := entries[i].Output
		if out == "" {
			out = filepath.Join(batchOutputDir, fmt.Sprintf("generated_%02d%s", i+1, extensionFor(reqs[i].Language)))
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(out, []byte(result.Code), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		logger.Info("batch entry complete",
			zap.Int("index", i),
			zap.String("output", out),
			zap.Float64("quality", result.QualityScore))
		fmt.Printf("[%d/%d] %s (quality %.2f)\n", i+1, len(results), out, result.QualityScore)
	}
	return nil
}

// extensionFor maps a language to its source file extension.
func extensionFor(lang generator.Language) string {
	switch lang {
	case generator.LangGo:
		return ".go"
	case generator.LangJavaScript:
		return ".js"
	case generator.LangTypeScript:
		return ".ts"
	case generator.LangPython:
		return ".py"
	case generator.LangRust:
		return ".rs"
	case generator.LangShell:
		return ".sh"
	default:
		return ".txt"
	}
}

func init() {
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "generated", "Directory for entries without an output path")
	rootCmd.AddCommand(batchCmd)
}
