package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeforge/internal/generator"
)

var (
	genType         string
	genLang         string
	genRequirements []string
	genConstraints  []string
	genOutput       string
	genTestsOutput  string
	genShowDocs     bool
)

// generateCmd generates code from a natural language description
var generateCmd = &cobra.Command{
	Use:   "generate [description]",
	Short: "Generate code from a description",
	Long: `Generates code for a natural language description. Before writing
custom code, known open source libraries are checked first and preferred
when they cover the request.

Examples:
  forge generate "parse a YAML config file" --lang go --type function
  forge generate "HTTP health check endpoint" --lang go -r "return JSON" -r "include uptime"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	g, closeStore, err := newGenerator()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
	defer cancel()

	req := generator.Request{
		Description:  strings.Join(args, " "),
		Type:         generator.CodeType(genType),
		Language:     generator.Language(genLang),
		Requirements: genRequirements,
		Constraints:  genConstraints,
	}

	result, err := g.Generate(ctx, req)
	if err != nil {
		return err
	}

	logger.Info("generation complete",
		zap.String("id", result.ID),
		zap.Float64("quality", result.QualityScore),
		zap.Bool("from_cache", result.FromCache))

	if result.UsedLibrary != "" {
		fmt.Printf("Using existing library: %s\n\n", result.UsedLibrary)
	}

	if genOutput != "" {
		if err := os.WriteFile(genOutput, []byte(result.Code), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Printf("Code written to %s (quality %.2f)\n", genOutput, result.QualityScore)
	} else {
		fmt.Println(result.Code)
	}

	if genTestsOutput != "" && result.Tests != "" {
		if err := os.WriteFile(genTestsOutput, []byte(result.Tests), 0644); err != nil {
			return fmt.Errorf("failed to write tests: %w", err)
		}
		fmt.Printf("Tests written to %s\n", genTestsOutput)
	}

	if genShowDocs && result.Documentation != "" {
		fmt.Println()
		fmt.Println(renderMarkdown(result.Documentation))
	}
	return nil
}

// renderMarkdown pretty-prints markdown for the terminal, falling back
// to the raw text when the renderer fails.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func init() {
	generateCmd.Flags().StringVarP(&genType, "type", "t", "function", "Code type (function, struct, module, script, test)")
	generateCmd.Flags().StringVarP(&genLang, "lang", "l", "go", "Target language")
	generateCmd.Flags().StringArrayVarP(&genRequirements, "requirement", "r", nil, "Requirement (repeatable)")
	generateCmd.Flags().StringArrayVarP(&genConstraints, "constraint", "c", nil, "Constraint (repeatable)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Write generated code to file")
	generateCmd.Flags().StringVar(&genTestsOutput, "tests-output", "", "Write generated tests to file")
	generateCmd.Flags().BoolVar(&genShowDocs, "docs", false, "Render generated documentation")

	rootCmd.AddCommand(generateCmd)
}
