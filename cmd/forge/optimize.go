package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"codeforge/internal/generator"
)

var (
	optLang     string
	optInPlace  bool
	refGoals    []string
	refLang     string
	refInPlace  bool
)

// optimizeCmd rewrites a file for performance and readability
var optimizeCmd = &cobra.Command{
	Use:   "optimize [file]",
	Short: "Optimize existing code",
	Long: `Rewrites a source file for performance, memory usage, and readability.
Without --in-place the result is printed to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

// refactorCmd rewrites a file toward explicit goals
var refactorCmd = &cobra.Command{
	Use:   "refactor [file]",
	Short: "Refactor existing code toward stated goals",
	Long: `Rewrites a source file to achieve the given goals.

Example:
  forge refactor handler.go --goal "extract validation" --goal "reduce nesting"`,
	Args: cobra.ExactArgs(1),
	RunE: runRefactor,
}

func runOptimize(cmd *cobra.Command, args []string) error {
	code, lang, err := readSource(args[0], optLang)
	if err != nil {
		return err
	}

	g, closeStore, err := newGenerator()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
	defer cancel()

	optimized, err := g.Optimize(ctx, code, lang)
	if err != nil {
		return err
	}
	return writeResult(args[0], optimized, optInPlace)
}

func runRefactor(cmd *cobra.Command, args []string) error {
	if len(refGoals) == 0 {
		return fmt.Errorf("at least one --goal is required")
	}
	code, lang, err := readSource(args[0], refLang)
	if err != nil {
		return err
	}

	g, closeStore, err := newGenerator()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
	defer cancel()

	refactored, err := g.Refactor(ctx, code, lang, refGoals)
	if err != nil {
		return err
	}
	return writeResult(args[0], refactored, refInPlace)
}

// readSource loads a file and resolves its language, from the flag or
// the file extension.
func readSource(path, langFlag string) (string, generator.Language, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if langFlag != "" {
		return string(data), generator.Language(langFlag), nil
	}
	return string(data), languageFor(path), nil
}

// languageFor maps a file extension to a language, defaulting to go.
func languageFor(path string) generator.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs":
		return generator.LangJavaScript
	case ".ts":
		return generator.LangTypeScript
	case ".py":
		return generator.LangPython
	case ".rs":
		return generator.LangRust
	case ".java":
		return generator.LangJava
	case ".cc", ".cpp", ".cxx":
		return generator.LangCPP
	case ".sh":
		return generator.LangShell
	default:
		return generator.LangGo
	}
}

func writeResult(path, code string, inPlace bool) error {
	if !inPlace {
		fmt.Println(code)
		return nil
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("Updated %s\n", path)
	return nil
}

func init() {
	optimizeCmd.Flags().StringVarP(&optLang, "lang", "l", "", "Language override (default from extension)")
	optimizeCmd.Flags().BoolVar(&optInPlace, "in-place", false, "Overwrite the input file")

	refactorCmd.Flags().StringArrayVarP(&refGoals, "goal", "g", nil, "Refactoring goal (repeatable)")
	refactorCmd.Flags().StringVarP(&refLang, "lang", "l", "", "Language override (default from extension)")
	refactorCmd.Flags().BoolVar(&refInPlace, "in-place", false, "Overwrite the input file")

	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(refactorCmd)
}
