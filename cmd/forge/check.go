package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codeforge/internal/llm"
	"codeforge/internal/solutions"
)

var (
	checkLevel    string
	checkFeatures []string
)

// checkCmd looks for existing open source solutions for a description
var checkCmd = &cobra.Command{
	Use:   "check [description]",
	Short: "Check for existing open source solutions",
	Long: `Searches known libraries for one that already covers the described
functionality, before any custom code is written.

Example:
  forge check "watch files for changes" --level module`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	client, err := llm.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	finder := solutions.NewFinder(client)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
	defer cancel()

	result, err := finder.Check(ctx, solutions.Spec{
		Description: strings.Join(args, " "),
		Level:       solutions.Level(checkLevel),
		Features:    checkFeatures,
	})
	if err != nil {
		return err
	}

	if !result.ShouldUseLibrary {
		fmt.Println("No suitable existing solution found; custom code recommended.")
		if result.Recommendation != "" {
			fmt.Println(result.Recommendation)
		}
		return nil
	}

	var md strings.Builder
	fmt.Fprintf(&md, "## Recommendation\n\n%s\n\n", result.Recommendation)
	for _, s := range result.Solutions {
		fmt.Fprintf(&md, "### %s (match %.2f)\n\n%s\n\n", s.Name, s.MatchScore, s.Description)
		fmt.Fprintf(&md, "- Installation: `%s`\n- Documentation: %s\n", s.Installation, s.URL)
		if len(s.Pros) > 0 {
			fmt.Fprintf(&md, "- Pros: %s\n", strings.Join(s.Pros, ", "))
		}
		md.WriteString("\n")
	}
	if result.CodeExample != "" {
		fmt.Fprintf(&md, "### Example\n\n```go\n%s\n```\n", result.CodeExample)
	}

	fmt.Println(renderMarkdown(md.String()))
	return nil
}

func init() {
	checkCmd.Flags().StringVar(&checkLevel, "level", "function", "Solution granularity (function, module, package)")
	checkCmd.Flags().StringArrayVarP(&checkFeatures, "feature", "f", nil, "Required feature (repeatable)")

	rootCmd.AddCommand(checkCmd)
}
