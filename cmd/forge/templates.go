package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeforge/internal/generator"
	"codeforge/internal/llm"
)

// templatesCmd manages template packs
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available code templates",
	RunE:  runTemplatesList,
}

// templatesWatchCmd hot-reloads template packs while editing them
var templatesWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the templates directory and reload packs on change",
	Long: `Watches the configured templates_dir and reloads any *.yaml pack
that changes, until interrupted. Useful while authoring template packs.`,
	RunE: runTemplatesWatch,
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	client, err := llm.New(cfg)
	if err != nil {
		return err
	}
	g := generator.New(client, cfg)

	names := g.Templates().Names()
	if len(names) == 0 {
		fmt.Println("No templates loaded.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runTemplatesWatch(cmd *cobra.Command, args []string) error {
	if cfg.Generation.TemplatesDir == "" {
		return fmt.Errorf("generation.templates_dir is not configured")
	}

	g := generator.New(nil, cfg)
	watcher, err := generator.NewTemplateWatcher(g.Templates(), cfg.Generation.TemplatesDir)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Generation.TemplatesDir, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", cfg.Generation.TemplatesDir)
	watcher.Run(ctx)
	return nil
}

func init() {
	templatesCmd.AddCommand(templatesWatchCmd)
	rootCmd.AddCommand(templatesCmd)
}
