package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codeforge/internal/config"
)

var initForce bool

// initCmd scaffolds a .forge workspace
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a .forge workspace in the current directory",
	Long: `Creates .forge/config.yaml with default settings and the log
directory. Existing configuration is left alone unless --force is given.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(".forge", "config.yaml")
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(".forge", "logs"), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	fmt.Printf("Initialized workspace: %s\n", path)
	fmt.Println("Set FORGE_API_KEY (or llm.api_key) to enable LLM-backed generation.")
	return nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration")
	rootCmd.AddCommand(initCmd)
}
