package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"codeforge/internal/llm"
	"codeforge/internal/selfmod"
)

var historyFile string

// modifyCmd applies an LLM-generated change to one of forge's own files
var modifyCmd = &cobra.Command{
	Use:   "modify [file] [request]",
	Short: "Self-modify a source file",
	Long: `Applies a requested change to a source file. The target must match
one of the configured allowed_patterns. The original is backed up next
to the file before the modified version is written, and the change is
recorded in history.

Example:
  forge modify internal/quality/analyzer_go.go "penalize TODO comments"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runModify,
}

// rollbackCmd restores the latest backup of a modified file
var rollbackCmd = &cobra.Command{
	Use:   "rollback [file]",
	Short: "Restore a file from its most recent backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runRollback,
}

// historyCmd lists recorded self-modifications
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded self-modifications",
	RunE:  runHistory,
}

func runModify(cmd *cobra.Command, args []string) error {
	client, err := llm.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("self-modification requires an API key (set FORGE_API_KEY)")
	}

	engine, closeStore := newEngine(client)
	defer closeStore()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
	defer cancel()

	target := args[0]
	request := strings.Join(args[1:], " ")
	if err := engine.Modify(ctx, target, request); err != nil {
		return err
	}
	fmt.Printf("Modified %s (backup: %s%s)\n", target, target, cfg.SelfMod.BackupSuffix)
	return nil
}

func runRollback(cmd *cobra.Command, args []string) error {
	engine, closeStore := newEngine(nil)
	defer closeStore()

	if err := engine.Rollback(args[0]); err != nil {
		return err
	}
	fmt.Printf("Restored %s\n", args[0])
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer h.Close()

	mods, err := h.Modifications(historyFile)
	if err != nil {
		return err
	}
	if len(mods) == 0 {
		fmt.Println("No modifications recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tFILE\tREQUEST\tBACKUP")
	for _, m := range mods {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			m.CreatedAt.Format("2006-01-02 15:04"), m.File, truncate(m.Request, 60), m.BackupPath)
	}
	return w.Flush()
}

// newEngine wires a selfmod engine; the history store is optional.
func newEngine(client llm.Client) (*selfmod.Engine, func()) {
	var opts []selfmod.Option
	closer := func() {}
	if h, err := openHistory(); err == nil {
		opts = append(opts, selfmod.WithHistoryStore(h))
		closer = func() { _ = h.Close() }
	}
	engine := selfmod.New(client, cfg.SelfMod.AllowedPatterns, cfg.SelfMod.BackupSuffix, opts...)
	return engine, closer
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	historyCmd.Flags().StringVar(&historyFile, "file", "", "Only show modifications of this file")

	rootCmd.AddCommand(modifyCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(historyCmd)
}
