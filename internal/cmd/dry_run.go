package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clangcg/clangcg/internal/config"
	"github.com/clangcg/clangcg/internal/store"
)

var (
	dryRunCompileCommands   string
	dryRunIgnoredNamespaces []string
)

var dryRunCmd = &cobra.Command{
	Use:   "dry-run",
	Short: "Parse every translation unit in a compilation database without writing a store",
	Long: `dry-run runs the same Clang-invoke / parse / walk pipeline as new-database,
against a scratch in-memory store that is discarded once the run finishes.
Useful for validating that a compilation database and the available Clang
invocation actually produce a consistent AST before committing to a real
database.`,
	RunE: runDryRun,
}

func init() {
	rootCmd.AddCommand(dryRunCmd)

	dryRunCmd.Flags().StringVar(&dryRunCompileCommands, "compile-commands-json", "", "Path to compile_commands.json (required)")
	dryRunCmd.Flags().StringSliceVar(&dryRunIgnoredNamespaces, "ignored-namespaces", nil, "Namespaces to skip while walking (repeatable)")
	dryRunCmd.MarkFlagRequired("compile-commands-json")
}

func runDryRun(cmd *cobra.Command, args []string) error {
	st, err := store.OpenMemory()
	if err != nil {
		return fmt.Errorf("opening scratch store: %w", err)
	}
	defer st.Close()

	ignoredNamespaces := dryRunIgnoredNamespaces
	if len(ignoredNamespaces) == 0 {
		cfg, err := config.Load(".")
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		ignoredNamespaces = cfg.Index.IgnoredNamespaces
	}

	result, err := runCompilationDatabase(dryRunCompileCommands, st, ingestOptions{
		write:             false,
		ignoredNamespaces: ignoredNamespaces,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "parsed %d/%d translation units\n", result.TotalUnits-result.FailedUnits, result.TotalUnits)
	if result.FailedUnits > 0 {
		fmt.Fprintf(os.Stderr, "clangcg: %d translation unit(s) failed; see messages above\n", result.FailedUnits)
	}
	return nil
}
