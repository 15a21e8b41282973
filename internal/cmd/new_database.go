package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clangcg/clangcg/internal/config"
	"github.com/clangcg/clangcg/internal/store"
)

var (
	newDBPath              string
	newDBCompileCommands   string
	newDBIgnoredNamespaces []string
)

var newDatabaseCmd = &cobra.Command{
	Use:   "new-database",
	Short: "Create (overwriting) the database and populate it from a compilation database",
	Long: `new-database creates a fresh call-graph store at --database-path, overwriting
any existing contents, then indexes every translation unit named in
--compile-commands-json.

Each entry's compile command is rewritten into an AST-dump invocation (its -o
output flag stripped, "-Xclang -ast-dump -fsyntax-only" appended), run through
Clang, and the resulting AST text is parsed and walked into the store.

Exit codes: 0 on success; nonzero on CLI validation failure or a fatal I/O
error. Per-TU parse or walk failures are logged to stderr and do not abort
the run.`,
	RunE: runNewDatabase,
}

func init() {
	rootCmd.AddCommand(newDatabaseCmd)

	newDatabaseCmd.Flags().StringVar(&newDBPath, "database-path", "", "Directory to create the Dolt-backed store in (required)")
	newDatabaseCmd.Flags().StringVar(&newDBCompileCommands, "compile-commands-json", "", "Path to compile_commands.json (required)")
	newDatabaseCmd.Flags().StringSliceVar(&newDBIgnoredNamespaces, "ignored-namespaces", nil, "Namespaces to skip while walking (repeatable)")
	newDatabaseCmd.MarkFlagRequired("database-path")
	newDatabaseCmd.MarkFlagRequired("compile-commands-json")
}

func runNewDatabase(cmd *cobra.Command, args []string) error {
	if err := os.RemoveAll(newDBPath); err != nil {
		return fmt.Errorf("clearing existing database path: %w", err)
	}

	st, err := store.OpenFile(newDBPath)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer st.Close()

	ignoredNamespaces := newDBIgnoredNamespaces
	if len(ignoredNamespaces) == 0 {
		cfg, err := config.Load(".")
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		ignoredNamespaces = cfg.Index.IgnoredNamespaces
	}

	result, err := runCompilationDatabase(newDBCompileCommands, st, ingestOptions{
		write:             true,
		ignoredNamespaces: ignoredNamespaces,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "indexed %d/%d translation units\n", result.TotalUnits-result.FailedUnits, result.TotalUnits)
	if result.FailedUnits > 0 {
		fmt.Fprintf(os.Stderr, "clangcg: %d translation unit(s) failed; see messages above\n", result.FailedUnits)
	}
	return nil
}
