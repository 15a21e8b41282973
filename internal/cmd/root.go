// Package cmd contains all CLI commands for clangcg.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version of clangcg.
	Version = "0.1.0"

	verbose    bool
	configPath string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "clangcg",
	Short: "Persistent C/C++ call-graph indexer built on Clang's AST dump",
	Long: `clangcg invokes Clang in AST-dump mode over the translation units named in
a compile_commands.json compilation database, walks the resulting AST text to
discover declarations, definitions, classes, inheritance, and calls, and
materializes them into a relational store.

The store can then be queried by position (what declares/implements/calls at
this file:line:column), by qualified name, for callers of an implementation,
or for overrides of a virtual method - either from the CLI's query commands
or through the MCP server started by 'clangcg serve'.

Examples:
  clangcg new-database --database-path .clangcg/db --compile-commands-json compile_commands.json
  clangcg dry-run --compile-commands-json compile_commands.json
  clangcg query find-at --database-path .clangcg/db --path src/main.cpp --line 10 --column 5
  clangcg serve --database-path .clangcg/db

See 'clangcg <command> --help' for command-specific options.`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file; no command reads this flag (new-database and dry-run use .clangcg/config.yaml, searched upward from the working directory)")
}
