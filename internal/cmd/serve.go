package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clangcg/clangcg/internal/mcpserver"
	"github.com/clangcg/clangcg/internal/store"
)

var (
	serveDatabasePath string
	serveTools        []string
	serveTimeout      time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the call-graph query surface over MCP (stdio transport)",
	Long: `serve opens the store at --database-path and exposes its query surface
(find-functions-at, find-by-name, callers, overrides) as MCP tools over
stdio, for use by an AI agent instead of the CLI's query subcommands.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveDatabasePath, "database-path", "", "Directory the Dolt-backed store lives in (required)")
	serveCmd.Flags().StringSliceVar(&serveTools, "tools", nil, "Tools to expose (default: all)")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 0, "Exit after this long with no tool calls (0 = never)")
	serveCmd.MarkFlagRequired("database-path")
}

func runServe(cmd *cobra.Command, args []string) error {
	st, err := store.OpenFile(serveDatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	srv, err := mcpserver.New(st, mcpserver.Config{
		Tools:   serveTools,
		Timeout: serveTimeout,
	})
	if err != nil {
		return fmt.Errorf("starting MCP server: %w", err)
	}

	return srv.ServeStdio()
}
