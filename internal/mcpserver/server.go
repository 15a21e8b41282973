// Package mcpserver provides an MCP (Model Context Protocol) server for
// clangcg, letting an AI agent query the call graph through MCP tools
// instead of the CLI's query subcommands.
//
// A Server wraps *server.MCPServer around an already-open store, tools
// are registered by name through a switch in registerTool, each tool's
// handler pulls typed arguments out of
// mcp.CallToolRequest.GetArguments(), and the process serves over stdio
// via server.ServeStdio.
package mcpserver

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/clangcg/clangcg/internal/store"
)

// Server wraps the MCP server with clangcg's query surface.
type Server struct {
	mcpServer *server.MCPServer
	store     *store.Store

	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration.
type Config struct {
	Tools   []string      // which tools to expose (empty = all)
	Timeout time.Duration // inactivity timeout (0 = no timeout)
}

// AllTools lists every available tool.
var AllTools = []string{
	"clangcg_find_functions_at",
	"clangcg_find_by_name",
	"clangcg_callers",
	"clangcg_overrides",
}

// New creates an MCP server around an already-open store. The caller
// retains ownership of st and must Close it after the server is done.
func New(st *store.Store, cfg Config) (*Server, error) {
	mcpServer := server.NewMCPServer(
		"clangcg",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		store:        st,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}

	for _, name := range toolsToRegister {
		if err := s.registerTool(name); err != nil {
			return nil, fmt.Errorf("registering tool %s: %w", name, err)
		}
		s.tools[name] = true
	}

	return s, nil
}

func (s *Server) registerTool(name string) error {
	switch name {
	case "clangcg_find_functions_at":
		return s.registerFindFunctionsAtTool()
	case "clangcg_find_by_name":
		return s.registerFindByNameTool()
	case "clangcg_callers":
		return s.registerCallersTool()
	case "clangcg_overrides":
		return s.registerOverridesTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport.
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "clangcg serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the names of registered tools.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}
