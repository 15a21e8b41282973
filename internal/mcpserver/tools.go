package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/clangcg/clangcg/internal/store"
)

func (s *Server) registerFindFunctionsAtTool() error {
	tool := mcp.NewTool("clangcg_find_functions_at",
		mcp.WithDescription("Find every declaration, definition, and call enclosing a source position."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path as recorded in the store"),
		),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("1-based line number"),
		),
		mcp.WithNumber("column",
			mcp.Required(),
			mcp.Description("1-based column number"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleFindFunctionsAt)
	return nil
}

func (s *Server) registerFindByNameTool() error {
	tool := mcp.NewTool("clangcg_find_by_name",
		mcp.WithDescription("Find every declaration and definition with a given fully qualified name."),
		mcp.WithString("qualified_name",
			mcp.Required(),
			mcp.Description("Fully qualified name, e.g. ns::Class::method"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleFindByName)
	return nil
}

func (s *Server) registerCallersTool() error {
	tool := mcp.NewTool("clangcg_callers",
		mcp.WithDescription("List every call site targeting a function implementation."),
		mcp.WithNumber("impl_id",
			mcp.Required(),
			mcp.Description("Id of the target function's Decl or Impl row"),
		),
		mcp.WithBoolean("virtual",
			mcp.Description("Whether the target function is virtual (default: false)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleCallers)
	return nil
}

func (s *Server) registerOverridesTool() error {
	tool := mcp.NewTool("clangcg_overrides",
		mcp.WithDescription("List every override of a virtual method, keyed by the base method's qualified name."),
		mcp.WithString("base_qualified_name",
			mcp.Required(),
			mcp.Description("Qualified name of the base virtual method"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleOverrides)
	return nil
}

func (s *Server) handleFindFunctionsAt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}
	line, ok := args["line"].(float64)
	if !ok {
		return mcp.NewToolResultError("line parameter is required"), nil
	}
	column, ok := args["column"].(float64)
	if !ok {
		return mcp.NewToolResultError("column parameter is required"), nil
	}

	fns, err := s.store.FindFunctionsAt(path, uint32(line), uint32(column))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderFunctions(fns)), nil
}

func (s *Server) handleFindByName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	qn, ok := args["qualified_name"].(string)
	if !ok || qn == "" {
		return mcp.NewToolResultError("qualified_name parameter is required"), nil
	}

	fns, err := s.store.FindFunctionsByQualifiedName(qn)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderFunctions(fns)), nil
}

func (s *Server) handleCallers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	implID, ok := args["impl_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("impl_id parameter is required"), nil
	}
	virtual, _ := args["virtual"].(bool)

	fns, err := s.store.Callers(int64(implID), virtual)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderFunctions(fns)), nil
}

func (s *Server) handleOverrides(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	base, ok := args["base_qualified_name"].(string)
	if !ok || base == "" {
		return mcp.NewToolResultError("base_qualified_name parameter is required"), nil
	}

	fns, err := s.store.Overrides(base)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderFunctions(fns)), nil
}

// renderFunctions formats a query result as plain, line-oriented text -
// the same rendering the CLI's query commands use, so a tool call and
// an equivalent CLI invocation read identically.
func renderFunctions(fns []*store.Function) string {
	if len(fns) == 0 {
		return "no matches"
	}

	var b strings.Builder
	for _, f := range fns {
		fmt.Fprintf(&b, "%d\t%s\t%s\t%s\t%d:%d-%d:%d\n",
			f.ID, f.Kind, f.QualifiedName, f.Signature,
			f.Range.Start.Line, f.Range.Start.Column, f.Range.End.Line, f.Range.End.Column)
	}
	return b.String()
}
