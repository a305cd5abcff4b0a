package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"voicecal/internal/logging"
	"voicecal/internal/server"
)

// ToolHandler is the handler signature the MCP server expects. It is an
// alias so wrapped handlers stay assignable to mcp-go's ToolHandlerFunc.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with metrics and structured
// logging. Tool errors are reported through the result payload, so a result
// with IsError set counts as a failed invocation even when err is nil.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := logging.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = logging.StatusError
		}

		sc.Metrics().RecordToolInvocation(ctx, toolName, status, duration)
		sc.Logger().Info("tool invocation",
			logging.Tool(toolName),
			logging.Status(status),
			logging.Duration(duration),
		)

		return result, err
	}
}
