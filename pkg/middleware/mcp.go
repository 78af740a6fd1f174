// Package middleware provides MCP protocol-level middleware for the
// interview toolkit.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const methodToolsCall = "tools/call"

// ToolCallObserver receives the outcome of every tools/call request.
type ToolCallObserver func(tool string, elapsed time.Duration, success bool)

// MCPToolCallMiddleware creates MCP protocol-level middleware that logs
// tools/call requests and reports them to observe, which may be nil.
// Other methods pass through untouched.
func MCPToolCallMiddleware(logger *slog.Logger, observe ToolCallObserver) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != methodToolsCall {
				return next(ctx, method, req)
			}

			params, err := callParams(req)
			if err != nil {
				return createErrorResult("invalid request: " + err.Error()), nil
			}

			start := time.Now()
			result, err := next(ctx, method, req)
			elapsed := time.Since(start)

			success, errMsg := outcome(result, err)
			attrs := []any{
				"tool", params.Name,
				"duration_ms", elapsed.Milliseconds(),
				"success", success,
			}
			if id := sessionIDArgument(params); id != "" {
				attrs = append(attrs, "session_id", id)
			}
			if errMsg != "" {
				attrs = append(attrs, "error", errMsg)
			}
			logger.Info("tool call", attrs...)

			if observe != nil {
				observe(params.Name, elapsed, success)
			}
			return result, err
		}
	}
}

// callParams returns the typed params of a tools/call request.
func callParams(req mcp.Request) (*mcp.CallToolParamsRaw, error) {
	if req == nil {
		return nil, errors.New("missing params")
	}
	params, ok := req.GetParams().(*mcp.CallToolParamsRaw)
	if !ok || params == nil {
		return nil, errors.New("missing params")
	}
	if params.Name == "" {
		return nil, errors.New("missing tool name")
	}
	return params, nil
}

// sessionIDArgument returns the session_id argument, if any.
func sessionIDArgument(params *mcp.CallToolParamsRaw) string {
	if len(params.Arguments) == 0 {
		return ""
	}
	var args struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(params.Arguments, &args); err != nil {
		return ""
	}
	return args.SessionID
}

// outcome reports whether the call succeeded and, if not, why.
func outcome(result mcp.Result, err error) (bool, string) {
	if err != nil {
		return false, err.Error()
	}
	callResult, ok := result.(*mcp.CallToolResult)
	if !ok || callResult == nil || !callResult.IsError {
		return true, ""
	}
	if len(callResult.Content) > 0 {
		if text, ok := callResult.Content[0].(*mcp.TextContent); ok {
			return false, text.Text
		}
	}
	return false, "tool error"
}

// createErrorResult creates an MCP tool error result.
func createErrorResult(errMsg string) mcp.Result {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: errMsg},
		},
	}
}
