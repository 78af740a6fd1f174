package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mcpTestRequest wraps ServerRequest for testing
type mcpTestRequest struct {
	mcp.ServerRequest[*mcp.CallToolParamsRaw]
}

func newMCPTestRequest(toolName string, args string) *mcpTestRequest {
	params := &mcp.CallToolParamsRaw{Name: toolName}
	if args != "" {
		params.Arguments = json.RawMessage(args)
	}
	return &mcpTestRequest{
		ServerRequest: mcp.ServerRequest[*mcp.CallToolParamsRaw]{Params: params},
	}
}

type observed struct {
	tool    string
	success bool
}

func newTestMiddleware(buf *bytes.Buffer, calls *[]observed) mcp.Middleware {
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	return MCPToolCallMiddleware(logger, func(tool string, _ time.Duration, success bool) {
		*calls = append(*calls, observed{tool: tool, success: success})
	})
}

func TestMCPToolCallMiddleware_Success(t *testing.T) {
	var buf bytes.Buffer
	var calls []observed
	mw := newTestMiddleware(&buf, &calls)

	next := func(_ context.Context, _ string, _ mcp.Request) (mcp.Result, error) {
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "ok"}}}, nil
	}

	result, err := mw(next)(context.Background(), methodToolsCall,
		newMCPTestRequest("interview_answer", `{"session_id":"sess-1","answer":"はい"}`))
	require.NoError(t, err)
	assert.False(t, result.(*mcp.CallToolResult).IsError)

	assert.Equal(t, []observed{{tool: "interview_answer", success: true}}, calls)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tool call", entry["msg"])
	assert.Equal(t, "interview_answer", entry["tool"])
	assert.Equal(t, "sess-1", entry["session_id"])
	assert.Equal(t, true, entry["success"])
	assert.NotContains(t, entry, "error")
}

func TestMCPToolCallMiddleware_ToolError(t *testing.T) {
	var buf bytes.Buffer
	var calls []observed
	mw := newTestMiddleware(&buf, &calls)

	next := func(_ context.Context, _ string, _ mcp.Request) (mcp.Result, error) {
		return createErrorResult("answer is required"), nil
	}

	_, err := mw(next)(context.Background(), methodToolsCall, newMCPTestRequest("interview_answer", ""))
	require.NoError(t, err)
	assert.Equal(t, []observed{{tool: "interview_answer", success: false}}, calls)
	assert.Contains(t, buf.String(), `"error":"answer is required"`)
}

func TestMCPToolCallMiddleware_HandlerError(t *testing.T) {
	var buf bytes.Buffer
	var calls []observed
	mw := newTestMiddleware(&buf, &calls)

	next := func(_ context.Context, _ string, _ mcp.Request) (mcp.Result, error) {
		return nil, errors.New("boom")
	}

	_, err := mw(next)(context.Background(), methodToolsCall, newMCPTestRequest("interview_start", ""))
	assert.EqualError(t, err, "boom")
	require.Len(t, calls, 1)
	assert.False(t, calls[0].success)
}

func TestMCPToolCallMiddleware_InvalidRequest(t *testing.T) {
	var buf bytes.Buffer
	var calls []observed
	mw := newTestMiddleware(&buf, &calls)

	next := func(_ context.Context, _ string, _ mcp.Request) (mcp.Result, error) {
		t.Fatal("next should not be called for an invalid request")
		return nil, nil
	}

	tests := []struct {
		name string
		req  mcp.Request
		want string
	}{
		{name: "nil request", req: nil, want: "missing params"},
		{name: "nil params", req: &mcpTestRequest{}, want: "missing params"},
		{name: "empty tool name", req: newMCPTestRequest("", ""), want: "missing tool name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := mw(next)(context.Background(), methodToolsCall, tt.req)
			require.NoError(t, err)
			callResult, ok := result.(*mcp.CallToolResult)
			require.True(t, ok)
			assert.True(t, callResult.IsError)
			assert.Contains(t, callResult.Content[0].(*mcp.TextContent).Text, tt.want)
		})
	}
	assert.Empty(t, calls)
}

func TestMCPToolCallMiddleware_PassesOtherMethods(t *testing.T) {
	var buf bytes.Buffer
	var calls []observed
	mw := newTestMiddleware(&buf, &calls)

	called := false
	next := func(_ context.Context, method string, _ mcp.Request) (mcp.Result, error) {
		called = true
		assert.Equal(t, "tools/list", method)
		return &mcp.ListToolsResult{}, nil
	}

	_, err := mw(next)(context.Background(), "tools/list", nil)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, calls)
	assert.Empty(t, buf.String())
}

func TestMCPToolCallMiddleware_NilObserver(t *testing.T) {
	mw := MCPToolCallMiddleware(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), nil)
	next := func(_ context.Context, _ string, _ mcp.Request) (mcp.Result, error) {
		return &mcp.CallToolResult{}, nil
	}
	_, err := mw(next)(context.Background(), methodToolsCall, newMCPTestRequest("interview_start", ""))
	assert.NoError(t, err)
}

func TestOutcome(t *testing.T) {
	ok, msg := outcome(&mcp.CallToolResult{IsError: true}, nil)
	assert.False(t, ok)
	assert.Equal(t, "tool error", msg)

	ok, msg = outcome(nil, nil)
	assert.True(t, ok)
	assert.Empty(t, msg)
}

func TestSessionIDArgument(t *testing.T) {
	assert.Empty(t, sessionIDArgument(&mcp.CallToolParamsRaw{Arguments: json.RawMessage(`not json`)}))
	assert.Empty(t, sessionIDArgument(&mcp.CallToolParamsRaw{}))
	assert.Equal(t, "x", sessionIDArgument(&mcp.CallToolParamsRaw{Arguments: json.RawMessage(`{"session_id":"x"}`)}))
}
