// Package tools implements the MCP tool handlers for the workspace store.
//
// Each tool follows the same shape:
//   - a struct holding its dependencies, built by a NewXTool constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() translates arguments into one store call and renders the result
//
// Tools hold no state of their own. Successful calls return the indented
// JSON snapshot produced by the store; failures return an error result
// whose text is {"error":{"kind":...,"message":...}}.
package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

// ErrorBody is the payload of a failed tool call.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail names the error kind and carries a readable message.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// jsonResult renders v as the text content of a successful result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult converts a store error into a structured tool error.
// Tool errors are results, not protocol errors, so the caller can read them.
func errorResult(err error) *mcp.CallToolResult {
	body := ErrorBody{Error: ErrorDetail{
		Kind:    store.KindOf(err),
		Message: store.MessageOf(err),
	}}
	data, mErr := json.Marshal(body)
	if mErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(data))
}

// respond is the common tail of every handler.
func respond(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(v)
}

// stringsArg reads a list argument. Clients may send a JSON array of
// strings or a single string with one entry per line.
func stringsArg(req mcp.CallToolRequest, key string) []string {
	switch v := req.GetArguments()[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		var out []string
		for _, line := range strings.Split(v, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out
	}
	return nil
}

// userKeyOption is shared by every tool.
func userKeyOption() mcp.ToolOption {
	return mcp.WithString("user_key",
		mcp.Required(),
		mcp.Description("Workspace key. Every goal and story belongs to exactly one workspace; "+
			"use the same key on every call for the same user."),
	)
}
