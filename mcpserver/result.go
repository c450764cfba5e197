// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mcpserver

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jongio/fileex/fileutil"
	"github.com/jongio/fileex/security"
)

// Error kinds reported by the server itself, in addition to fileutil.ErrorKind names.
const (
	KindInvalidArgument = "InvalidArgument"
	KindOutsideAllowed  = "OutsideAllowedDirs"
	KindRateLimited     = "RateLimited"
	KindUnavailable     = "Unavailable"
)

// ToolError is the JSON body of a failed tool call.
type ToolError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// getArgsMap extracts the arguments map from an MCP tool call request.
// Returns an empty map if arguments are nil or not a map.
func getArgsMap(request mcp.CallToolRequest) map[string]interface{} {
	if request.Params.Arguments != nil {
		if m, ok := request.Params.Arguments.(map[string]interface{}); ok {
			return m
		}
	}
	return map[string]interface{}{}
}

// marshalToolResult marshals any value to JSON and returns it as an MCP tool result.
func marshalToolResult(data interface{}) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal result: " + err.Error())
	}
	return mcp.NewToolResultText(string(jsonData))
}

func toolError(kind, message string) *mcp.CallToolResult {
	data, err := json.Marshal(ToolError{Kind: kind, Message: message})
	if err != nil {
		return mcp.NewToolResultError(message)
	}
	return mcp.NewToolResultError(string(data))
}

// errorKind names the kind reported to the client for err.
func errorKind(err error) string {
	switch {
	case errors.Is(err, security.ErrOutsideAllowedDirs):
		return KindOutsideAllowed
	case errors.Is(err, security.ErrInvalidPath), errors.Is(err, security.ErrPathTraversal):
		return KindInvalidArgument
	default:
		return fileutil.KindOf(err).String()
	}
}
