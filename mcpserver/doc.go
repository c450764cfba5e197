// Package mcpserver exposes fileex operations as MCP tools over stdio.
//
// Tools: file_exists, file_stat, file_read, file_write and file_search.
// Every call is rate limited, every path is checked (and confined to the
// allowed directories when any are configured), and I/O failures feed a
// circuit breaker that rejects calls while it is open.
//
// Failures are returned as tool errors whose text is a JSON object:
//
//	{"kind": "NotFound", "message": "read_text /tmp/x: file not found: ..."}
package mcpserver
