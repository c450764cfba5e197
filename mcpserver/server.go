// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/jongio/fileex/config"
	"github.com/jongio/fileex/fileutil"
	"github.com/jongio/fileex/logutil"
	"github.com/jongio/fileex/metrics"
	"github.com/jongio/fileex/security"
)

// ServerName is the name announced to MCP clients.
const ServerName = "fileex"

// BreakerName labels the circuit breaker in logs and metrics.
const BreakerName = "fileutil"

// Tool call outcomes recorded in metrics.
const (
	outcomeOK          = "ok"
	outcomeError       = "error"
	outcomeRateLimited = "rate_limited"
	outcomeCircuitOpen = "circuit_open"
)

// Server serves fileutil operations as MCP tools.
type Server struct {
	mcp       *server.MCPServer
	allowed   []string
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	readOpts  []fileutil.Option
	writeOpts []fileutil.Option
	log       *logutil.ComponentLogger
}

// New creates a server from cfg. Every allowed directory must exist.
func New(cfg *config.Config, version string) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	allowed := make([]string, 0, len(cfg.MCP.AllowedDirs))
	for _, dir := range cfg.MCP.AllowedDirs {
		if err := security.ValidatePath(dir); err != nil {
			return nil, fmt.Errorf("allowed directory %q: %w", dir, err)
		}
		if !fileutil.IsDirectory(dir) {
			return nil, fmt.Errorf("allowed directory %q is not a directory", dir)
		}
		allowed = append(allowed, dir)
	}

	s := &Server{
		allowed:   allowed,
		limiter:   rate.NewLimiter(rate.Limit(cfg.MCP.RateLimit), cfg.MCP.Burst),
		readOpts:  cfg.ReadOptions(),
		writeOpts: cfg.WriteOptions(),
		log:       logutil.NewLogger("mcpserver"),
	}

	failures := cfg.MCP.BreakerFailures
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1,
		Timeout:     cfg.MCP.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return !isFault(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			s.log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			metrics.RecordCircuitBreakerState(name, to)
		},
	})
	metrics.RecordCircuitBreakerState(BreakerName, gobreaker.StateClosed)

	s.mcp = server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithHooks(s.hooks()),
	)
	s.registerTools()

	return s, nil
}

// isFault reports whether err points at the filesystem rather than the request.
// Only faults count against the circuit breaker. Naming a directory where a
// file is expected is an I/O error to the caller but not a fault.
func isFault(err error) bool {
	if err == nil || fileutil.KindOf(err) != fileutil.KindIO {
		return false
	}
	var de *fileutil.IsDirectoryError
	return !errors.As(err, &de) && !errors.Is(err, syscall.EISDIR)
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP over in and out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.log.Info("serving MCP over stdio", "allowed_dirs", s.allowed)
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeAny(func(ctx context.Context, id any, method mcp.MCPMethod, message any) {
		s.log.Debug("mcp request", "id", id, "method", string(method))
	})
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		s.log.Warn("mcp request failed", "id", id, "method", string(method), "error", err)
	})
	return hooks
}

// resolvePath validates a client-supplied path and confines it to the allowed
// directories. The returned path is the one operations must use.
func (s *Server) resolvePath(path string) (string, error) {
	if len(s.allowed) == 0 {
		if err := security.ValidatePath(path); err != nil {
			return "", err
		}
		return path, nil
	}
	return security.ValidatePathWithinBases(path, s.allowed...)
}

// execute runs a file operation through the circuit breaker.
func (s *Server) execute(fn func() (interface{}, error)) (interface{}, error) {
	return s.breaker.Execute(fn)
}

// toolFunc implements one tool. It returns the value to encode as the result.
type toolFunc func(ctx context.Context, req mcp.CallToolRequest) (interface{}, error)

// argError reports a missing or malformed tool argument.
type argError struct {
	err error
}

func (e *argError) Error() string { return e.err.Error() }
func (e *argError) Unwrap() error { return e.err }

// handle wraps fn with rate limiting, error encoding and metrics.
func (s *Server) handle(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.limiter.Allow() {
			metrics.RecordToolCall(name, outcomeRateLimited)
			return toolError(KindRateLimited,
				fmt.Sprintf("rate limit exceeded for tool %q, please wait before retrying", name)), nil
		}

		result, err := fn(ctx, req)
		if err == nil {
			metrics.RecordToolCall(name, outcomeOK)
			return marshalToolResult(result), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordToolCall(name, outcomeCircuitOpen)
			return toolError(KindUnavailable, "file operations temporarily unavailable: "+err.Error()), nil
		}

		kind := errorKind(err)
		var ae *argError
		if errors.As(err, &ae) {
			kind = KindInvalidArgument
		}
		metrics.RecordToolCall(name, outcomeError)
		s.log.WithOperation(name).Debug("tool call failed", "kind", kind, "error", err)
		return toolError(kind, err.Error()), nil
	}
}
