// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jongio/fileex/cliout"
	"github.com/jongio/fileex/logutil"
	"github.com/jongio/fileex/mcpserver"
	"github.com/jongio/fileex/metrics"
)

const metricsShutdownTimeout = 5 * time.Second

func (a *app) newMCPCmd() *cobra.Command {
	var (
		allow       []string
		metricsPort int
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve file operations as MCP tools over stdio",
		Long: `Starts an MCP server on stdin/stdout exposing file_exists, file_stat,
file_read, file_write and file_search.

With --allow (repeatable) every tool path must resolve inside one of the given
directories. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("allow") {
				a.cfg.MCP.AllowedDirs = allow
			}
			if flags.Changed("metrics-port") {
				a.cfg.MCP.MetricsPort = metricsPort
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if len(a.cfg.MCP.AllowedDirs) == 0 {
				cliout.Warning("no allowed directories configured, tools can reach any path")
			}

			srv, err := mcpserver.New(a.cfg, a.info.Version)
			if err != nil {
				return err
			}

			if port := a.cfg.MCP.MetricsPort; port > 0 {
				stop := serveMetrics(port)
				defer stop()
			}

			return srv.Serve(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().StringArrayVar(&allow, "allow", nil, "directory tool paths are confined to (repeatable)")
	cmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "serve Prometheus metrics on this port (0 disables)")
	return cmd
}

// serveMetrics starts the metrics endpoint and returns a function that stops it.
func serveMetrics(port int) func() {
	log := logutil.NewLogger("metrics")
	server := metrics.CreateServer(port)

	go func() {
		log.Info("serving metrics", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warn("metrics server shutdown failed", "error", err)
		}
	}
}
