// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Command fileex reads, writes and searches whole files from the shell or
// serves the same operations to MCP clients over stdio.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jongio/fileex/cliout"
	"github.com/jongio/fileex/fileutil"
)

// Exit codes. Failed file operations exit with a code per error kind.
const (
	ExitOK               = 0
	ExitIOError          = 1
	ExitNotFound         = 2
	ExitPermissionDenied = 3
	ExitTooLarge         = 4
	ExitInvalidEncoding  = 5
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run executes the CLI with args and returns the process exit code.
func run(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		cliout.Error("%v", err)
		return exitCode(err)
	}
	return ExitOK
}

// exitCode maps err to an exit code. Errors that did not come from a file
// operation (bad flags, invalid paths, config problems) exit with 1.
func exitCode(err error) int {
	var fe *fileutil.Error
	if !errors.As(err, &fe) {
		return ExitIOError
	}
	switch fe.Kind {
	case fileutil.KindNotFound:
		return ExitNotFound
	case fileutil.KindPermissionDenied:
		return ExitPermissionDenied
	case fileutil.KindTooLarge:
		return ExitTooLarge
	case fileutil.KindInvalidEncoding:
		return ExitInvalidEncoding
	default:
		return ExitIOError
	}
}
