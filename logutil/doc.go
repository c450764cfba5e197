// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package logutil holds the process-wide log/slog logger used by fileex.
//
// The CLI configures it once from the resolved config:
//
//	logutil.SetupLogger(os.Stderr, logutil.FormatJSON)
//	logutil.SetLevel(slog.LevelDebug)
//
// Packages log through a component logger, adding the operation and path
// they work on:
//
//	log := logutil.NewLogger("fileutil").WithOperation("read_text").WithPath(path)
//	log.Debug("file operation failed", "kind", kind, "error", err)
//
// The level lives in a shared slog.LevelVar, so SetLevel also changes
// loggers that were created before it was called. Logs go to stderr unless
// SetupLogger is given another writer.
package logutil
