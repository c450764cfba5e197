// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/jongio/fileex/logutil"
	"github.com/jongio/fileex/metrics"
)

// File permissions
const (
	// DirPermission is the default permission for creating directories (rwxr-x---)
	DirPermission = 0750
	// FilePermission is the default permission for creating files (rw-r--r--)
	FilePermission = 0644
)

// Operation names used in errors, logs and metrics.
const (
	opExists        = "exists"
	opIsDirectory   = "is_directory"
	opIsRegularFile = "is_regular_file"
	opFileSize      = "file_size"
	opReadText      = "read_text"
	opReadBinary    = "read_binary"
	opWrite         = "write"
	opAtomicWrite   = "atomic_write"
	opSearch        = "search"
	opEnsureDir     = "ensure_dir"
)

// handle is the subset of *os.File the operations need.
type handle interface {
	io.Reader
	io.Writer
	io.Seeker
	Stat() (os.FileInfo, error)
	Sync() error
	Close() error
}

// osOps holds the OS entry points so tests can inject failures.
type osOps struct {
	openFile func(name string, flag int, perm os.FileMode) (handle, error)
	stat     func(name string) (os.FileInfo, error)
	lstat    func(name string) (os.FileInfo, error)
}

var sys = osOps{
	openFile: func(name string, flag int, perm os.FileMode) (handle, error) {
		// #nosec G304 -- callers choose the path; that is the purpose of this package
		return os.OpenFile(name, flag, perm)
	},
	stat:  os.Stat,
	lstat: os.Lstat,
}

// mustPath panics on an empty path. An empty path is a programming error,
// not a runtime condition, so it is not part of the error taxonomy.
func mustPath(path string) {
	if path == "" {
		panic("fileutil: empty path")
	}
}

// retryInterrupted calls fn and, if it fails with EINTR, calls it exactly once more.
func retryInterrupted[T any](fn func() (T, error)) (T, error) {
	v, err := fn()
	if errors.Is(err, syscall.EINTR) {
		return fn()
	}
	return v, err
}

// finish records the outcome of an operation.
func finish(op, path string, start time.Time, n int, err error) {
	result := metrics.ResultOK
	if err != nil {
		result = KindOf(err).String()
		logutil.NewLogger("fileutil").WithOperation(op).WithPath(path).
			Debug("file operation failed", "kind", result, "error", err)
	}
	metrics.RecordOperation(op, result, n, time.Since(start))
}

// Exists reports whether any filesystem entry exists at path.
// A dangling symlink counts as an entry.
func Exists(path string) bool {
	mustPath(path)
	start := time.Now()
	_, err := retryInterrupted(func() (os.FileInfo, error) { return sys.lstat(path) })
	metrics.RecordOperation(opExists, metrics.ResultOK, 0, time.Since(start))
	return err == nil
}

// IsDirectory reports whether path exists and is a directory (symlinks followed).
func IsDirectory(path string) bool {
	mustPath(path)
	start := time.Now()
	info, err := retryInterrupted(func() (os.FileInfo, error) { return sys.stat(path) })
	metrics.RecordOperation(opIsDirectory, metrics.ResultOK, 0, time.Since(start))
	return err == nil && info.IsDir()
}

// IsRegularFile reports whether path exists and is a regular file (symlinks followed).
func IsRegularFile(path string) bool {
	mustPath(path)
	start := time.Now()
	info, err := retryInterrupted(func() (os.FileInfo, error) { return sys.stat(path) })
	metrics.RecordOperation(opIsRegularFile, metrics.ResultOK, 0, time.Since(start))
	return err == nil && info.Mode().IsRegular()
}

// FileSize returns the size in bytes of the file at path.
func FileSize(path string) (size uint64, err error) {
	mustPath(path)
	start := time.Now()
	defer func() { finish(opFileSize, path, start, 0, err) }()

	info, err := retryInterrupted(func() (os.FileInfo, error) { return sys.stat(path) })
	if err != nil {
		return 0, newError(opFileSize, path, err)
	}
	if info.IsDir() {
		return 0, kindError(opFileSize, path, KindIO, &IsDirectoryError{Path: path})
	}
	return uint64(info.Size()), nil
}

// EnsureDir creates a directory (and parents) if it doesn't exist.
// Write operations never do this implicitly.
func EnsureDir(path string) (err error) {
	mustPath(path)
	start := time.Now()
	defer func() { finish(opEnsureDir, path, start, 0, err) }()

	if err := os.MkdirAll(path, DirPermission); err != nil {
		return newError(opEnsureDir, path, fmt.Errorf("failed to create directory: %w", err))
	}
	return nil
}
