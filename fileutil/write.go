// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// WriteMode selects whether a write replaces or extends existing content.
type WriteMode int

const (
	// Truncate replaces any existing content.
	Truncate WriteMode = iota
	// Append adds to the end of existing content.
	Append
)

func (m WriteMode) String() string {
	switch m {
	case Truncate:
		return "truncate"
	case Append:
		return "append"
	default:
		return fmt.Sprintf("WriteMode(%d)", int(m))
	}
}

// ParseWriteMode parses "truncate" or "append" (case-insensitive).
func ParseWriteMode(s string) (WriteMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "truncate", "":
		return Truncate, nil
	case "append":
		return Append, nil
	default:
		return Truncate, fmt.Errorf("invalid write mode %q (valid options: truncate, append)", s)
	}
}

func (m WriteMode) flags() int {
	switch m {
	case Truncate:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case Append:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		panic(fmt.Sprintf("fileutil: invalid write mode %d", int(m)))
	}
}

// WriteFile writes content to path. Missing parent directories are not created.
//
// If the write fails part way, the file holds whatever the OS left behind:
// neither the old nor the new content is guaranteed. Use AtomicWriteFile
// when all-or-nothing replacement is required.
func WriteFile(path string, content []byte, mode WriteMode, opts ...Option) (err error) {
	mustPath(path)
	flag := mode.flags()
	o := newOptions(opts)
	start := time.Now()
	defer func() { finish(opWrite, path, start, len(content), err) }()

	f, err := retryInterrupted(func() (handle, error) { return sys.openFile(path, flag, o.perm) })
	if err != nil {
		return newError(opWrite, path, err)
	}
	defer func() {
		// Close can surface deferred write errors (NFS, quota).
		if cerr := f.Close(); cerr != nil && err == nil {
			err = newError(opWrite, path, cerr)
		}
	}()

	if err := writeAll(f, content); err != nil {
		return newError(opWrite, path, err)
	}
	if o.sync {
		if err := f.Sync(); err != nil {
			return newError(opWrite, path, err)
		}
	}
	return nil
}

// WriteTextFile is WriteFile for string content.
func WriteTextFile(path string, content string, mode WriteMode, opts ...Option) error {
	return WriteFile(path, []byte(content), mode, opts...)
}

// WriteTo writes content to an open file at its current offset.
// The caller keeps ownership of f.
func WriteTo(f *os.File, content []byte) (err error) {
	name := f.Name()
	start := time.Now()
	defer func() { finish(opWrite, name, start, len(content), err) }()

	if err := writeAll(f, content); err != nil {
		return newError(opWrite, name, err)
	}
	return nil
}

// WriteTextTo is WriteTo for string content.
func WriteTextTo(f *os.File, content string) error {
	return WriteTo(f, []byte(content))
}

// writeAll issues content in a single Write call so O_APPEND writers do not
// interleave. An EINTR after a partial write resumes with the remainder once.
func writeAll(f handle, content []byte) error {
	n, err := f.Write(content)
	if err != nil && errors.Is(err, syscall.EINTR) {
		_, err = f.Write(content[n:])
	}
	return err
}

// AtomicWriteFile writes raw bytes to a file atomically.
// It writes to a temporary file first, then renames it to the target path.
// This ensures the file is never left in a partial/corrupt state.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) (err error) {
	mustPath(path)
	start := time.Now()
	defer func() { finish(opAtomicWrite, path, start, len(data), err) }()

	// Create a unique temp file in the same directory to avoid concurrent
	// writers using the same temp filename and causing rename failures.
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return newError(opAtomicWrite, path, fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpPath := tmpFile.Name()
	// Ensure file is closed on all paths
	defer func() { _ = tmpFile.Close() }()

	fail := func(msg string, cause error) error {
		_ = os.Remove(tmpPath)
		return newError(opAtomicWrite, path, fmt.Errorf("%s: %w", msg, cause))
	}

	if err := writeAll(tmpFile, data); err != nil {
		return fail("failed to write temp file", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fail("failed to sync temp file", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fail("failed to close temp file", err)
	}
	// Set permissions before rename so the final file never appears with the temp mode.
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fail("failed to set file permissions", err)
	}

	// Perform a few retries with backoff to mitigate transient rename races.
	var renameErr error
	for attempt := 0; attempt < 5; attempt++ {
		renameErr = os.Rename(tmpPath, path)
		if renameErr == nil {
			break
		}
		if attempt < 4 { // Don't sleep on last attempt
			time.Sleep(time.Duration(20*(attempt+1)) * time.Millisecond) // 20ms, 40ms, 60ms, 80ms
		}
	}
	if renameErr != nil {
		return fail("failed to rename temp file", renameErr)
	}
	return nil
}
