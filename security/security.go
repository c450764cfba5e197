// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

var (
	// ErrInvalidPath indicates a path contains invalid characters or patterns.
	ErrInvalidPath = errors.New("invalid path")
	// ErrPathTraversal indicates a path traversal attempt.
	ErrPathTraversal = errors.New("path traversal detected")
	// ErrOutsideAllowedDirs indicates a path resolves outside every allowed base directory.
	ErrOutsideAllowedDirs = errors.New("path is outside allowed directories")
	// ErrInsecureFilePermissions indicates a file has insecure (world-writable) permissions.
	ErrInsecureFilePermissions = errors.New("insecure file permissions")
)

// ValidatePathSyntax rejects paths no file operation can accept: the empty
// path and paths containing a NUL byte. It does not restrict where a path points.
func ValidatePathSyntax(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("%w: path contains NUL byte", ErrInvalidPath)
	}
	return nil
}

// ValidatePath checks if a path is safe to hand to a file operation on behalf
// of an untrusted caller. On top of ValidatePathSyntax it rejects ".." segments.
func ValidatePath(path string) error {
	if err := ValidatePathSyntax(path); err != nil {
		return err
	}
	if hasParentSegment(path) {
		return fmt.Errorf("%w: path contains parent directory reference", ErrPathTraversal)
	}
	if _, err := filepath.Abs(path); err != nil {
		return fmt.Errorf("%w: cannot resolve path: %w", ErrInvalidPath, err)
	}
	return nil
}

// hasParentSegment reports whether any element of path is "..".
// Names that merely contain dots, like "a..b", are allowed.
func hasParentSegment(path string) bool {
	return slices.Contains(strings.FieldsFunc(path, isSeparator), "..")
}

func isSeparator(r rune) bool {
	return r == '/' || r == filepath.Separator
}

// ValidatePathWithinBases validates a path and ensures it's within one of the allowed base directories.
// Symbolic links are resolved on both sides; for a path that does not exist yet the
// parent directory is resolved instead, so a write through a symlinked directory is
// still confined.
// Returns the resolved absolute path or an error.
// If no allowedBases are provided, it just validates the path structure.
func ValidatePathWithinBases(path string, allowedBases ...string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve path: %w", ErrInvalidPath, err)
	}
	realPath, err := resolve(filepath.Clean(absPath))
	if err != nil {
		return "", err
	}

	if len(allowedBases) == 0 {
		return realPath, nil
	}

	for _, base := range allowedBases {
		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		realBase, err := resolve(filepath.Clean(absBase))
		if err != nil {
			continue // skip bases we can't resolve
		}
		if realPath == realBase || strings.HasPrefix(realPath, realBase+string(filepath.Separator)) {
			return realPath, nil
		}
	}
	return "", ErrOutsideAllowedDirs
}

// resolve evaluates symlinks in path. When path does not exist, its parent is
// resolved and the final element re-attached.
func resolve(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("%w: cannot resolve symbolic links: %w", ErrInvalidPath, err)
	}

	dir, name := filepath.Split(path)
	dir = filepath.Clean(dir)
	if dir == path {
		return path, nil
	}
	realDir, err := resolve(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(realDir, name), nil
}

// ValidateFilePermissions checks if a file has secure permissions.
// On Unix systems, it ensures the file is not group- or world-writable.
// On Windows, this check is skipped as Windows uses ACLs differently.
// If the file is writable by others on non-Windows platforms, this returns
// ErrInsecureFilePermissions.
func ValidateFilePermissions(path string) error {
	// Skip permission check on Windows as it uses ACLs
	if runtime.GOOS == "windows" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Mode().Perm()&0o022 != 0 {
		return fmt.Errorf("%w: %s is group- or world-writable (%v)", ErrInsecureFilePermissions, path, info.Mode().Perm())
	}

	return nil
}
