// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ErrorKind classifies a failed file operation.
type ErrorKind int

const (
	// KindIO is any OS-level failure not covered by a more specific kind.
	KindIO ErrorKind = iota
	// KindNotFound means the path (or its parent directory) does not exist.
	KindNotFound
	// KindPermissionDenied means the process may not access the path.
	KindPermissionDenied
	// KindTooLarge means the file exceeds the read limit.
	KindTooLarge
	// KindInvalidEncoding means a text read found bytes that are not valid UTF-8.
	KindInvalidEncoding
)

// Sentinel errors, one per kind. A *Error matches its kind's sentinel with errors.Is.
var (
	ErrIO               = errors.New("i/o error")
	ErrNotFound         = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTooLarge         = errors.New("file exceeds read limit")
	ErrInvalidEncoding  = errors.New("file is not valid UTF-8 text")
)

var kindNames = map[ErrorKind]string{
	KindIO:               "IOError",
	KindNotFound:         "NotFound",
	KindPermissionDenied: "PermissionDenied",
	KindTooLarge:         "TooLarge",
	KindInvalidEncoding:  "InvalidEncoding",
}

// String returns the kind name, e.g. "NotFound".
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindTooLarge:
		return ErrTooLarge
	case KindInvalidEncoding:
		return ErrInvalidEncoding
	default:
		return ErrIO
	}
}

// Error is the error returned by every fileutil operation.
type Error struct {
	Op   string
	Path string
	Kind ErrorKind
	// Err is the underlying cause, usually an *fs.PathError. May be nil.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind.sentinel())
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind.sentinel(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the kind of err. Errors that did not come from this
// package are classified from the OS error they wrap.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return classify(err)
}

// classify maps an OS error onto the taxonomy.
func classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindIO
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EROFS):
		return KindPermissionDenied
	default:
		return KindIO
	}
}

func newError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Kind: classify(err), Err: err}
}

func kindError(op, path string, kind ErrorKind, err error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

// TooLargeError describes a read rejected by the read limit.
type TooLargeError struct {
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	if e.Size < 0 {
		return fmt.Sprintf("content exceeds limit of %d bytes", e.Limit)
	}
	return fmt.Sprintf("size %d exceeds limit of %d bytes", e.Size, e.Limit)
}

// IsDirectoryError is returned when a whole-file operation targets a directory.
type IsDirectoryError struct {
	Path string
}

func (e *IsDirectoryError) Error() string {
	return fmt.Sprintf("%s is a directory", e.Path)
}
