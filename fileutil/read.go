// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package fileutil

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"syscall"
	"time"
	"unicode/utf8"
)

// DefaultReadLimit is the largest file a read accepts unless WithReadLimit says otherwise.
const DefaultReadLimit int64 = 32 << 20

// Option configures a single operation.
type Option func(*options)

type options struct {
	readLimit int64
	perm      os.FileMode
	sync      bool
}

func newOptions(opts []Option) options {
	o := options{readLimit: DefaultReadLimit, perm: FilePermission}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithReadLimit sets the maximum number of bytes a read accepts.
// A limit <= 0 keeps DefaultReadLimit.
func WithReadLimit(limit int64) Option {
	return func(o *options) {
		if limit > 0 {
			o.readLimit = min(limit, math.MaxInt64-1)
		}
	}
}

// WithPerm sets the permission bits used when a write creates a new file.
func WithPerm(perm os.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// WithSync flushes written data to stable storage before the descriptor is closed.
func WithSync() Option {
	return func(o *options) {
		o.sync = true
	}
}

// ReadTextFile reads the whole file at path as UTF-8 text.
// Line endings are returned as stored.
func ReadTextFile(path string, opts ...Option) (content string, err error) {
	mustPath(path)
	start := time.Now()
	defer func() { finish(opReadText, path, start, len(content), err) }()

	data, err := readPath(opReadText, path, newOptions(opts))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", kindError(opReadText, path, KindInvalidEncoding, nil)
	}
	return string(data), nil
}

// ReadBinaryFile reads the whole file at path without interpreting it.
func ReadBinaryFile(path string, opts ...Option) (data []byte, err error) {
	mustPath(path)
	start := time.Now()
	defer func() { finish(opReadBinary, path, start, len(data), err) }()

	return readPath(opReadBinary, path, newOptions(opts))
}

// ReadTextFrom reads the whole content of an open file, from offset 0, as UTF-8 text.
// The caller keeps ownership of f.
func ReadTextFrom(f *os.File, opts ...Option) (content string, err error) {
	name := f.Name()
	start := time.Now()
	defer func() { finish(opReadText, name, start, len(content), err) }()

	data, err := readHandle(opReadText, name, f, newOptions(opts), true)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", kindError(opReadText, name, KindInvalidEncoding, nil)
	}
	return string(data), nil
}

// ReadBinaryFrom reads the whole content of an open file, from offset 0.
// The caller keeps ownership of f.
func ReadBinaryFrom(f *os.File, opts ...Option) (data []byte, err error) {
	name := f.Name()
	start := time.Now()
	defer func() { finish(opReadBinary, name, start, len(data), err) }()

	return readHandle(opReadBinary, name, f, newOptions(opts), true)
}

func readPath(op, path string, o options) ([]byte, error) {
	f, err := retryInterrupted(func() (handle, error) { return sys.openFile(path, os.O_RDONLY, 0) })
	if err != nil {
		return nil, newError(op, path, err)
	}
	defer func() { _ = f.Close() }()

	return readHandle(op, path, f, o, false)
}

// readHandle reads at most o.readLimit bytes and fails rather than truncating.
func readHandle(op, path string, f handle, o options, rewind bool) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, newError(op, path, err)
	}
	if info.IsDir() {
		return nil, kindError(op, path, KindIO, &IsDirectoryError{Path: path})
	}
	if info.Size() > o.readLimit {
		return nil, kindError(op, path, KindTooLarge, &TooLargeError{Size: info.Size(), Limit: o.readLimit})
	}

	if rewind {
		if _, err := retryInterrupted(func() (int64, error) { return f.Seek(0, io.SeekStart) }); err != nil {
			return nil, newError(op, path, err)
		}
	}

	var buf bytes.Buffer
	if size := info.Size(); size > 0 {
		buf.Grow(int(size) + 1)
	}
	// Read one byte past the limit so growth after Stat (or files that
	// report size 0, like procfs entries) is still caught.
	r := io.LimitReader(f, o.readLimit+1)
	if _, err := buf.ReadFrom(r); err != nil {
		if !errors.Is(err, syscall.EINTR) {
			return nil, newError(op, path, err)
		}
		if _, err := buf.ReadFrom(r); err != nil {
			return nil, newError(op, path, err)
		}
	}
	if int64(buf.Len()) > o.readLimit {
		return nil, kindError(op, path, KindTooLarge, &TooLargeError{Size: -1, Limit: o.readLimit})
	}
	return buf.Bytes(), nil
}
