// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

//go:build !windows

package fileutil

import "golang.org/x/sys/unix"

// IsReadable reports whether the current process may read path.
func IsReadable(path string) bool {
	mustPath(path)
	return access(path, unix.R_OK)
}

// IsWritable reports whether the current process may write path.
func IsWritable(path string) bool {
	mustPath(path)
	return access(path, unix.W_OK)
}

func access(path string, mode uint32) bool {
	_, err := retryInterrupted(func() (struct{}, error) {
		return struct{}{}, unix.Access(path, mode)
	})
	return err == nil
}
