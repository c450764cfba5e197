// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

//go:build windows

package fileutil

import "os"

// IsReadable reports whether the current process may read path.
// Windows ACLs are not reflected in mode bits, so this probes with an open.
func IsReadable(path string) bool {
	mustPath(path)
	f, err := sys.openFile(path, os.O_RDONLY, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// IsWritable reports whether the current process may write path.
func IsWritable(path string) bool {
	mustPath(path)
	info, err := sys.stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return info.Mode().Perm()&0o200 != 0
	}
	f, err := sys.openFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
