// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ReadJSON reads JSON from a file into the target interface.
// Returns nil error if file doesn't exist (target unchanged).
// The read is subject to the same limit as ReadBinaryFile.
func ReadJSON(path string, target interface{}, opts ...Option) error {
	data, err := ReadBinaryFile(path, opts...)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil // File doesn't exist, not an error
		}
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// AtomicWriteJSON writes data as indented JSON to a file atomically,
// with FilePermission.
func AtomicWriteJSON(path string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return AtomicWriteFile(path, jsonData, FilePermission)
}
