// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package fileutil

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jongio/fileex/security"
)

// StringExistsInFile reports whether the text file at path contains substr.
// An empty substr never matches.
func StringExistsInFile(path, substr string, caseSensitive bool, opts ...Option) (bool, error) {
	n, err := search(path, substr, caseSensitive, true, opts)
	return n > 0, err
}

// CountStringInFile counts non-overlapping occurrences of substr in the text file at path.
// An empty substr counts as zero occurrences.
func CountStringInFile(path, substr string, caseSensitive bool, opts ...Option) (int, error) {
	return search(path, substr, caseSensitive, false, opts)
}

func search(path, substr string, caseSensitive, firstOnly bool, opts []Option) (count int, err error) {
	mustPath(path)
	start := time.Now()
	defer func() { finish(opSearch, path, start, 0, err) }()

	data, err := readPath(opSearch, path, newOptions(opts))
	if err != nil {
		return 0, err
	}
	if !utf8.Valid(data) {
		return 0, kindError(opSearch, path, KindInvalidEncoding, nil)
	}
	if substr == "" {
		return 0, nil
	}

	content := string(data)
	if !caseSensitive {
		content = strings.ToLower(content)
		substr = strings.ToLower(substr)
	}
	if firstOnly {
		if strings.Contains(content, substr) {
			return 1, nil
		}
		return 0, nil
	}
	return strings.Count(content, substr), nil
}

// ContainsText checks if a file contains the specified text.
// Returns false if file doesn't exist, can't be read, or validation fails.
func ContainsText(filePath string, text string) bool {
	if err := security.ValidatePath(filePath); err != nil {
		return false
	}
	found, err := StringExistsInFile(filePath, text, true)
	return err == nil && found
}
