// Package testutil provides common testing utilities for fileex packages.
//
// This package includes helpers for:
//   - Capturing stdout during test execution (CaptureOutput)
//   - Creating temporary directories and fixture files (TempDir, WriteFile)
//   - Counting open file descriptors to detect leaks (OpenFDs)
//
// All functions use t.Helper() for proper test line reporting.
//
// Example usage:
//
//	func TestNoLeak(t *testing.T) {
//	    before := testutil.OpenFDs(t)
//	    for range 100 {
//	        _, _ = fileutil.ReadTextFile(missing)
//	    }
//	    if after := testutil.OpenFDs(t); after != before {
//	        t.Errorf("descriptor leak: %d -> %d", before, after)
//	    }
//	}
package testutil
