// Package fileutil provides whole-file read and write operations for callers
// that do not want to manage file descriptors themselves.
//
// Every operation takes an explicit path (or an already-open *os.File) and
// returns a value or an error. The package keeps no state between calls.
//
// # Operations
//
//   - Exists, IsDirectory, IsRegularFile: entry checks; absence is false, not an error
//   - IsReadable, IsWritable: permission checks for the current process
//   - FileSize: size in bytes
//   - ReadTextFile, ReadBinaryFile: bounded whole-file reads
//   - ReadTextFrom, ReadBinaryFrom: the same over an open *os.File
//   - WriteFile, WriteTextFile: whole-file writes in Truncate or Append mode
//   - WriteTo, WriteTextTo: writes to an open *os.File
//   - StringExistsInFile, CountStringInFile, ContainsText: substring search
//   - AtomicWriteFile, AtomicWriteJSON, ReadJSON: temp-file-and-rename replacement and JSON helpers
//   - EnsureDir: explicit directory creation
//
// # Read Limit
//
// Reads refuse files larger than DefaultReadLimit (32 MiB) unless
// WithReadLimit is given. A read never returns a prefix: an oversized file
// fails with ErrTooLarge, including files that grow while being read.
//
// # Errors
//
// Failures are *Error values carrying an ErrorKind:
//
//   - KindNotFound: the path, or the parent directory of a write, is missing
//   - KindPermissionDenied: the OS refused access
//   - KindTooLarge: the file exceeds the read limit
//   - KindInvalidEncoding: a text read found invalid UTF-8
//   - KindIO: anything else
//
// Match kinds with errors.Is against the sentinels, or with KindOf:
//
//	data, err := fileutil.ReadTextFile("notes.txt")
//	switch {
//	case errors.Is(err, fileutil.ErrNotFound):
//	    // create it
//	case err != nil:
//	    return err
//	}
//
// The underlying OS error stays reachable through errors.Unwrap.
// An OS call interrupted by EINTR is retried exactly once.
//
// An empty path is a programming error and panics.
//
// # Writes
//
// WriteFile never creates missing parent directories; call EnsureDir first
// if that is wanted. A write that fails part way leaves the file in an
// indeterminate state. AtomicWriteFile writes a temporary file in the same
// directory, syncs it, and renames it over the target instead.
//
//	if err := fileutil.WriteTextFile("log.txt", "started\n", fileutil.Append); err != nil {
//	    return err
//	}
//
// # Concurrency
//
// Operations are synchronous. No locking is done beyond what the OS
// provides. Append writers issue each payload in a single write on an
// O_APPEND descriptor, so concurrent appends do not lose bytes; their order
// is unspecified.
//
// # File Permissions
//
//   - DirPermission (0750): used by EnsureDir
//   - FilePermission (0644): used when a write creates a file, unless WithPerm is given
package fileutil
