// Package security provides path validation for the fileex boundaries.
//
// The core fileutil package trusts its callers: it accepts any path the OS
// accepts. Boundaries that take paths from outside the process (the CLI and
// the MCP server) validate them here first.
//
// # Path Validation
//
//   - ValidatePath rejects empty paths, NUL bytes and ".." segments
//   - ValidatePathWithinBases additionally resolves symbolic links and
//     confines the result to a set of allowed base directories; paths that
//     do not exist yet are confined through their resolved parent directory
//
// # Example Usage
//
//	realPath, err := security.ValidatePathWithinBases(userPath, "/srv/data")
//	if err != nil {
//	    return fmt.Errorf("invalid path: %w", err)
//	}
//
// # File Permissions
//
// ValidateFilePermissions reports ErrInsecureFilePermissions for
// group- or world-writable files on Unix. The config loader uses it to warn about
// config files anyone can modify.
package security
