// Package cliout provides output formatting for the fileex CLI.
//
// Two formats are supported:
//   - default: human-readable text with colors and Unicode symbols
//   - json: indented JSON for automation and scripting
//
// Set the format once from the --output flag:
//
//	if err := cliout.SetFormat("json"); err != nil {
//	    return err
//	}
//
// # Colors
//
// Colors are written only when stdout is a terminal and NO_COLOR is unset.
// ForceColor and NoColor override the detection; AutoColor restores it.
//
// # Unicode
//
// Symbols fall back to ASCII ([+], [-], [!], [i]) on the legacy Windows
// console. Windows Terminal, VS Code, ConEmu and PowerShell are detected
// through their environment variables; other platforms are assumed to
// render Unicode.
//
// Error and Warning write to stderr so that command output on stdout stays
// parseable.
package cliout
