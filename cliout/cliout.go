// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cliout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Format represents the output format.
type Format string

const (
	// FormatDefault is the default human-readable format.
	FormatDefault Format = "default"
	// FormatJSON is JSON format.
	FormatJSON Format = "json"
)

// ANSI color codes for consistent styling
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
)

// Unicode symbols for modern CLI output
const (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolWarning = "⚠"
)

// ASCII fallback symbols for terminals that don't support Unicode
const (
	ASCIICheck   = "[+]"
	ASCIICross   = "[-]"
	ASCIIWarning = "[!]"
)

// colorMode is how color output is decided.
type colorMode int

const (
	colorAuto colorMode = iota
	colorAlways
	colorNever
)

var (
	// mu protects the settings below
	mu           sync.RWMutex
	globalFormat = FormatDefault
	color        = colorAuto
)

// ForceColor enables color output regardless of terminal detection.
func ForceColor() {
	mu.Lock()
	color = colorAlways
	mu.Unlock()
}

// NoColor disables color output.
func NoColor() {
	mu.Lock()
	color = colorNever
	mu.Unlock()
}

// AutoColor restores terminal detection: color only when stdout is a
// terminal and NO_COLOR is unset.
func AutoColor() {
	mu.Lock()
	color = colorAuto
	mu.Unlock()
}

// Color modes accepted by SetColor.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// SetColor selects the color mode by name: auto, always or never.
func SetColor(mode string) error {
	switch strings.ToLower(mode) {
	case ColorAuto, "":
		AutoColor()
	case ColorAlways:
		ForceColor()
	case ColorNever:
		NoColor()
	default:
		return fmt.Errorf("invalid color mode: %s (valid options: auto, always, never)", mode)
	}
	return nil
}

// colorEnabled reports whether ANSI codes should be written to stdout.
func colorEnabled() bool {
	mu.RLock()
	mode := color
	mu.RUnlock()

	switch mode {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// paint wraps s in the given ANSI code when color is enabled.
func paint(code, s string) string {
	if !colorEnabled() {
		return s
	}
	return code + s + Reset
}

// supportsUnicode detects if the terminal supports Unicode/emojis
var supportsUnicode = detectUnicodeSupport()

// detectUnicodeSupport checks if the terminal can display Unicode properly
func detectUnicodeSupport() bool {
	if runtime.GOOS != "windows" {
		// Unix-like systems generally support Unicode
		return true
	}
	// Windows Terminal, VS Code, ConEmu and PowerShell all render Unicode;
	// the legacy console does not.
	for _, env := range []string{"WT_SESSION", "ConEmuPID", "PSModulePath", "POWERSHELL_DISTRIBUTION_CHANNEL", "TERM"} {
		if os.Getenv(env) != "" {
			return true
		}
	}
	return os.Getenv("TERM_PROGRAM") == "vscode"
}

// getIcon returns the appropriate icon based on Unicode support
func getIcon(unicode, ascii string) string {
	if supportsUnicode {
		return unicode
	}
	return ascii
}

// SetFormat sets the global output format.
func SetFormat(format string) error {
	mu.Lock()
	defer mu.Unlock()
	switch format {
	case "default", "":
		globalFormat = FormatDefault
	case "json":
		globalFormat = FormatJSON
	default:
		return fmt.Errorf("invalid output format: %s (valid options: default, json)", format)
	}
	return nil
}

// GetFormat returns the current output format.
func GetFormat() Format {
	mu.RLock()
	defer mu.RUnlock()
	return globalFormat
}

// IsJSON returns true if the output format is JSON.
func IsJSON() bool {
	return GetFormat() == FormatJSON
}

// PrintJSON prints data as JSON to stdout.
func PrintJSON(data interface{}) error {
	return WriteJSON(os.Stdout, data)
}

// WriteJSON writes data as indented JSON to w.
func WriteJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Print outputs data in the configured format.
// For default format, uses the formatter function.
// For JSON format, marshals the data object.
func Print(data interface{}, formatter func()) error {
	if IsJSON() {
		return PrintJSON(data)
	}
	formatter()
	return nil
}

// Header prints a bold header with a divider
func Header(text string) {
	fmt.Printf("\n%s\n", paint(Bold, text))
	fmt.Println(strings.Repeat("=", len(text)))
}

// Success prints a success message with green checkmark
func Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("%s %s\n", paint(BrightGreen, getIcon(SymbolCheck, ASCIICheck)), msg)
}

// Error prints an error message with red X to stderr.
// In JSON mode the message is written as {"error": ...} instead.
func Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if IsJSON() {
		_ = WriteJSON(os.Stderr, map[string]string{"error": msg})
		return
	}
	cross := getIcon(SymbolCross, ASCIICross)
	if colorEnabled() {
		cross = BrightRed + cross + Reset
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", cross, msg)
}

// Warning prints a warning message with yellow triangle to stderr
func Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s  %s\n", paint(BrightYellow, getIcon(SymbolWarning, ASCIIWarning)), msg)
}

// Label prints a label and value pair
func Label(label, value string) {
	fmt.Printf("   %s %s\n", paint(Dim, fmt.Sprintf("%-12s", label+":")), value)
}

// Plain prints plain text without any formatting.
func Plain(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// Muted returns dim text.
func Muted(format string, args ...interface{}) string {
	return paint(Dim, fmt.Sprintf(format, args...))
}

// Bool returns "true" in green or "false" in red.
func Bool(v bool) string {
	if v {
		return paint(Green, "true")
	}
	return paint(Red, "false")
}

// Status colors an entry type: green for files and directories, yellow for
// other entries, red when nothing is there.
func Status(typ string) string {
	switch typ {
	case "file", "directory":
		return paint(BrightGreen, typ)
	case "other":
		return paint(BrightYellow, typ)
	case "none":
		return paint(BrightRed, typ)
	default:
		return typ
	}
}
