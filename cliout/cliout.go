// Package cliout provides output formatting for the urlkit command line.
// It supports human-readable text and JSON, with ANSI colours when the
// output is a terminal.
package cliout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
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

// ANSI codes for consistent styling
const (
	Reset        = "\033[0m"
	Bold         = "\033[1m"
	Dim          = "\033[2m"
	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightBlue   = "\033[94m"
)

// Symbols with ASCII fallbacks used when colour is off.
const (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"

	ASCIICheck   = "[+]"
	ASCIICross   = "[-]"
	ASCIIWarning = "[!]"
	ASCIIInfo    = "[i]"
)

var (
	mu           sync.RWMutex
	globalFormat           = FormatDefault
	out          io.Writer = os.Stdout
	color                  = detectColor(os.Stdout)
)

// detectColor enables colour only for terminals that did not opt out
// through NO_COLOR.
func detectColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// SetOutput redirects all output to w and disables colour.
// It returns a function that restores the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	mu.Lock()
	prevOut, prevColor := out, color
	out, color = w, false
	mu.Unlock()

	return func() {
		mu.Lock()
		out, color = prevOut, prevColor
		mu.Unlock()
	}
}

// NoColor disables colour output.
func NoColor() {
	mu.Lock()
	color = false
	mu.Unlock()
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

func writer() (io.Writer, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return out, color
}

func style(code, text string) string {
	if _, c := writer(); !c {
		return text
	}
	return code + text + Reset
}

func symbol(unicode, ascii string) string {
	if _, c := writer(); !c {
		return ascii
	}
	return unicode
}

func printf(format string, args ...any) {
	w, _ := writer()
	fmt.Fprintf(w, format, args...)
}

// PrintJSON writes data as indented JSON.
func PrintJSON(data any) error {
	w, _ := writer()
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Print outputs data in the configured format: JSON marshals data, the
// default format calls formatter.
func Print(data any, formatter func()) error {
	if IsJSON() {
		return PrintJSON(data)
	}
	formatter()
	return nil
}

// Header prints a bold header with a divider
func Header(text string) {
	printf("\n%s\n%s\n", style(Bold, text), strings.Repeat("=", len(text)))
}

// Success prints a success message with a green checkmark
func Success(format string, args ...any) {
	printf("%s %s\n", style(BrightGreen, symbol(SymbolCheck, ASCIICheck)), fmt.Sprintf(format, args...))
}

// Error prints an error message with a red cross
func Error(format string, args ...any) {
	printf("%s %s\n", style(BrightRed, symbol(SymbolCross, ASCIICross)), fmt.Sprintf(format, args...))
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	printf("%s  %s\n", style(BrightYellow, symbol(SymbolWarning, ASCIIWarning)), fmt.Sprintf(format, args...))
}

// Info prints an info message
func Info(format string, args ...any) {
	printf("%s  %s\n", style(BrightBlue, symbol(SymbolInfo, ASCIIInfo)), fmt.Sprintf(format, args...))
}

// Plain prints plain text without any formatting.
func Plain(format string, args ...any) {
	printf(format+"\n", args...)
}

// Label prints a label and value pair. Empty values are shown as "-".
func Label(label, value string) {
	if value == "" {
		value = "-"
	}
	printf("   %-12s %s\n", style(Dim, label+":"), value)
}

// URL styles a URL in bright blue.
func URL(u string) string {
	return style(BrightBlue, u)
}

// TableRow represents a row in a table as a map of column header to value.
type TableRow map[string]string

// Table prints a simple table with the given headers and rows.
func Table(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	widths := make(map[string]int, len(headers))
	for _, header := range headers {
		widths[header] = len(header)
	}
	for _, row := range rows {
		for _, header := range headers {
			if len(row[header]) > widths[header] {
				widths[header] = len(row[header])
			}
		}
	}

	var b strings.Builder
	b.WriteString("   ")
	for _, header := range headers {
		fmt.Fprintf(&b, "%-*s  ", widths[header], header)
	}
	b.WriteString("\n   ")
	for _, header := range headers {
		b.WriteString(strings.Repeat("─", widths[header]) + "  ")
	}
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString("   ")
		for _, header := range headers {
			fmt.Fprintf(&b, "%-*s  ", widths[header], row[header])
		}
		b.WriteByte('\n')
	}
	printf("%s", b.String())
}
