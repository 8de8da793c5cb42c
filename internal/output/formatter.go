// Package output formats user-facing messages on stdout. Colored status
// lines for humans, JSON for --json consumers. Debug detail belongs in the
// logger package, not here.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgWhite, color.Bold)
)

// stdout is the destination for all output (replaceable in tests).
var stdout io.Writer = os.Stdout

// SetWriter redirects output, returning a restore function. For tests.
func SetWriter(w io.Writer) func() {
	old := stdout
	stdout = w
	return func() { stdout = old }
}

// JSON outputs data as indented JSON
func JSON(data interface{}) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	_, _ = successColor.Fprintf(stdout, "✓ "+format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	_, _ = errorColor.Fprintf(stdout, "✗ "+format+"\n", args...)
}

// Warn prints a warning message
func Warn(format string, args ...interface{}) {
	_, _ = warnColor.Fprintf(stdout, "! "+format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	_, _ = infoColor.Fprintf(stdout, "→ "+format+"\n", args...)
}

// Print prints a plain message
func Print(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(stdout, format+"\n", args...)
}

// Header prints a bold section header followed by an underline.
func Header(text string) {
	_, _ = headerColor.Fprintln(stdout, text)
	_, _ = fmt.Fprintln(stdout, strings.Repeat("=", len(text)))
}

// Summary prints aligned label/value pairs, used for the final setup report.
func Summary(pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		_, _ = fmt.Fprintf(stdout, "  %-*s  %s\n", width, p[0], p[1])
	}
}
