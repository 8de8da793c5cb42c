package input

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// PasswordReader reads a secret without echoing it to the terminal.
type PasswordReader interface {
	ReadPassword() (string, error)
}

// TerminalPasswordReader reads a password from the controlling terminal with
// echo disabled. Falls back to a plain line read when stdin is not a TTY
// (piped input in scripted runs).
type TerminalPasswordReader struct{}

// NewTerminalPasswordReader creates a new TerminalPasswordReader
func NewTerminalPasswordReader() *TerminalPasswordReader {
	return &TerminalPasswordReader{}
}

// ReadPassword reads a password with echo suppressed.
func (r *TerminalPasswordReader) ReadPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := NewStdinReader()
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return trimNewline(line), nil
	}

	b, err := term.ReadPassword(fd)
	// ReadPassword swallows the operator's newline; restore it so the next
	// prompt starts on a fresh line.
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StaticPasswordReader returns pre-configured passwords for testing.
type StaticPasswordReader struct {
	Passwords []string
	Err       error
	index     int
}

// ReadPassword returns the next configured password.
func (r *StaticPasswordReader) ReadPassword() (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	if r.index >= len(r.Passwords) {
		return "", fmt.Errorf("no more passwords configured")
	}
	p := r.Passwords[r.index]
	r.index++
	return p, nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
