package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ShouldUseColor reports whether CLI output should be colorized.
//
// Precedence (highest first):
//  1. NO_COLOR set (any value, including empty assignment) disables color
//  2. CLICOLOR=0 disables color
//  3. CLICOLOR_FORCE set enables color even without a TTY
//  4. Otherwise: stdout must be a TTY and the terminal must support color
func ShouldUseColor() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	if !IsTerminal() {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the stdout terminal width, or fallback when the
// size cannot be detected (pipes, tests, CI).
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}
