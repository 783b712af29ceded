package config

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// FallbackWidth is the output width when Width is 0 and f is not a terminal.
const FallbackWidth = 120

// OutputWidth returns c.Width, or f's terminal width when c.Width is 0.
func (c *Config) OutputWidth(f *os.File) int {
	if c.Width > 0 {
		return c.Width
	}
	if f != nil && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return FallbackWidth
}

// UseColor resolves c.Color for output to f. In auto mode, color is used only on terminals and only when NO_COLOR and CLICOLOR=0 are not set.
func (c *Config) UseColor(f *os.File) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	return !termenv.EnvNoColor()
}
