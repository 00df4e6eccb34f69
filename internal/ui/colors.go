// Package ui holds the ANSI styling shared by help output and reports.
package ui

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Style wraps a string in ANSI codes
type Style func(string) string

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

// Success marks the cheapest entry and completed actions
func Success(s string) string {
	return ColorGreen + s + ColorReset
}

// Info is for secondary details such as the listed price
func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

// Warn is for skipped sources
func Warn(s string) string {
	return ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}

// Painter applies styles only when enabled, so callers need not branch on color support
type Painter bool

// Paint returns s styled when p is enabled and unchanged otherwise
func (p Painter) Paint(style Style, s string) string {
	if !p || style == nil {
		return s
	}
	return style(s)
}
