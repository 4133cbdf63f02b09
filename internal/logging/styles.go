package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorMode controls level coloring on terminal output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode converts a flag or config value into a ColorMode.
// Unknown values mean auto.
func ParseColorMode(s string) ColorMode {
	switch ColorMode(s) {
	case ColorAlways, ColorNever:
		return ColorMode(s)
	default:
		return ColorAuto
	}
}

// Level colors (ANSI 256).
const (
	colorGray   = "245"
	colorLime   = "154"
	colorYellow = "220"
	colorRed    = "196"
)

// palette paints padded level tokens.
type palette map[Level]lipgloss.Style

func newPalette(out io.Writer) palette {
	r := lipgloss.NewRenderer(out)
	// Color was already decided by ColorEnabled; don't let termenv veto it
	// for pipes and buffers.
	r.SetColorProfile(termenv.ANSI256)

	return palette{
		LevelDebug: r.NewStyle().Foreground(lipgloss.Color(colorGray)),
		LevelInfo:  r.NewStyle().Foreground(lipgloss.Color(colorLime)),
		LevelWarn:  r.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		LevelError: r.NewStyle().Bold(true).Foreground(lipgloss.Color(colorRed)),
	}
}

func (p palette) paint(l Level, s string) string {
	style, ok := p[l]
	if !ok {
		return s
	}
	return style.Render(s)
}

// ColorEnabled reports whether output to w should carry ANSI colors.
// Auto mode requires a terminal and an unset NO_COLOR.
func ColorEnabled(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
