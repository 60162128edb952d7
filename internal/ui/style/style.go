// Package style provides the colors and glyphs shared by every terminal renderer.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Roast  = lipgloss.Color("#7C4A2D")
	Crema  = lipgloss.Color("#D9A066")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Glyphs.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
)
