package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mark is what a piece of output shows, for styling.
type Mark int

// Marks.
const (
	MarkEqual     Mark = iota // unchanged line
	MarkChange                // line changed in place
	MarkDelete                // base line with no counterpart
	MarkInsert                // line with no base counterpart
	MarkSeparator             // unchanged separator line (ex: "# %%", "# -----")
	MarkLineNo
	MarkHeader // cell header
	MarkTitle  // notebook name
	MarkMuted  // column rules and other chrome
	MarkWarning
)

// Palette maps (notebook index, mark) to a style. It holds no mutable state; a Palette with color off renders every style as plain text.
type Palette struct {
	r     *lipgloss.Renderer
	color bool
}

// NewPalette returns a palette. When color is false, the renderer uses the Ascii profile so styles emit no escape codes.
func NewPalette(color bool) Palette {
	r := lipgloss.NewRenderer(io.Discard)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return Palette{r: r, color: color}
}

// Color reports whether p emits escape codes.
func (p Palette) Color() bool {
	return p.color
}

// notebookAccents are the accent colors of the base, B, and C.
var notebookAccents = [...]string{"39", "170", "178"}

// Style returns the style for m in the column of notebook notebookIndex (in request order). Only titles and headers vary by notebook.
func (p Palette) Style(notebookIndex int, m Mark) lipgloss.Style {
	s := p.r.NewStyle()
	switch m {
	case MarkChange:
		return s.Foreground(lipgloss.Color("214"))
	case MarkDelete:
		return s.Foreground(lipgloss.Color("203"))
	case MarkInsert:
		return s.Foreground(lipgloss.Color("78"))
	case MarkSeparator, MarkLineNo, MarkMuted:
		return s.Foreground(lipgloss.Color("243")).Faint(true)
	case MarkHeader:
		return s.Bold(true)
	case MarkTitle:
		return s.Bold(true).Foreground(lipgloss.Color(notebookAccents[notebookIndex%len(notebookAccents)]))
	case MarkWarning:
		return s.Foreground(lipgloss.Color("214")).Bold(true)
	default:
		return s
	}
}

// render styles str, or returns it unchanged when p has color off.
func (p Palette) render(notebookIndex int, m Mark, str string) string {
	if !p.color || str == "" {
		return str
	}
	return p.Style(notebookIndex, m).Render(str)
}
