package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Terminal prints the status panel as a coloured block, for running
// without the LCD.
type Terminal struct {
	w io.Writer
	r *lipgloss.Renderer
}

// NewTerminal renders to w. Colours are dropped when w is not a terminal.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, r: lipgloss.NewRenderer(w)}
}

func (t *Terminal) RenderNormal(name, message string) error {
	return t.render("#00AAAA", "#000000", normalLine(name), message)
}

func (t *Terminal) RenderWarning(label string, value float64, unit, message string) error {
	return t.render("#FF0000", "#FFFFFF", warningLine(label, value, unit), message)
}

func (t *Terminal) render(bg, fg, first, second string) error {
	style := t.r.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(fg)).
		Bold(true).
		Padding(1, 2).
		Width(28)

	if _, err := fmt.Fprintln(t.w, style.Render(first+"\n\n"+second)); err != nil {
		return fmt.Errorf("%w: terminal write: %w", ErrDisplay, err)
	}
	return nil
}

func (t *Terminal) Close() error {
	return nil
}
