package cli

import (
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// palette is the colour scheme for terminal output.
var palette = struct {
	Primary, Muted, Success, Warning, Error lipgloss.Color
}{
	Primary: lipgloss.Color("#7C3AED"), // Purple
	Muted:   lipgloss.Color("#6C7086"), // Medium gray
	Success: lipgloss.Color("#A6E3A1"), // Green
	Warning: lipgloss.Color("#F9E2AF"), // Yellow
	Error:   lipgloss.Color("#F38BA8"), // Red
}

// styles renders to one writer. Colour is only emitted when the writer is
// a terminal that supports it.
type styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)
	return &styles{
		Title:   r.NewStyle().Bold(true).Foreground(palette.Primary),
		Muted:   r.NewStyle().Foreground(palette.Muted),
		Success: r.NewStyle().Foreground(palette.Success),
		Warning: r.NewStyle().Foreground(palette.Warning),
		Error:   r.NewStyle().Foreground(palette.Error),
	}
}

// status renders label in the success or error colour.
func (s *styles) status(ok bool, label string) string {
	if ok {
		return s.Success.Render(label)
	}
	return s.Error.Render(label)
}

// score renders a quality score in its colour band.
func (s *styles) score(score int) string {
	style := s.Error
	switch {
	case score >= 90:
		style = s.Success
	case score >= 60:
		style = s.Warning
	}
	return style.Render(strconv.Itoa(score))
}

// terminalWidth returns the width of w when it is a terminal, or 80.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}
