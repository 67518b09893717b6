package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Field is one key/value line of a header, panel or result box.
type Field struct {
	Key   string
	Value string
}

// Header is a command banner with title, command, and parameters.
type Header struct {
	Title   string  // e.g., "GATEWAY CONFIGURATION"
	Command string  // e.g., "blegw-cfg show"
	Params  []Field // e.g., {"Storage", "/var/lib/blegw/blegw.db"}
	Width   int
}

// NewHeader creates a new header sized for the terminal
func NewHeader(title, command string, params ...Field) *Header {
	return &Header{
		Title:   title,
		Command: command,
		Params:  params,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header as a string
func (h *Header) Render() string {
	width := clampWidth(h.Width)

	top := lipgloss.JoinVertical(lipgloss.Left,
		HeaderTitleStyle.Render(strings.ToUpper(h.Title)),
		HeaderCommandStyle.Render(h.Command),
	)

	content := top
	if len(h.Params) > 0 {
		dividerWidth := width - 6 // Account for border and padding
		content = lipgloss.JoinVertical(lipgloss.Left,
			top,
			"  "+RenderHorizontalDivider(dividerWidth, "─"),
			renderFields(h.Params, 0),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Render(content)
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}

// renderFields aligns keys to the longest one, or to keyWidth when larger.
func renderFields(fields []Field, keyWidth int) string {
	for _, f := range fields {
		if n := len(f.Key) + 1; n > keyWidth {
			keyWidth = n
		}
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		key := KeyStyle.Render(padRight(f.Key+":", keyWidth))
		lines = append(lines, key+" "+ValueStyle.Render(f.Value))
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
