package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmPhrase is what the user must type to approve a destructive command.
const ConfirmPhrase = "ERASE"

// Confirm prints a warning box to out and reads one line from in. It returns
// true only when the line equals phrase.
func Confirm(in io.Reader, out io.Writer, title string, warnings []string, phrase string) bool {
	width := GetTerminalWidth()

	lines := []string{"", WarningTitleStyle.Render(fmt.Sprintf(" %s  WARNING  ─  %s", WarningMarker, title)), ""}
	for _, w := range warnings {
		lines = append(lines, ValueStyle.Render(" • "+w))
	}
	lines = append(lines, "")

	fmt.Fprintln(out, BoxStyle(width, lipgloss.DoubleBorder(), WarningColor).Render(strings.Join(lines, "\n")))
	fmt.Fprintln(out)
	fmt.Fprint(out, WarningTitleStyle.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", phrase)))

	input, err := bufio.NewReader(in).ReadString('\n')
	fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}
	if strings.TrimSpace(input) == phrase {
		return true
	}

	fmt.Fprintln(out, MutedStyle.Render("  Operation cancelled."))
	return false
}

// ConfirmErase asks before a factory reset of the store at path.
func ConfirmErase(in io.Reader, out io.Writer, path string) bool {
	return Confirm(in, out, "FACTORY RESET", []string{
		"Every stored setting in " + path + " will be erased",
		"The installed default profile is kept",
		"The gateway starts in hotspot mode on its next boot",
	}, ConfirmPhrase)
}
