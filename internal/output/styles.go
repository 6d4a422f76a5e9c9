package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette: the ANSI 256 colors used in the CLI.
var (
	// ColorCyan is used for identifiable nouns: file paths, namespaces.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for the "create" file status.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "force" file status.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for the "delete" file status.
	ColorRed = lipgloss.Color("196")

	// ColorBoldRed is used for the "conflict" file status.
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns (paths, namespaces).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs.
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome and descriptions.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// File status constants reported when the file editor commits.
const (
	StatusCreate    = "create"
	StatusForce     = "force"
	StatusIdentical = "identical"
	StatusConflict  = "conflict"
	StatusSkip      = "skip"
	StatusDelete    = "delete"
)

// StatusStyle returns the lipgloss style for a file status.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusCreate:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusForce:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusIdentical, StatusSkip:
		return lipgloss.NewStyle().Faint(true)
	case StatusDelete:
		return lipgloss.NewStyle().Foreground(ColorRed)
	case StatusConflict:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// statusColumnWidth right-aligns status words so paths line up.
const statusColumnWidth = 10

// FormatFileLine renders a right-aligned, color-coded status followed by the path.
func FormatFileLine(status, path string) string {
	padding := statusColumnWidth - len(status)
	if padding < 1 {
		padding = 1
	}
	return strings.Repeat(" ", padding) + StatusStyle(status).Render(status) + " " + StyleNoun.Render(path)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatNamespace renders a generator namespace with the noun style.
func FormatNamespace(namespace string) string {
	return StyleNoun.Render(fmt.Sprintf("[%s]", namespace))
}
