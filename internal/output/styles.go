package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette: ANSI 256 colors used in the CLI.
// These are the single source of truth; never use inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: module names, paths.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for the "staged" status.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "overridden" status.
	ColorYellow = lipgloss.Color("220")

	// ColorBoldRed is used for the "failed" status (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark (✔).
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")

	// ColorBlue is used for table headers.
	ColorBlue = lipgloss.Color("12")
)

// Semantic styles for staging outcomes.
var (
	// StyleNoun styles identifiable nouns (module names, paths).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (staging, extracting, checking).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (scope prefixes, separators, timestamps).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Module status constants.
const (
	StatusStaged     = "staged"
	StatusSkipped    = "skipped"
	StatusOverridden = "overridden"
	StatusFailed     = "failed"
)

// StatusStyle returns the lipgloss style for a given module status string.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusStaged:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusOverridden:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusSkipped:
		return lipgloss.NewStyle().Faint(true)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minModuleColumnWidth is the minimum width for the module column
// before the status suffix. This keeps status words aligned.
const minModuleColumnWidth = 40

// FormatModuleLine renders a module name and kind with a right-aligned,
// color-coded status suffix.
//
// Format: m:<name> (<kind>)  <status>
func FormatModuleLine(name, kind, status string) string {
	label := name
	if kind != "" {
		label = fmt.Sprintf("%s (%s)", name, kind)
	}

	padding := minModuleColumnWidth - len(label)
	if padding < 2 {
		padding = 2
	}

	prefix := StyleDim.Render("m:")
	styledLabel := StyleNoun.Render(label)
	styledStatus := StatusStyle(status).Render(status)

	return prefix + styledLabel + strings.Repeat(" ", padding) + styledStatus
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}
