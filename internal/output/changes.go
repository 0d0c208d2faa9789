package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ChangeSummary lists staged entries that differ between two reports.
type ChangeSummary struct {
	Added    []string
	Removed  []string
	Modified []string
}

// Empty reports whether nothing changed.
func (s ChangeSummary) Empty() bool {
	return len(s.Added) == 0 && len(s.Removed) == 0 && len(s.Modified) == 0
}

var (
	styleAdded    = lipgloss.NewStyle().Foreground(ColorGreen)
	styleRemoved  = lipgloss.NewStyle().Foreground(ColorBoldRed)
	styleModified = lipgloss.NewStyle().Foreground(ColorYellow)
)

// RenderChangeSummary renders one section per non-empty change kind:
//
//	Added:
//	  + name
func RenderChangeSummary(s ChangeSummary) string {
	var sb strings.Builder
	section := func(header, marker string, style lipgloss.Style, names []string) {
		if len(names) == 0 {
			return
		}
		sb.WriteString(style.Render(header))
		sb.WriteString("\n")
		for _, n := range names {
			sb.WriteString("  " + marker + " " + style.Render(n) + "\n")
		}
	}
	section("Added:", "+", styleAdded, s.Added)
	section("Removed:", "-", styleRemoved, s.Removed)
	section("Modified:", "~", styleModified, s.Modified)
	return sb.String()
}

// IndentDiff indents every non-empty line of diff.
func IndentDiff(diff, indent string) string {
	if diff == "" {
		return ""
	}

	var sb strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
