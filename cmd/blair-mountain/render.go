package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/Restioson/blair-mountain/internal/diagnostic"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD166"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// renderDiagnostics prints every diagnostic one per line, errors first,
// with suggestions indented under their owner.
func renderDiagnostics(w io.Writer, diags *diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		fmt.Fprintln(w, severityLabel(d.Severity)+": "+d.String())

		for _, s := range d.Suggestions {
			fmt.Fprintln(w, dimStyle.Render("    suggestion: "+s))
		}
	}

	if diags.HasErrors() || diags.HasWarnings() {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d error(s), %d warning(s)",
			len(diags.Errors), len(diags.Warnings))))
	}
}

func severityLabel(s diagnostic.DiagnosticSeverity) string {
	switch s {
	case diagnostic.DiagnosticError:
		return errorStyle.Render(s.String())
	case diagnostic.DiagnosticWarning:
		return warnStyle.Render(s.String())
	default:
		return infoStyle.Render(s.String())
	}
}
