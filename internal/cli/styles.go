package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/vsbench/internal/matrix"
)

// Output destinations, swapped out by tests
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Color palette
var (
	primaryColor   = RustOrange
	accentColor    = SteelBlue
	errorColor     = SignalRed
	mutedColor     = SlateGray
	highlightColor = AmberGold
	textColor      = lipgloss.Color("#FFFFFF") // White
)

// Styles
var (
	// Title style - bold rust orange
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// Subtitle style - muted gray
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	// Scenario header style, one per hyperfine run
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1).
			MarginBottom(1)

	// Error message style
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	// Highlight style for important values
	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	// Filter ids in --list output
	FilterStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)
)

// PrintBanner prints the application banner
func PrintBanner() {
	banner := TitleStyle.Render("vsbench ⏱")
	subtitle := SubtitleStyle.Render("Benchmark zoomv (Rust) against mv (C) using hyperfine.")
	fmt.Fprintln(Stdout, banner)
	fmt.Fprintln(Stdout, subtitle)
	fmt.Fprintln(Stdout)
}

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Fprintln(Stdout, TitleStyle.Render("vsbench ⏱"))
	fmt.Fprintf(Stdout, "%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Fprintln(Stdout)
}

// PrintError prints an error message to stderr
func PrintError(message string) {
	fmt.Fprintf(Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintWarning prints a warning message to stderr
func PrintWarning(message string) {
	fmt.Fprintf(Stderr, "%s %s\n", HighlightStyle.Render("Warning:"), message)
}

// PrintInfo prints an informational message
func PrintInfo(key, value string) {
	fmt.Fprintf(Stdout, "%s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}

// FormatScenarioHeader renders "=== Super: default (8-bit) ===".
func FormatScenarioHeader(filterTitle, testName string, bits int) string {
	return HeaderStyle.Render(fmt.Sprintf("=== %s: %s (%d-bit) ===", filterTitle, testName, bits))
}

// WriteMatrix lists every filter and its tests with their parameters
func WriteMatrix(w io.Writer, reg *matrix.Registry) {
	var sb strings.Builder

	for i, f := range reg.Filters() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(FilterStyle.Render(f.ID))
		sb.WriteString(" ")
		sb.WriteString(KeyStyle.Render(fmt.Sprintf("(%d tests)", len(f.Tests))))
		sb.WriteString("\n")

		width := 0
		for _, t := range f.Tests {
			width = max(width, len(t.Name))
		}
		for _, t := range f.Tests {
			params := t.Params.String()
			if params == "" {
				params = "defaults"
			}
			sb.WriteString("  ")
			sb.WriteString(ValueStyle.Render(fmt.Sprintf("%-*s", width, t.Name)))
			sb.WriteString("  ")
			sb.WriteString(KeyStyle.Render(params))
			sb.WriteString("\n")
		}
	}

	fmt.Fprint(w, sb.String())
}
