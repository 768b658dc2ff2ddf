package cli

import "github.com/charmbracelet/lipgloss"

// Shared palette for CLI output and help. Reference (C) results lean cool,
// the rewrite (Rust) warm, matching the two hyperfine labels.
var (
	RustOrange = lipgloss.Color("#DEA584") // Rust brand tan/orange
	SteelBlue  = lipgloss.Color("#4682B4") // Reference implementation
	SignalRed  = lipgloss.Color("#DC143C") // Errors
	AmberGold  = lipgloss.Color("#FFB000") // Warnings and highlights

	// Accent colours
	SlateGray = lipgloss.Color("#708090") // Subtle text
)
