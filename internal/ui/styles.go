package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors
	Primary   = lipgloss.Color("63")  // Purple/blue
	Secondary = lipgloss.Color("86")  // Cyan
	Success   = lipgloss.Color("78")  // Green
	Warning   = lipgloss.Color("214") // Orange
	Error     = lipgloss.Color("196") // Red
	TextDim   = lipgloss.Color("245") // Dimmer text

	// Stage tags
	resetTag  = lipgloss.NewStyle().Foreground(Secondary).Bold(true).Render("[RESET]")
	uploadTag = lipgloss.NewStyle().Foreground(Primary).Bold(true).Render("[UPLOAD]")
	selectTag = lipgloss.NewStyle().Foreground(Warning).Bold(true).Render("[SELECT]")
	hintTag   = lipgloss.NewStyle().Foreground(Warning).Bold(true).Render("[HINT]")
	errorTag  = lipgloss.NewStyle().Foreground(Error).Bold(true).Render("[ERROR]")

	// General
	SuccessStyle = lipgloss.NewStyle().Foreground(Success).Bold(true)
	DimStyle     = lipgloss.NewStyle().Foreground(TextDim)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
)

// Resetf prints a line for the serial reset/handshake stage.
func Resetf(format string, args ...any) {
	fmt.Printf(resetTag+" "+format+"\n", args...)
}

// Uploadf prints a line for the upload stage.
func Uploadf(format string, args ...any) {
	fmt.Printf(uploadTag+" "+format+"\n", args...)
}

// Selectf prints a line for the build selection stage.
func Selectf(format string, args ...any) {
	fmt.Printf(selectTag+" "+format+"\n", args...)
}

// Hintf prints an operator remediation hint.
func Hintf(format string, args ...any) {
	fmt.Printf(hintTag+" "+format+"\n", args...)
}

// Errorf prints a fatal diagnostic to stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, errorTag+" "+format+"\n", args...)
}
