package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Events: bold cyan
	colorEvent = color.New(color.FgCyan, color.Bold)

	// Medication and procedures: magenta so doses stand out
	colorMed = color.New(color.FgMagenta)

	// Insight/results: yellow to make it pop
	colorInsight = color.New(color.FgYellow)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Today's heading
	colorToday = color.New(color.FgGreen, color.Bold)

	// Stats: green for counts
	colorStats = color.New(color.FgGreen)

	// Warnings and failed fetches
	colorWarn = color.New(color.FgRed)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatEvent(s string) string {
	return colorEvent.Sprint(s)
}

func formatMed(s string) string {
	return colorMed.Sprint(s)
}

// formatInsight formats text for insight output.
func formatInsight(s string) string {
	return colorInsight.Sprint(s)
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatToday(s string) string {
	return colorToday.Sprint(s)
}

// formatStats formats text for statistics.
func formatStats(s string) string {
	return colorStats.Sprint(s)
}

func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
