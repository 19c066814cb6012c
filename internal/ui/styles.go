// Package ui is the terminal interaction surface: the colored statement
// report, the batch confirmation prompt, and the category picker used to
// resolve entries one at a time.
package ui

import (
	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorGreen  lipgloss.Color = "#a6e3a1"
	colorBlue   lipgloss.Color = "#89b4fa"
	colorRed    lipgloss.Color = "#f38ba8"
	colorYellow lipgloss.Color = "#f9e2af"
	colorText   lipgloss.Color = "#cdd6f4"
	colorMuted  lipgloss.Color = "#6c7086"
)

var (
	styleRecorded   = lipgloss.NewStyle().Foreground(colorGreen)
	styleRecognized = lipgloss.NewStyle().Foreground(colorBlue)
	styleManual     = lipgloss.NewStyle().Foreground(colorRed)
	styleAmbiguous  = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader     = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	styleMuted      = lipgloss.NewStyle().Foreground(colorMuted)
)

// FormatAmount renders signed minor units in the given ISO currency.
func FormatAmount(cents int64, currency string) string {
	return money.New(cents, currency).Display()
}
