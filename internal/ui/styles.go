package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// fwsetup colors and styles
var (
	ColorBlue   = lipgloss.Color("63")  // 🐳 Runtime/Technical
	ColorGreen  = lipgloss.Color("42")  // ✅ Success
	ColorYellow = lipgloss.Color("220") // ⚠️  Warning
	ColorRed    = lipgloss.Color("196") // ❌ Error
	ColorGray   = lipgloss.Color("240") // Subtle text

	// Text styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true).
			PaddingLeft(2)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			PaddingLeft(2)

	// Emoji icons
	IconRuntime = "🐳"
	IconPython  = "🐍"
	IconSuccess = "✅"
	IconWarning = "⚠️ "
	IconError   = "❌"
	IconPackage = "📦"
)
