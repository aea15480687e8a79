package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main accent color.
	PrimaryColor = lipgloss.Color("#7C3AED")
	SuccessColor = lipgloss.Color("#10B981")
	WarningColor = lipgloss.Color("#F59E0B")
	ErrorColor   = lipgloss.Color("#EF4444")
	SubtleColor  = lipgloss.Color("#6B7280")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SubtleColor)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PrimaryColor)
)

// tailwindColors maps the budget presentation tags to terminal colors.
var tailwindColors = map[string]lipgloss.Color{
	"bg-violet-500":  lipgloss.Color("#8B5CF6"),
	"bg-blue-500":    lipgloss.Color("#3B82F6"),
	"bg-pink-500":    lipgloss.Color("#EC4899"),
	"bg-emerald-500": lipgloss.Color("#10B981"),
	"bg-amber-500":   lipgloss.Color("#F59E0B"),
	"bg-indigo-500":  lipgloss.Color("#6366F1"),
}

// BudgetColor returns the terminal color for a budget color tag, falling
// back to the primary color.
func BudgetColor(tag string) lipgloss.Color {
	if c, ok := tailwindColors[tag]; ok {
		return c
	}
	return PrimaryColor
}

// FormatTitle renders a section title.
func FormatTitle(title string) string {
	return TitleStyle.Render(title)
}

func FormatSuccess(msg string) string {
	return SuccessStyle.Render("✓ " + msg)
}

func FormatError(msg string) string {
	return ErrorStyle.Render("✗ " + msg)
}
