package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorSafe     = "#22C55E"
	colorWarn     = "#EAB308"
	colorCritical = "#EF4444"
	colorStark    = "#3B82F6"
	colorGold     = "#F59E0B"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Italic(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorStark)).
			Bold(true)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	gutterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5F5F87"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGold)).
			Bold(true)

	terminalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSafe)).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(1)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSafe)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorSafe)).
			Padding(0, 1)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorCritical)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorCritical)).
			Padding(0, 1)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorCritical)).
			Bold(true)

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGold)).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(colorGold)).
			PaddingLeft(1)

	timelineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5F5F87"))

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGold)).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSafe))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(1, 3).
			Width(56)
)

// meterColor is the entropy bar colour for a resource level.
func meterColor(level int) string {
	switch {
	case level > 80:
		return colorCritical
	case level > 50:
		return colorWarn
	default:
		return colorSafe
	}
}
