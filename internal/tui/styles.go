package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorSelected = lipgloss.Color("#FFD700") // Gold: cursor
	colorFocus    = lipgloss.Color("#00E676") // Green: current focus
	colorAncestor = lipgloss.Color("#5B8DEF") // Blue: navigable ancestors
	colorMuted    = lipgloss.Color("#636363")
	colorDanger   = lipgloss.Color("#FF5252")
	colorTitle    = lipgloss.Color("#00BFFF")
)

var (
	styleFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	styleTitle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true)

	styleSelected  = lipgloss.NewStyle().Foreground(colorSelected).Bold(true)
	styleFocus     = lipgloss.NewStyle().Foreground(colorFocus)
	styleFocusBold = styleFocus.Bold(true)
	styleAncestor  = lipgloss.NewStyle().Foreground(colorAncestor)
	styleSep       = lipgloss.NewStyle().Foreground(colorMuted)
	styleHelp      = lipgloss.NewStyle().Foreground(colorMuted)

	styleBack = lipgloss.NewStyle().
			Foreground(colorDanger).
			Background(lipgloss.Color("#000000"))

	styleError = lipgloss.NewStyle().Foreground(colorDanger)
)

const pathSeparator = " > "
