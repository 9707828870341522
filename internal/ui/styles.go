package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

var currentTheme Theme = ThemeDark

type palette struct {
	Surface, Border, Text, TextDim lipgloss.Color
	Accent, Purple, Cyan, Green    lipgloss.Color
	Yellow, Comment                lipgloss.Color
}

// Dark Theme - Oasis Lagoon
var darkColors = palette{
	Surface: lipgloss.Color("#22385C"),
	Border:  lipgloss.Color("#264870"),
	Text:    lipgloss.Color("#D9E6FA"),
	TextDim: lipgloss.Color("#8FB0D0"),
	Accent:  lipgloss.Color("#58B8FD"),
	Purple:  lipgloss.Color("#C695FF"),
	Cyan:    lipgloss.Color("#68C0B6"),
	Green:   lipgloss.Color("#53D390"),
	Yellow:  lipgloss.Color("#F0E68C"),
	Comment: lipgloss.Color("#4D88A7"),
}

// Light Theme - Oasis Dawn
var lightColors = palette{
	Surface: lipgloss.Color("#D0E8FE"),
	Border:  lipgloss.Color("#B2DCFE"),
	Text:    lipgloss.Color("#10426d"),
	TextDim: lipgloss.Color("#1f3f71"),
	Accent:  lipgloss.Color("#1670AD"),
	Purple:  lipgloss.Color("#46259f"),
	Cyan:    lipgloss.Color("#064658"),
	Green:   lipgloss.Color("#1b491d"),
	Yellow:  lipgloss.Color("#6b2e00"),
	Comment: lipgloss.Color("#0D4266"),
}

// Active palette (set by InitTheme)
var colors palette

// themeMu guards the palette and styles during a live theme switch.
var themeMu sync.RWMutex

// InitTheme sets the active palette. Anything but "light" selects dark.
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	if theme == string(ThemeLight) {
		currentTheme = ThemeLight
		colors = lightColors
	} else {
		currentTheme = ThemeDark
		colors = darkColors
	}
	initStyles()
}

// CurrentTheme returns the active theme
func CurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

func init() {
	InitTheme("dark")
}

var (
	promptStyle      lipgloss.Style
	inputTextStyle   lipgloss.Style
	counterStyle     lipgloss.Style
	resultStyle      lipgloss.Style
	resultSelStyle   lipgloss.Style
	matchStyle       lipgloss.Style
	matchSelStyle    lipgloss.Style
	cursorStyle      lipgloss.Style
	panelStyle       lipgloss.Style
	panelActiveStyle lipgloss.Style
	titleStyle       lipgloss.Style
	titleStaleStyle  lipgloss.Style
	metaStyle        lipgloss.Style
	helpKeyStyle     lipgloss.Style
	helpDescStyle    lipgloss.Style
	commandStyle     lipgloss.Style
)

func initStyles() {
	promptStyle = lipgloss.NewStyle().Foreground(colors.Accent).Bold(true)
	inputTextStyle = lipgloss.NewStyle().Foreground(colors.Text)
	counterStyle = lipgloss.NewStyle().Foreground(colors.Comment)

	resultStyle = lipgloss.NewStyle().Foreground(colors.Text)
	resultSelStyle = lipgloss.NewStyle().Foreground(colors.Text).Background(colors.Surface).Bold(true)
	matchStyle = lipgloss.NewStyle().Foreground(colors.Green).Bold(true)
	matchSelStyle = matchStyle.Background(colors.Surface)
	cursorStyle = lipgloss.NewStyle().Foreground(colors.Accent).Background(colors.Surface).Bold(true)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.Border)
	panelActiveStyle = panelStyle.BorderForeground(colors.Accent)

	titleStyle = lipgloss.NewStyle().Foreground(colors.Purple).Bold(true)
	titleStaleStyle = lipgloss.NewStyle().Foreground(colors.TextDim).Italic(true)
	metaStyle = lipgloss.NewStyle().Foreground(colors.Comment).Italic(true)

	helpKeyStyle = lipgloss.NewStyle().Foreground(colors.Cyan).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(colors.TextDim)
	commandStyle = lipgloss.NewStyle().Foreground(colors.Yellow)
}
