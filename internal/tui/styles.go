// Package tui provides the interactive terminal analyzer for subkana.
package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/subkana/internal/config"
	"github.com/f3rmion/subkana/internal/subkana"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#FF6B6B") // Red - titles, errors
	ColorSecondary = lipgloss.Color("#4ecdc4") // Teal - readings, prompts
	ColorAccent    = lipgloss.Color("#ffe66d") // Yellow - input, spinner
	ColorMuted     = lipgloss.Color("#666666") // Gray - help text
	ColorSuccess   = lipgloss.Color("#a8e6cf") // Green - copied notice
	ColorLabel     = lipgloss.Color("#a8dadc") // Section headers
	ColorBorder    = lipgloss.Color("#3d5a80") // Border color
)

// Palette is the set of styles for one panel theme.
type Palette struct {
	Box     lipgloss.Style
	Header  lipgloss.Style
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Reading lipgloss.Style
}

// Palettes mirror the dark and light panel themes.
var Palettes = map[config.Theme]Palette{
	config.ThemeDark: {
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2),
		Header:  lipgloss.NewStyle().Foreground(ColorLabel).Bold(true),
		Text:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")),
		Reading: lipgloss.NewStyle().Foreground(ColorSecondary).Italic(true),
	},
	config.ThemeLight: {
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#cccccc")).
			Padding(1, 2),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("#333333")).Bold(true),
		Text:    lipgloss.NewStyle().Foreground(lipgloss.Color("#333333")),
		Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
		Reading: lipgloss.NewStyle().Foreground(lipgloss.Color("#00838f")).Italic(true),
	},
}

// PaletteFor returns the palette for theme, dark when unknown.
func PaletteFor(theme config.Theme) Palette {
	if p, ok := Palettes[theme]; ok {
		return p
	}
	return Palettes[config.ThemeDark]
}

// LevelBadge renders a level as a colored badge.
func LevelBadge(l subkana.Level) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(l.BadgeTextColor())).
		Background(lipgloss.Color(l.Color())).
		Padding(0, 1).
		Render(string(l))
}

// LevelMark underlines highlighted sentence text in the level color.
func LevelMark(l subkana.Level) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Underline(true).
		Foreground(lipgloss.Color(l.Color()))
}

// Status styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(lipgloss.Color("#1a1a2e")).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Italic(true)

	CopiedStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	FilterOnStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	FilterOffStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Strikethrough(true).
			Padding(0, 1)
)
