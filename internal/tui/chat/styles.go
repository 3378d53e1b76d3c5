package chat

import "github.com/charmbracelet/lipgloss"

// Styles 汇总界面用到的 lipgloss 样式。
type Styles struct {
	Title         lipgloss.Style
	Endpoint      lipgloss.Style
	User          lipgloss.Style
	Bot           lipgloss.Style
	Text          lipgloss.Style
	Input         lipgloss.Style
	InputFocused  lipgloss.Style
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
}

// DefaultStyles returns the palette used by New.
func DefaultStyles() Styles {
	accent := lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	muted := lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}

	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Endpoint: lipgloss.NewStyle().Foreground(muted),
		User:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1F6FEB", Dark: "#58A6FF"}),
		Bot:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}),
		Text:     lipgloss.NewStyle(),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		InputFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		Button: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 2),
		ButtonFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Foreground(accent).
			Bold(true).
			Padding(0, 2),
	}
}
