package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	chatModel "github.com/zhouzirui/mathtutor-chat/internal/model/chat"
)

const (
	buttonLabel = "Say"
	// 按钮宽度: 标签 + 左右内边距 + 边框。
	buttonWidth = len(buttonLabel) + 4 + 2
	// 输入框边框与内边距占用的列数，外加提示符。
	lipglossFrame = 4 + 2
)

// View implements tea.Model.
func (m Model) View() string {
	header := m.styles.Title.Render("Math Tutor") + "  " + m.styles.Endpoint.Render(m.opts.Endpoint)

	inputStyle := m.styles.Input
	buttonStyle := m.styles.Button
	if m.focus == focusInput {
		inputStyle = m.styles.InputFocused
	} else {
		buttonStyle = m.styles.ButtonFocused
	}

	controls := lipgloss.JoinHorizontal(lipgloss.Top,
		inputStyle.Render(m.input.View()),
		buttonStyle.Render(buttonLabel),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		controls,
		m.help.View(m.keys),
	)
}

func (m Model) renderLog() string {
	if len(m.log) == 0 {
		return ""
	}

	width := m.viewport.Width
	if width <= 0 {
		width = defaultWidth
	}
	body := m.styles.Text.Width(width)

	var b strings.Builder
	for i, msg := range m.log {
		if i > 0 {
			b.WriteString("\n")
		}
		label := m.styles.User.Render("You")
		if msg.Sender == chatModel.SenderBot {
			label = m.styles.Bot.Render("Bot")
		}
		b.WriteString(body.Render(label + ": " + msg.Text))
	}
	return b.String()
}
