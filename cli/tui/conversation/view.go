package conversation

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adityaraul004/Chatbotapp/cli/tui/styles"
	"github.com/adityaraul004/Chatbotapp/internal/feed"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

const timeLayout = "3:04:05 PM"

// View renders the pane.
func (m *Model) View() string {
	if m.chatID == "" {
		return m.alertClipboardWrite.Render(m.renderPlaceholder())
	}

	var b strings.Builder
	if m.ready {
		b.WriteString(styles.ViewportStyle.Render(m.viewport.View()))
	} else {
		b.WriteString(m.renderMessages())
	}
	b.WriteString("\n")

	if m.sending {
		b.WriteString(fmt.Sprintf("%s Assistant is typing...", m.spinner.View()))
	} else {
		b.WriteString(styles.TextAreaStyle.Render(m.textarea.View()))
	}
	b.WriteString("\n")
	if m.focused {
		b.WriteString(styles.HelpStyle.Render("enter send · alt+enter newline · alt+w copy reply · pgup/pgdown scroll"))
	}

	return m.alertClipboardWrite.Render(b.String())
}

func (m *Model) renderPlaceholder() string {
	var b strings.Builder
	b.WriteString(styles.PlaceholderTitleStyle.Render("Welcome to Your AI Chatbot"))
	b.WriteString("\n")
	b.WriteString(styles.PlaceholderStyle.Render("Select a chat from the sidebar or create a new one to start chatting."))
	content := b.String()
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m *Model) renderMessages() string {
	messages := m.feed.Messages()
	if len(messages) == 0 {
		return styles.PlaceholderStyle.Render("No messages yet. Say hello!")
	}

	var b strings.Builder
	for i, message := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(message))
	}
	return b.String()
}

func (m *Model) renderMessage(message *types.Message) string {
	timestamp := styles.TimestampStyle.Render(message.CreatedAt.Local().Format(timeLayout))

	if message.IsBot {
		header := styles.AILabelStyle.Render("🤖 Assistant") + " " + timestamp
		body := styles.AIMessageStyle.Render(m.renderer.Render(message.ID, message.Content))
		return lipgloss.JoinVertical(lipgloss.Left, header, body)
	}

	style := styles.UserMessageStyle
	if message.ID == feed.PendingID {
		style = styles.PendingMessageStyle
	}
	if limit := m.width * 3 / 4; limit > 0 && lipgloss.Width(message.Content) > limit {
		style = style.Width(limit)
	}
	header := timestamp + " " + styles.UserLabelStyle.Render("👤 You")
	block := lipgloss.JoinVertical(lipgloss.Right, header, style.Render(message.Content))
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
	}
	return block
}
