package chatlist

import (
	"fmt"
	"strings"

	"github.com/adityaraul004/Chatbotapp/cli/tui/styles"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

const (
	dateLayout = "Jan 2, 2006"
	// Lines used by one chat entry, including the blank separator.
	itemHeight = 4
	// Lines used by the header and footer.
	chromeHeight = 6
)

// View renders the list.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.SidebarHeaderStyle.Render("Chats"))
	b.WriteString("\n")
	if m.creating {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	switch {
	case !m.loaded:
		b.WriteString(fmt.Sprintf("%s Loading chats...", m.spinner.View()))
		b.WriteString("\n")
	case len(m.chats) == 0:
		b.WriteString(styles.PlaceholderTitleStyle.Render("No chats yet"))
		b.WriteString("\n")
		b.WriteString(styles.PlaceholderStyle.Render("Create your first chat to get started"))
		b.WriteString("\n")
	default:
		start, end := m.visibleRange()
		for i := start; i < end; i++ {
			b.WriteString(m.renderChat(i, m.chats[i]))
			b.WriteString("\n")
		}
	}

	if m.confirmDeleteID != "" {
		b.WriteString(m.renderConfirmDialog())
		b.WriteString("\n")
	} else if m.focused {
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("n new · d delete · enter open"))
	}

	style := styles.SidebarStyle
	if m.focused {
		style = styles.SidebarFocusedStyle
	}
	if m.width > 0 {
		style = style.Width(m.width)
	}
	if m.height > 0 {
		style = style.Height(m.height)
	}
	return style.Render(b.String())
}

func (m *Model) renderChat(i int, chat *types.Chat) string {
	textWidth := 80
	if m.width > 0 {
		textWidth = max(m.width-4, 10)
	}

	marker := "  "
	if m.focused && i == m.cursor {
		marker = styles.CursorStyle.Render("› ")
	}
	titleStyle := styles.ChatTitleStyle
	if chat.ID == m.selected {
		titleStyle = styles.ChatSelectedTitleStyle
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString(titleStyle.Render(styles.Truncate(chat.Title, textWidth)))
	b.WriteString("\n")
	if preview := chat.Preview(); preview != nil {
		b.WriteString("  ")
		b.WriteString(styles.ChatPreviewStyle.Render(styles.Truncate(previewLine(preview), textWidth)))
		b.WriteString("\n")
	}
	b.WriteString("  ")
	b.WriteString(styles.TimestampStyle.Render(chat.UpdatedAt.Local().Format(dateLayout)))
	b.WriteString("\n")
	return b.String()
}

// previewLine flattens the latest message onto one line behind its author icon.
func previewLine(message *types.Message) string {
	icon := "👤 "
	if message.IsBot {
		icon = "🤖 "
	}
	return icon + strings.Join(strings.Fields(message.Content), " ")
}

func (m *Model) renderConfirmDialog() string {
	title := m.confirmDeleteID
	for _, chat := range m.chats {
		if chat.ID == m.confirmDeleteID {
			title = chat.Title
		}
	}
	var b strings.Builder
	b.WriteString(styles.ConfirmTitleStyle.Render("Delete this chat?"))
	b.WriteString("\n")
	b.WriteString(styles.Truncate(title, 24))
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("y to delete, n to cancel"))
	return styles.ConfirmBoxStyle.Render(b.String())
}

// visibleRange returns the window of chats that fits the height and holds the cursor.
func (m *Model) visibleRange() (int, int) {
	if m.height <= 0 {
		return 0, len(m.chats)
	}
	capacity := (m.height - chromeHeight) / itemHeight
	if capacity < 1 {
		capacity = 1
	}
	if len(m.chats) <= capacity {
		return 0, len(m.chats)
	}
	start := 0
	if m.cursor >= capacity {
		start = m.cursor - capacity + 1
	}
	return start, start + capacity
}
