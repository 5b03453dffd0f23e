package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/adityaraul004/Chatbotapp/cli/tui/styles"
)

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	switch {
	case m.status.IsLoading:
		return m.place(fmt.Sprintf("%s Loading...", m.spinner.View()))
	case !m.status.IsAuthenticated:
		return m.form.View()
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top, m.chatList.View(), m.conversation.View())
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), main, m.renderStatus())
}

func (m *Model) renderTitle() string {
	style := styles.TitleStyle
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(" 💬 Subspace Chat ")
}

func (m *Model) renderStatus() string {
	status := "tab switch pane · alt+q sign out · ctrl+c quit"
	if m.signingOut {
		status = "Signing out..."
	}
	return styles.StatusStyle.Render(status)
}

func (m *Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// resize hands each child its share of the window.
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.form.SetSize(m.width, m.height)

	height := m.height - styles.TitleHeight - styles.StatusHeight
	sidebarFrame := styles.SidebarStyle.GetHorizontalFrameSize()
	if m.chatList != nil {
		m.chatList.SetSize(styles.SidebarWidth, height)
	}
	m.conversation.SetSize(m.width-styles.SidebarWidth-sidebarFrame, height)
}
