package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adityaraul004/Chatbotapp/cli/tui/chatlist"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

// listenStatus waits for the next auth status.
func listenStatus(statuses <-chan types.AuthStatus) tea.Cmd {
	if statuses == nil {
		return nil
	}
	return func() tea.Msg {
		status, ok := <-statuses
		return types.AuthStatusMsg{Status: status, Closed: !ok}
	}
}

func (m *Model) signOut() tea.Cmd {
	ctx, auth, timeout := m.ctx, m.auth, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return types.SignedOutMsg{Err: auth.SignOut(ctx)}
	}
}

func (m *Model) selectChat(chatID string) tea.Cmd {
	m.selectedChatID = chatID
	if m.chatList != nil {
		m.chatList.SetSelected(chatID)
	}
	cmd := m.conversation.SetChat(chatID)
	if chatID == "" {
		return tea.Batch(cmd, m.focus(FocusChatList))
	}
	return tea.Batch(cmd, m.focus(FocusConversation))
}

func (m *Model) focus(component FocusedComponent) tea.Cmd {
	m.focusedComponent = component
	if component == FocusConversation {
		if m.chatList != nil {
			m.chatList.Blur()
		}
		return m.conversation.Focus()
	}
	m.conversation.Blur()
	if m.chatList != nil {
		m.chatList.Focus()
	}
	return nil
}

// startSession builds the signed-in views.
func (m *Model) startSession() tea.Cmd {
	m.sessions++
	m.chatList = chatlist.New(m.ctx, m.backend, m.sessions, m.opts.PollInterval, m.opts.Timeout)
	m.resize()
	return tea.Batch(m.chatList.Init(), m.focus(FocusChatList))
}

// endSession drops the signed-in views and the selection.
func (m *Model) endSession() tea.Cmd {
	m.chatList = nil
	m.signingOut = false
	m.selectedChatID = ""
	m.conversation.Blur()
	cmd := m.conversation.SetChat("")
	m.focusedComponent = FocusChatList
	m.form.Reset()
	return cmd
}
