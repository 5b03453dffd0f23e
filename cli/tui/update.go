package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adityaraul004/Chatbotapp/internal/debug"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

type keyMap struct {
	Quit       key.Binding
	SignOut    key.Binding
	SwitchPane key.Binding
	Back       key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
	SignOut: key.NewBinding(
		key.WithKeys("alt+q"),
	),
	SwitchPane: key.NewBinding(
		key.WithKeys("tab"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
	),
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	log := debug.GetLogger()

	switch msg := msg.(type) {
	case types.AuthStatusMsg:
		if msg.Closed {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tea.Batch(m.applyStatus(msg.Status), listenStatus(m.statuses))

	case types.SignedInMsg:
		log.Info("signed in")
		return m, nil

	case types.SignedOutMsg:
		m.signingOut = false
		if msg.Err != nil {
			log.Error("signing out", "error", msg.Err)
		}
		return m, nil

	case types.SelectChatMsg:
		if !m.status.IsAuthenticated {
			return m, nil
		}
		return m, m.selectChat(msg.ChatID)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			m.Close()
			return m, tea.Quit
		}
		switch {
		case m.status.IsLoading:
			return m, nil
		case !m.status.IsAuthenticated:
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		default:
			return m, m.handleSessionKey(msg)
		}
	}

	// Everything else reaches every child; each ignores what is not addressed to it.
	return m, m.broadcast(msg)
}

func (m *Model) applyStatus(status types.AuthStatus) tea.Cmd {
	m.status = status
	switch {
	case status.IsAuthenticated && m.chatList == nil:
		return m.startSession()
	case !status.IsAuthenticated && m.chatList != nil:
		return m.endSession()
	}
	return nil
}

func (m *Model) handleSessionKey(msg tea.KeyMsg) tea.Cmd {
	// An open title input or delete prompt takes every key.
	if m.focusedComponent == FocusChatList && m.chatList.Capturing() {
		var cmd tea.Cmd
		m.chatList, cmd = m.chatList.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, keys.SignOut):
		if m.signingOut {
			return nil
		}
		m.signingOut = true
		return m.signOut()

	case key.Matches(msg, keys.SwitchPane):
		if m.focusedComponent == FocusChatList && m.selectedChatID != "" {
			return m.focus(FocusConversation)
		}
		return m.focus(FocusChatList)

	case key.Matches(msg, keys.Back) && m.focusedComponent == FocusConversation:
		return m.focus(FocusChatList)
	}

	var cmd tea.Cmd
	if m.focusedComponent == FocusConversation {
		m.conversation, cmd = m.conversation.Update(msg)
	} else {
		m.chatList, cmd = m.chatList.Update(msg)
	}
	return cmd
}

func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	m.form, cmd = m.form.Update(msg)
	cmds = append(cmds, cmd)

	if m.chatList != nil {
		m.chatList, cmd = m.chatList.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.conversation, cmd = m.conversation.Update(msg)
	cmds = append(cmds, cmd)

	return tea.Batch(cmds...)
}
