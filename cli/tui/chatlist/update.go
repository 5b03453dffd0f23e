package chatlist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adityaraul004/Chatbotapp/internal/debug"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	log := debug.GetLogger()

	switch msg := msg.(type) {
	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m, tea.Batch(m.fetch(), m.tick())

	case fetchedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.seq < m.minSeq || msg.seq < m.appliedSeq {
			log.Debug("dropping stale chat list", "seq", msg.seq, "applied_seq", m.appliedSeq, "min_seq", m.minSeq)
			return m, nil
		}
		m.loaded = true
		if msg.err != nil {
			log.Error("getting chats", "error", msg.err)
			return m, nil
		}
		m.appliedSeq = msg.seq
		m.replaceChats(msg.chats)
		return m, nil

	case createdMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			log.Error("creating chat", "title", msg.title, "error", msg.err)
			return m, nil
		}
		m.creating = false
		m.input.Reset()
		m.input.Blur()
		m.insertChat(msg.chat)
		m.selected = msg.chat.ID
		return m, tea.Batch(selectChat(msg.chat.ID), m.forceFetch())

	case deletedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			log.Error("deleting chat", "chat_id", msg.chatID, "error", msg.err)
			return m, nil
		}
		m.removeChat(msg.chatID)
		cmds := []tea.Cmd{m.forceFetch()}
		if m.selected == msg.chatID {
			m.selected = ""
			cmds = append(cmds, selectChat(""))
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)
	}

	if m.creating {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	if m.confirmDeleteID != "" {
		switch {
		case key.Matches(msg, keyMap.Confirm):
			chatID := m.confirmDeleteID
			m.confirmDeleteID = ""
			return m, m.deleteChat(chatID)
		case key.Matches(msg, keyMap.Cancel):
			m.confirmDeleteID = ""
		}
		return m, nil
	}

	if m.creating {
		// One create at a time; keys wait for its result.
		if m.submitting {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEnter:
			title := strings.TrimSpace(m.input.Value())
			if title == "" {
				return m, nil
			}
			return m, m.createChat(title)
		case tea.KeyEsc:
			m.creating = false
			m.input.Reset()
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keyMap.Down):
		if m.cursor < len(m.chats)-1 {
			m.cursor++
		}
	case key.Matches(msg, keyMap.Select):
		if len(m.chats) > 0 {
			return m, selectChat(m.chats[m.cursor].ID)
		}
	case key.Matches(msg, keyMap.New):
		m.creating = true
		return m, tea.Batch(m.input.Focus(), textinput.Blink)
	case key.Matches(msg, keyMap.Delete):
		if len(m.chats) > 0 {
			m.confirmDeleteID = m.chats[m.cursor].ID
		}
	case key.Matches(msg, keyMap.Refresh):
		return m, m.fetch()
	}
	return m, nil
}

// replaceChats swaps in a fetched list, keeping the cursor on the same chat.
func (m *Model) replaceChats(chats []*types.Chat) {
	var cursorID string
	if m.cursor < len(m.chats) {
		cursorID = m.chats[m.cursor].ID
	}
	m.chats = chats
	for i, chat := range m.chats {
		if chat.ID == cursorID {
			m.cursor = i
		}
	}
	m.clampCursor()
}

func (m *Model) insertChat(chat *types.Chat) {
	for i, existing := range m.chats {
		if existing.ID == chat.ID {
			m.cursor = i
			return
		}
	}
	m.chats = append([]*types.Chat{chat}, m.chats...)
	m.cursor = 0
}

func (m *Model) removeChat(chatID string) {
	for i, chat := range m.chats {
		if chat.ID == chatID {
			m.chats = append(m.chats[:i:i], m.chats[i+1:]...)
			break
		}
	}
	m.clampCursor()
}
