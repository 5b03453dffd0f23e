package conversation

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"github.com/adityaraul004/Chatbotapp/internal/debug"
)

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	log := debug.GetLogger()
	var cmds []tea.Cmd

	// Always update the alert model with every message
	outAlert, alertCmd := m.alertClipboardWrite.Update(msg)
	m.alertClipboardWrite = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	switch msg := msg.(type) {
	case pulledMsg:
		if msg.err != nil {
			log.Error("getting chat messages", "chat_id", msg.chatID, "error", msg.err)
			break
		}
		if !m.feed.ApplyPull(msg.chatID, msg.messages) {
			log.Debug("dropping messages of another chat", "chat_id", msg.chatID, "current_chat_id", m.chatID)
		}

	case liveStartedMsg:
		if msg.gen != m.liveGen {
			break
		}
		if msg.err != nil {
			log.Error("subscribing to chat messages", "chat_id", msg.chatID, "error", msg.err)
			break
		}
		cmds = append(cmds, listen(msg.chatID, msg.gen, msg.snapshots))

	case liveMsg:
		if msg.gen != m.liveGen {
			break
		}
		if msg.closed {
			log.Info("chat messages stream ended", "chat_id", msg.chatID)
			cmds = append(cmds, m.endLive(msg.chatID))
			break
		}
		if msg.snapshot.Err != nil {
			log.Error("streaming chat messages", "chat_id", msg.chatID, "error", msg.snapshot.Err)
			cmds = append(cmds, m.endLive(msg.chatID))
			break
		}
		m.feed.ApplyLive(msg.chatID, msg.snapshot.Messages)
		cmds = append(cmds, listen(msg.chatID, msg.gen, msg.snapshots))

	case sentMsg:
		m.sending = false
		result := msg.result
		if result.PersistErr != nil {
			log.Error("sending message", "chat_id", result.ChatID, "error", result.PersistErr)
			m.feed.DropPending(result.ChatID)
		} else {
			m.feed.ConfirmPending(result.ChatID, result.Message)
			if result.TriggerErr != nil {
				log.Error("triggering chatbot", "chat_id", result.ChatID, "error", result.TriggerErr)
			}
			// Without a live stream the stored copy only arrives through a pull.
			if !m.feed.LiveActive() && result.ChatID == m.chatID {
				cmds = append(cmds, m.pull(result.ChatID))
			}
		}
		m.recalculateLayout()
		if m.focused && m.chatID != "" {
			cmds = append(cmds, m.textarea.Focus())
		}

	case tea.KeyMsg:
		if !m.focused || m.chatID == "" {
			break
		}
		cmds = append(cmds, m.handleKey(msg)...)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.sending {
			m.refreshViewport()
		}

	default:
		if m.focused && m.chatID != "" && !m.sending {
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.scrollOnChange()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) []tea.Cmd {
	switch {
	case key.Matches(msg, keyMap.ScrollUp):
		m.viewport.HalfPageUp()
		return nil

	case key.Matches(msg, keyMap.ScrollDown):
		m.viewport.HalfPageDown()
		return nil

	case key.Matches(msg, keyMap.CopyReply):
		reply := m.latestReply()
		if reply == "" {
			return nil
		}
		if err := copyToClipboard(reply); err != nil {
			debug.GetLogger().Error("copying reply", "error", err)
			return []tea.Cmd{m.alertClipboardWrite.NewAlertCmd(bubbleup.ErrorKey, "Clipboard unavailable")}
		}
		return []tea.Cmd{m.alertClipboardWrite.NewAlertCmd(bubbleup.InfoKey, "Copied to clipboard!")}
	}

	// The input is disabled while a send is in flight.
	if m.sending {
		return nil
	}

	switch {
	case key.Matches(msg, keyMap.Send):
		if m.historyNavigating {
			m.history.Reset()
			m.historyNavigating = false
		}
		return []tea.Cmd{m.sendMessage()}

	case key.Matches(msg, keyMap.PreviousHistoryEntry):
		if entry, ok := m.history.Previous(m.textarea.Value()); ok {
			m.textarea.SetValue(entry)
			m.historyNavigating = true
			m.adjustTextareaHeight()
		}
		return nil

	case key.Matches(msg, keyMap.NextHistoryEntry):
		if entry, ok := m.history.Next(); ok {
			m.textarea.SetValue(entry)
			m.historyNavigating = true
			m.adjustTextareaHeight()
		}
		return nil
	}

	if m.historyNavigating {
		switch msg.Type {
		case tea.KeyRunes, tea.KeyBackspace, tea.KeyDelete:
			m.history.Reset()
			m.historyNavigating = false
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.adjustTextareaHeight()
	return []tea.Cmd{cmd}
}

// latestReply returns the content of the newest assistant message.
func (m *Model) latestReply() string {
	messages := m.feed.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].IsBot {
			return messages[i].Content
		}
	}
	return ""
}

// scrollOnChange re-renders and jumps to the newest message whenever the feed changed.
func (m *Model) scrollOnChange() {
	if m.feed.Version() == m.renderedVersion {
		return
	}
	m.refreshViewport()
	m.viewport.GotoBottom()
}
