package conversation

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adityaraul004/Chatbotapp/internal/backend"
	"github.com/adityaraul004/Chatbotapp/internal/send"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

type pulledMsg struct {
	chatID   string
	messages []*types.Message
	err      error
}

type liveStartedMsg struct {
	chatID    string
	gen       uint64
	snapshots <-chan backend.Snapshot
	err       error
}

type liveMsg struct {
	chatID   string
	gen      uint64
	snapshot backend.Snapshot
	// closed is set once the subscription has ended.
	closed    bool
	snapshots <-chan backend.Snapshot
}

type sentMsg struct {
	result *send.Result
}

func (m *Model) pull(chatID string) tea.Cmd {
	ctx, b, timeout := m.ctx, m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		messages, err := b.GetChatMessages(ctx, chatID)
		return pulledMsg{chatID: chatID, messages: messages, err: err}
	}
}

func (m *Model) subscribe(chatID string) tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelLive = cancel
	gen := m.liveGen
	b := m.backend
	return func() tea.Msg {
		snapshots, err := b.SubscribeMessages(ctx, chatID)
		return liveStartedMsg{chatID: chatID, gen: gen, snapshots: snapshots, err: err}
	}
}

// listen waits for the next snapshot of a subscription.
func listen(chatID string, gen uint64, snapshots <-chan backend.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-snapshots
		return liveMsg{chatID: chatID, gen: gen, snapshot: snapshot, closed: !ok, snapshots: snapshots}
	}
}

func (m *Model) sendMessage() tea.Cmd {
	content := strings.TrimSpace(m.textarea.Value())
	if content == "" || m.sending || m.chatID == "" {
		return nil
	}

	m.history.Add(content)
	m.historyNavigating = false
	m.textarea.Reset()
	m.sending = true
	m.feed.SetPending(m.chatID, content, time.Now())
	m.recalculateLayout()

	ctx, sequence, timeout, chatID := m.ctx, m.sequence, m.timeout, m.chatID
	return func() tea.Msg {
		// Both phases share one deadline; the trigger waits on the assistant's answer.
		ctx, cancel := context.WithTimeout(ctx, 2*timeout)
		defer cancel()
		result, err := sequence.Run(ctx, chatID, content)
		if err != nil {
			result = &send.Result{ChatID: chatID, Content: content, PersistErr: err}
		}
		return sentMsg{result: result}
	}
}
