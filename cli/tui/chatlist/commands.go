package chatlist

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adityaraul004/Chatbotapp/internal/types"
)

type tickMsg struct {
	gen uint64
}

// Results carry the generation of the list that issued them. A list built for a later
// session drops them.
type fetchedMsg struct {
	gen   uint64
	seq   uint64
	chats []*types.Chat
	err   error
}

type createdMsg struct {
	gen   uint64
	title string
	chat  *types.Chat
	err   error
}

type deletedMsg struct {
	gen    uint64
	chatID string
	err    error
}

func (m *Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m *Model) fetch() tea.Cmd {
	m.fetchSeq++
	gen, seq := m.gen, m.fetchSeq
	ctx, b, timeout := m.ctx, m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		chats, err := b.GetChats(ctx)
		return fetchedMsg{gen: gen, seq: seq, chats: chats, err: err}
	}
}

// forceFetch fetches and drops every result from fetches issued before it.
func (m *Model) forceFetch() tea.Cmd {
	m.minSeq = m.fetchSeq + 1
	return m.fetch()
}

func (m *Model) createChat(title string) tea.Cmd {
	m.submitting = true
	gen, ctx, b, timeout := m.gen, m.ctx, m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		chat, err := b.CreateChat(ctx, title)
		return createdMsg{gen: gen, title: title, chat: chat, err: err}
	}
}

func (m *Model) deleteChat(chatID string) tea.Cmd {
	gen, ctx, b, timeout := m.gen, m.ctx, m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return deletedMsg{gen: gen, chatID: chatID, err: b.DeleteChat(ctx, chatID)}
	}
}

func selectChat(chatID string) tea.Cmd {
	return func() tea.Msg {
		return types.SelectChatMsg{ChatID: chatID}
	}
}
