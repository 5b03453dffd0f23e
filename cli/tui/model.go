// Package tui is the full-screen chat client. It gates the chat views behind the
// auth status and owns the selected chat.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adityaraul004/Chatbotapp/cli/tui/authform"
	"github.com/adityaraul004/Chatbotapp/cli/tui/chatlist"
	"github.com/adityaraul004/Chatbotapp/cli/tui/conversation"
	"github.com/adityaraul004/Chatbotapp/cli/tui/styles"
	"github.com/adityaraul004/Chatbotapp/internal/backend"
	"github.com/adityaraul004/Chatbotapp/internal/history"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

// FocusedComponent is the pane receiving keys.
type FocusedComponent int

const (
	FocusChatList FocusedComponent = iota
	FocusConversation
)

// Auth is what the shell needs from the auth client.
type Auth interface {
	authform.Authenticator
	Subscribe() (<-chan types.AuthStatus, func())
	SignOut(ctx context.Context) error
}

// Options tunes the shell.
type Options struct {
	PollInterval time.Duration
	Timeout      time.Duration
	History      *history.History
}

// Model is the root Bubble Tea model.
type Model struct {
	// Core dependencies
	ctx     context.Context
	auth    Auth
	backend backend.Backend
	opts    Options

	// Auth state
	status      types.AuthStatus
	statuses    <-chan types.AuthStatus
	unsubscribe func()
	signingOut  bool

	// Selected chat, mirrored into the children.
	selectedChatID string

	// Children. The chat list only exists while signed in.
	form         *authform.Model
	chatList     *chatlist.Model
	conversation *conversation.Model
	// sessions counts sign-ins; each chat list is built with the current count.
	sessions     uint64

	spinner          spinner.Model
	focusedComponent FocusedComponent
	width            int
	height           int
	quitting         bool
}

// New instantiates and returns a new shell.
func New(ctx context.Context, auth Auth, b backend.Backend, opts Options) (*Model, error) {
	if opts.History == nil {
		opts.History = history.NewHistory("")
	}
	conv, err := conversation.New(ctx, b, opts.History, opts.Timeout)
	if err != nil {
		return nil, err
	}
	conv.Blur()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	statuses, unsubscribe := auth.Subscribe()
	return &Model{
		ctx:          ctx,
		auth:         auth,
		backend:      b,
		opts:         opts,
		status:       types.AuthStatus{IsLoading: true},
		statuses:     statuses,
		unsubscribe:  unsubscribe,
		form:         authform.New(ctx, auth, opts.Timeout),
		conversation: conv,
		spinner:      sp,
	}, nil
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		listenStatus(m.statuses),
		m.form.Init(),
		m.conversation.Init(),
		m.spinner.Tick,
	)
}

// Status returns the last auth status received.
func (m *Model) Status() types.AuthStatus {
	return m.status
}

// SelectedChatID returns the selected chat, or "".
func (m *Model) SelectedChatID() string {
	return m.selectedChatID
}

// Focused returns the pane receiving keys.
func (m *Model) Focused() FocusedComponent {
	return m.focusedComponent
}

// ChatList returns the chat list, nil while signed out.
func (m *Model) ChatList() *chatlist.Model {
	return m.chatList
}

// Conversation returns the conversation pane.
func (m *Model) Conversation() *conversation.Model {
	return m.conversation
}

// Form returns the auth form.
func (m *Model) Form() *authform.Model {
	return m.form
}

// Close releases the status subscription and the live message stream.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.conversation.Close()
}
