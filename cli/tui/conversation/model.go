package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"
	"golang.design/x/clipboard"

	"github.com/adityaraul004/Chatbotapp/cli/tui/styles"
	"github.com/adityaraul004/Chatbotapp/internal/backend"
	"github.com/adityaraul004/Chatbotapp/internal/feed"
	"github.com/adityaraul004/Chatbotapp/internal/history"
	"github.com/adityaraul004/Chatbotapp/internal/markdown"
	"github.com/adityaraul004/Chatbotapp/internal/send"
)

type KeyMap struct {
	Send                 key.Binding
	PreviousHistoryEntry key.Binding
	NextHistoryEntry     key.Binding
	CopyReply            key.Binding
	ScrollUp             key.Binding
	ScrollDown           key.Binding
}

var keyMap = KeyMap{
	Send: key.NewBinding(
		key.WithKeys("enter", "ctrl+j"),
	),

	PreviousHistoryEntry: key.NewBinding(
		key.WithKeys("alt+p"),
	),
	NextHistoryEntry: key.NewBinding(
		key.WithKeys("alt+n"),
	),

	// Copy.
	CopyReply: key.NewBinding(
		key.WithKeys("alt+w"),
	),

	// Scrolling.
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+p"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+n"),
	),
}

var (
	clipboardOnce sync.Once
	clipboardErr  error

	// copyToClipboard is replaced in tests.
	copyToClipboard = func(text string) error {
		clipboardOnce.Do(func() { clipboardErr = clipboard.Init() })
		if clipboardErr != nil {
			return clipboardErr
		}
		clipboard.Write(clipboard.FmtText, []byte(text))
		return nil
	}
)

// Model is the conversation pane of the selected chat.
type Model struct {
	// Core dependencies
	ctx      context.Context
	backend  backend.Backend
	sequence *send.Sequence
	timeout  time.Duration

	// Chat state
	chatID string
	feed   *feed.Feed
	// Each subscription gets a generation. Snapshots of older ones are dropped.
	liveGen    uint64
	cancelLive context.CancelFunc
	sending    bool
	// Version of the feed last rendered into the viewport.
	renderedVersion uint64

	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *markdown.Renderer

	// UI state
	width   int
	height  int
	ready   bool
	focused bool

	// Alert notifications.
	alertClipboardWrite bubbleup.AlertModel

	// Input history
	history           *history.History
	historyNavigating bool
}

// New creates a conversation pane with no chat selected.
func New(ctx context.Context, b backend.Backend, h *history.History, timeout time.Duration) (*Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Type your message... (Enter to send, Alt+Enter for a new line, Alt+P/N for history)"
	ta.CharLimit = 0
	ta.SetWidth(styles.DefaultTextareaWidth)
	ta.SetHeight(styles.MinTextareaHeight)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")
	ta.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	alertClipboardWrite := bubbleup.NewAlertModel(25, true, 1)

	renderer, err := markdown.NewRenderer(styles.DefaultTextareaWidth)
	if err != nil {
		return nil, err
	}

	return &Model{
		ctx:                 ctx,
		backend:             b,
		sequence:            send.NewSequence(b),
		timeout:             timeout,
		feed:                feed.New(),
		textarea:            ta,
		spinner:             sp,
		renderer:            renderer,
		alertClipboardWrite: *alertClipboardWrite,
		history:             h,
	}, nil
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.alertClipboardWrite.Init(),
	)
}

// ChatID returns the chat being shown, or "".
func (m *Model) ChatID() string {
	return m.chatID
}

// Feed exposes the derived message view.
func (m *Model) Feed() *feed.Feed {
	return m.feed
}

// Sending reports whether a send is in flight.
func (m *Model) Sending() bool {
	return m.sending
}

// Input returns the text being typed.
func (m *Model) Input() string {
	return m.textarea.Value()
}

// Focus gives the pane keyboard input.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	if m.chatID == "" {
		return nil
	}
	return m.textarea.Focus()
}

// Blur takes keyboard input away from the pane.
func (m *Model) Blur() {
	m.focused = false
	m.textarea.Blur()
}

// Focused reports whether the pane has keyboard input.
func (m *Model) Focused() bool {
	return m.focused
}

// SetChat switches to another chat. The previous live subscription is cancelled;
// in-flight fetches for it are left to finish and are discarded.
// Setting the current chat again re-opens it: messages are pulled and the live
// subscription is restarted, keeping what is displayed meanwhile.
func (m *Model) SetChat(chatID string) tea.Cmd {
	if chatID == m.chatID {
		if chatID == "" {
			return nil
		}
		m.stopLive()
		m.feed.EndLive(chatID)
		return tea.Batch(m.pull(chatID), m.subscribe(chatID))
	}
	m.stopLive()
	m.chatID = chatID
	m.feed.Reset(chatID)
	m.refreshViewport()

	if chatID == "" {
		m.textarea.Blur()
		return nil
	}

	var cmds []tea.Cmd
	if m.focused {
		cmds = append(cmds, m.textarea.Focus())
	}
	cmds = append(cmds, m.pull(chatID), m.subscribe(chatID))
	return tea.Batch(cmds...)
}

// Close stops the live subscription.
func (m *Model) Close() {
	m.stopLive()
}

// endLive falls back to pulls once the subscription has ended, and pulls right away.
func (m *Model) endLive(chatID string) tea.Cmd {
	if m.cancelLive != nil {
		m.cancelLive()
		m.cancelLive = nil
	}
	if !m.feed.EndLive(chatID) {
		return nil
	}
	return m.pull(chatID)
}

func (m *Model) stopLive() {
	if m.cancelLive != nil {
		m.cancelLive()
		m.cancelLive = nil
	}
	m.liveGen++
}
