package chatlist

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adityaraul004/Chatbotapp/cli/tui/styles"
	"github.com/adityaraul004/Chatbotapp/internal/backend"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	New     key.Binding
	Delete  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Refresh key.Binding
}

var keyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
	),
	New: key.NewBinding(
		key.WithKeys("n", "+"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
	),
}

// Model is the chat list: it polls the user's chats and creates and deletes them.
// The selected chat is owned by the parent, which is told through types.SelectChatMsg.
type Model struct {
	ctx      context.Context
	backend  backend.Backend
	interval time.Duration
	timeout  time.Duration
	// gen tells the ticks and results of lists from successive sessions apart.
	gen      uint64

	chats    []*types.Chat
	loaded   bool
	selected string
	cursor   int

	// Fetches are numbered. Results older than minSeq or than the last applied one are dropped.
	fetchSeq   uint64
	appliedSeq uint64
	minSeq     uint64

	// Title input for a new chat.
	input      textinput.Model
	creating   bool
	submitting bool

	// Chat awaiting a y/n delete confirmation.
	confirmDeleteID string

	spinner spinner.Model
	width   int
	height  int
	focused bool
}

// New creates the chat list of one signed-in session, polling every interval.
// Each session must use a distinct generation.
func New(ctx context.Context, b backend.Backend, gen uint64, interval, timeout time.Duration) *Model {
	ti := textinput.New()
	ti.Placeholder = "Chat title..."
	ti.Prompt = "+ "
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return &Model{
		ctx:      ctx,
		backend:  b,
		interval: interval,
		timeout:  timeout,
		gen:      gen,
		input:    ti,
		spinner:  sp,
		focused:  true,
	}
}

// Init starts polling.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick(), m.spinner.Tick)
}

// Chats returns the chats currently displayed.
func (m *Model) Chats() []*types.Chat {
	return m.chats
}

// Loaded reports whether a first fetch has completed.
func (m *Model) Loaded() bool {
	return m.loaded
}

// Selected returns the selected chat id as last told by the parent.
func (m *Model) Selected() string {
	return m.selected
}

// SetSelected mirrors the parent's selection.
func (m *Model) SetSelected(chatID string) {
	m.selected = chatID
	for i, chat := range m.chats {
		if chat.ID == chatID {
			m.cursor = i
		}
	}
}

// Creating reports whether the title input is open.
func (m *Model) Creating() bool {
	return m.creating
}

// Submitting reports whether a create is in flight.
func (m *Model) Submitting() bool {
	return m.submitting
}

// ConfirmingDelete returns the chat awaiting delete confirmation, or "".
func (m *Model) ConfirmingDelete() string {
	return m.confirmDeleteID
}

// Focus gives the list keyboard input.
func (m *Model) Focus() {
	m.focused = true
}

// Blur takes keyboard input away from the list.
func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
}

// Focused reports whether the list has keyboard input.
func (m *Model) Focused() bool {
	return m.focused
}

// SetSize sets the area the list renders in.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 4
}

// Capturing reports whether the list wants every key, including the parent's shortcuts.
func (m *Model) Capturing() bool {
	return m.creating || m.confirmDeleteID != ""
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.chats) {
		m.cursor = len(m.chats) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
