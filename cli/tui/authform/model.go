// Package authform implements the sign in and sign up form.
package authform

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/adityaraul004/Chatbotapp/cli/tui/styles"
	"github.com/adityaraul004/Chatbotapp/internal/auth"
	"github.com/adityaraul004/Chatbotapp/internal/debug"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

const (
	verifyEmailNotice = "Please check your email to verify your account."
	unexpectedError   = "An unexpected error occurred"
)

// Authenticator signs users in and up.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, displayName string) error
}

// Mode selects the form's action.
type Mode int

const (
	SignIn Mode = iota
	SignUp
)

func (m Mode) String() string {
	if m == SignUp {
		return "Sign Up"
	}
	return "Sign In"
}

const (
	emailField = iota
	passwordField
	displayNameField
)

type keyMap struct {
	Next       key.Binding
	Previous   key.Binding
	Submit     key.Binding
	ToggleMode key.Binding
}

var keys = keyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
	),
	Previous: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
	),
	ToggleMode: key.NewBinding(
		key.WithKeys("ctrl+t"),
	),
}

type submittedMsg struct {
	mode Mode
	err  error
}

// Model is the auth form.
type Model struct {
	ctx     context.Context
	auth    Authenticator
	timeout time.Duration

	mode       Mode
	inputs     []textinput.Model
	focusIndex int
	submitting bool
	notice     string
	errMsg     string

	spinner spinner.Model
	width   int
	height  int
}

// New instantiates and returns a new form in sign in mode.
func New(ctx context.Context, authenticator Authenticator, timeout time.Duration) *Model {
	inputs := make([]textinput.Model, 3)
	for i := range inputs {
		input := textinput.New()
		input.CharLimit = 256
		input.Width = 40
		input.PromptStyle = styles.FormLabelStyle
		switch i {
		case emailField:
			input.Placeholder = "you@example.com"
			input.Prompt = "Email: "
		case passwordField:
			input.Placeholder = "password"
			input.Prompt = "Password: "
			input.EchoMode = textinput.EchoPassword
			input.EchoCharacter = '•'
		case displayNameField:
			input.Placeholder = "Your name"
			input.Prompt = "Display name: "
		}
		inputs[i] = input
	}
	inputs[emailField].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return &Model{
		ctx:     ctx,
		auth:    authenticator,
		timeout: timeout,
		inputs:  inputs,
		spinner: sp,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Mode returns the current mode.
func (m *Model) Mode() Mode {
	return m.mode
}

// Submitting reports whether a request is in flight.
func (m *Model) Submitting() bool {
	return m.submitting
}

// Notice returns the informational message shown, if any.
func (m *Model) Notice() string {
	return m.notice
}

// Err returns the error message shown, if any.
func (m *Model) Err() string {
	return m.errMsg
}

// SetSize sets the dimensions available to the form.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Reset clears the form back to an empty sign in.
func (m *Model) Reset() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.mode = SignIn
	m.submitting = false
	m.notice = ""
	m.errMsg = ""
	m.setFocus(emailField)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submittedMsg:
		return m, m.handleSubmitted(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.ToggleMode):
			m.toggleMode()
			return m, nil
		case key.Matches(msg, keys.Next):
			m.setFocus((m.focusIndex + 1) % m.fieldCount())
			return m, nil
		case key.Matches(msg, keys.Previous):
			m.setFocus((m.focusIndex + m.fieldCount() - 1) % m.fieldCount())
			return m, nil
		case key.Matches(msg, keys.Submit):
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) fieldCount() int {
	if m.mode == SignUp {
		return 3
	}
	return 2
}

func (m *Model) setFocus(index int) {
	m.focusIndex = index
	for i := range m.inputs {
		if i == index {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) toggleMode() {
	if m.mode == SignIn {
		m.mode = SignUp
	} else {
		m.mode = SignIn
	}
	m.notice = ""
	m.errMsg = ""
	if m.focusIndex >= m.fieldCount() {
		m.setFocus(emailField)
	}
}

func (m *Model) submit() tea.Cmd {
	email := strings.TrimSpace(m.inputs[emailField].Value())
	password := m.inputs[passwordField].Value()
	displayName := strings.TrimSpace(m.inputs[displayNameField].Value())

	m.notice = ""
	switch {
	case email == "":
		m.errMsg = "Email is required"
		m.setFocus(emailField)
		return nil
	case password == "":
		m.errMsg = "Password is required"
		m.setFocus(passwordField)
		return nil
	}
	m.errMsg = ""
	m.submitting = true

	ctx, authenticator, timeout, mode := m.ctx, m.auth, m.timeout, m.mode
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		var err error
		if mode == SignUp {
			err = authenticator.SignUp(ctx, email, password, displayName)
		} else {
			err = authenticator.SignIn(ctx, email, password)
		}
		return submittedMsg{mode: mode, err: err}
	}
}

func (m *Model) handleSubmitted(msg submittedMsg) tea.Cmd {
	m.submitting = false
	if msg.err != nil {
		var apiErr *auth.Error
		if errors.As(msg.err, &apiErr) {
			m.errMsg = apiErr.Message
		} else {
			debug.GetLogger().Error("authenticating", "mode", msg.mode.String(), "error", msg.err)
			m.errMsg = unexpectedError
		}
		return nil
	}

	m.inputs[passwordField].Reset()
	if msg.mode == SignUp {
		m.notice = verifyEmailNotice
		return nil
	}
	return func() tea.Msg { return types.SignedInMsg{} }
}

// View renders the form.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.FormTitleStyle.Render(m.mode.String()))
	b.WriteString("\n\n")
	for i := 0; i < m.fieldCount(); i++ {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.submitting:
		b.WriteString(m.spinner.View() + " Please wait...")
		b.WriteString("\n")
	case m.errMsg != "":
		b.WriteString(styles.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n")
	case m.notice != "":
		b.WriteString(styles.NoticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	other := SignUp
	if m.mode == SignUp {
		other = SignIn
	}
	b.WriteString(styles.HelpStyle.Render("enter submit · tab next field · ctrl+t " + strings.ToLower(other.String())))

	form := styles.FormStyle.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}
	return form
}
