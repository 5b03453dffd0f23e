package authform

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/adityaraul004/Chatbotapp/cli/tui/tuitest"
	"github.com/adityaraul004/Chatbotapp/internal/auth"
	"github.com/adityaraul004/Chatbotapp/internal/debug"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

type call struct {
	op          string
	email       string
	password    string
	displayName string
}

type fakeAuth struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "SignIn", email: email, password: password})
	return f.err
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password, displayName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "SignUp", email: email, password: password, displayName: displayName})
	return f.err
}

type harness struct {
	m    *Model
	auth *fakeAuth
	// emitted holds the messages the form sent to its parent.
	emitted []tea.Msg
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := &fakeAuth{}
	return &harness{m: New(context.Background(), fake, time.Second), auth: fake}
}

func (h *harness) send(msgs ...tea.Msg) {
	queue := msgs
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if _, ok := msg.(types.SignedInMsg); ok {
			h.emitted = append(h.emitted, msg)
			continue
		}
		var cmd tea.Cmd
		h.m, cmd = h.m.Update(msg)
		queue = append(queue, tuitest.Exec(cmd)...)
	}
}

func (h *harness) keys(names ...string) {
	for _, name := range names {
		h.send(tuitest.Key(name))
	}
}

func (h *harness) fill(values ...string) {
	for i, value := range values {
		if i > 0 {
			h.keys("tab")
		}
		h.send(tuitest.Type(value)...)
	}
}

func TestSignIn(t *testing.T) {
	h := newHarness(t)
	h.fill("ada@example.com", "secret")
	h.keys("enter")

	require.Equal(t, []call{{op: "SignIn", email: "ada@example.com", password: "secret"}}, h.auth.calls)
	require.Equal(t, []tea.Msg{types.SignedInMsg{}}, h.emitted)
	require.False(t, h.m.Submitting())
	require.Empty(t, h.m.Err())
}

func TestSignUpShowsVerificationNotice(t *testing.T) {
	h := newHarness(t)
	h.keys("ctrl+t")
	require.Equal(t, SignUp, h.m.Mode())
	require.Contains(t, h.m.View(), "Display name")

	h.fill("ada@example.com", "secret", "Ada")
	h.keys("enter")

	require.Equal(t, []call{{op: "SignUp", email: "ada@example.com", password: "secret", displayName: "Ada"}}, h.auth.calls)
	require.Empty(t, h.emitted)
	require.Equal(t, "Please check your email to verify your account.", h.m.Notice())
	require.Contains(t, h.m.View(), "Please check your email")
}

func TestRequiredFields(t *testing.T) {
	h := newHarness(t)
	h.keys("enter")
	require.Equal(t, "Email is required", h.m.Err())

	h.send(tuitest.Type("ada@example.com")...)
	h.keys("enter")
	require.Equal(t, "Password is required", h.m.Err())

	require.Empty(t, h.auth.calls)
}

func TestServiceErrorShownVerbatim(t *testing.T) {
	h := newHarness(t)
	h.auth.err = &auth.Error{Status: 401, Code: "invalid-email-password", Message: "Incorrect email or password"}
	h.fill("ada@example.com", "wrong")
	h.keys("enter")

	require.Equal(t, "Incorrect email or password", h.m.Err())
	require.Empty(t, h.emitted)
}

func TestUnexpectedErrorIsGeneric(t *testing.T) {
	logs := &bytes.Buffer{}
	debug.SetOutput(logs)
	h := newHarness(t)
	h.auth.err = errors.New("dial tcp: connection refused")
	h.fill("ada@example.com", "secret")
	h.keys("enter")

	require.Equal(t, "An unexpected error occurred", h.m.Err())
	require.Contains(t, logs.String(), "connection refused")
}

func TestDoubleSubmitIsBlocked(t *testing.T) {
	h := newHarness(t)
	h.fill("ada@example.com", "secret")

	var cmd tea.Cmd
	h.m, cmd = h.m.Update(tuitest.Key("enter"))
	require.NotNil(t, cmd)
	require.True(t, h.m.Submitting())
	require.Contains(t, h.m.View(), "Please wait...")

	_, second := h.m.Update(tuitest.Key("enter"))
	require.Nil(t, second)

	h.send(tuitest.Exec(cmd)...)
	require.Len(t, h.auth.calls, 1)
	require.False(t, h.m.Submitting())
}

func TestToggleModeKeepsFocusInRange(t *testing.T) {
	h := newHarness(t)
	h.keys("ctrl+t", "tab", "tab")
	require.Equal(t, displayNameField, h.m.focusIndex)

	h.keys("ctrl+t")
	require.Equal(t, SignIn, h.m.Mode())
	require.Equal(t, emailField, h.m.focusIndex)
	require.NotContains(t, h.m.View(), "Display name")
}
