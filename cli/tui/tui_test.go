package tui

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/adityaraul004/Chatbotapp/cli/tui/tuitest"
	"github.com/adityaraul004/Chatbotapp/internal/backend/backendtest"
	"github.com/adityaraul004/Chatbotapp/internal/debug"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

var (
	signedIn  = types.AuthStatus{IsAuthenticated: true}
	signedOut = types.AuthStatus{}
)

type fakeAuth struct {
	mu       sync.Mutex
	statuses chan types.AuthStatus
	signIns  int
	signOuts int
}

func (f *fakeAuth) Subscribe() (<-chan types.AuthStatus, func()) {
	return f.statuses, func() {}
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns++
	return nil
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password, displayName string) error {
	return nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	return nil
}

type harness struct {
	t    *testing.T
	m    *Model
	auth *fakeAuth
	fake *backendtest.Fake
	msgs []tea.Msg
}

func newHarness(t *testing.T, fake *backendtest.Fake) *harness {
	t.Helper()
	debug.SetOutput(&bytes.Buffer{})
	auth := &fakeAuth{statuses: make(chan types.AuthStatus, 1)}
	m, err := New(context.Background(), auth, fake, Options{PollInterval: time.Hour, Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	h := &harness{t: t, m: m, auth: auth, fake: fake}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) run(cmd tea.Cmd) {
	h.send(tuitest.Exec(cmd)...)
}

func (h *harness) send(msgs ...tea.Msg) {
	queue := msgs
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		h.msgs = append(h.msgs, msg)
		model, cmd := h.m.Update(msg)
		h.m = model.(*Model)
		queue = append(queue, tuitest.Exec(cmd)...)
	}
}

func (h *harness) keys(names ...string) {
	for _, name := range names {
		h.send(tuitest.Key(name))
	}
}

func (h *harness) signIn() {
	h.send(types.AuthStatusMsg{Status: signedIn})
}

func TestLoadingShowsWaitingView(t *testing.T) {
	h := newHarness(t, backendtest.New())
	require.Contains(t, h.m.View(), "Loading...")

	h.keys("n", "enter")
	require.Nil(t, h.m.ChatList())
	require.Empty(t, h.fake.Calls())
}

func TestInitialStatusComesFromStream(t *testing.T) {
	h := newHarness(t, backendtest.New())
	h.auth.statuses <- signedOut

	h.run(h.m.Init())

	require.False(t, h.m.Status().IsLoading)
	require.Contains(t, h.m.View(), "Sign In")
}

func TestSignInShowsChats(t *testing.T) {
	fake := backendtest.New()
	fake.AddChat("c1", "Trip planning")
	h := newHarness(t, fake)

	h.signIn()

	require.NotNil(t, h.m.ChatList())
	require.Equal(t, FocusChatList, h.m.Focused())
	view := h.m.View()
	require.Contains(t, view, "Trip planning")
	require.Contains(t, view, "Welcome to Your AI Chatbot")
}

func TestSelectingChatOpensConversation(t *testing.T) {
	fake := backendtest.New()
	fake.AddChat("c1", "Trip planning")
	fake.AddMessage("c1", "Plan three days in Rome", false)
	h := newHarness(t, fake)
	h.signIn()

	h.keys("enter")

	require.Equal(t, "c1", h.m.SelectedChatID())
	require.Equal(t, "c1", h.m.ChatList().Selected())
	require.Equal(t, "c1", h.m.Conversation().ChatID())
	require.Equal(t, FocusConversation, h.m.Focused())
	require.Contains(t, h.m.View(), "Plan three days in Rome")
}

func TestTabSwitchesPanes(t *testing.T) {
	fake := backendtest.New()
	fake.AddChat("c1", "Trip planning")
	h := newHarness(t, fake)
	h.signIn()

	// Nothing to switch to without a chat.
	h.keys("tab")
	require.Equal(t, FocusChatList, h.m.Focused())

	h.keys("enter")
	require.Equal(t, FocusConversation, h.m.Focused())
	h.keys("tab")
	require.Equal(t, FocusChatList, h.m.Focused())
	require.True(t, h.m.ChatList().Focused())
	require.False(t, h.m.Conversation().Focused())
	h.keys("tab")
	require.Equal(t, FocusConversation, h.m.Focused())
	h.keys("esc")
	require.Equal(t, FocusChatList, h.m.Focused())
}

func TestSignOutResetsSelection(t *testing.T) {
	fake := backendtest.New()
	fake.AddChat("c1", "Trip planning")
	h := newHarness(t, fake)
	h.signIn()
	h.keys("enter")
	require.Equal(t, "c1", h.m.SelectedChatID())

	h.keys("alt+q")
	require.Equal(t, 1, h.auth.signOuts)

	// The auth client publishes the new status.
	h.send(types.AuthStatusMsg{Status: signedOut})
	require.Nil(t, h.m.ChatList())
	require.Empty(t, h.m.SelectedChatID())
	require.Empty(t, h.m.Conversation().ChatID())
	require.Contains(t, h.m.View(), "Sign In")

	h.signIn()
	require.Empty(t, h.m.SelectedChatID())
	require.Empty(t, h.m.ChatList().Selected())
}

func TestDeletingSelectedChatClearsConversation(t *testing.T) {
	fake := backendtest.New()
	fake.AddChat("c1", "Trip planning")
	h := newHarness(t, fake)
	h.signIn()
	h.keys("enter", "tab")

	h.keys("d", "y")

	require.Empty(t, h.m.SelectedChatID())
	require.Empty(t, h.m.Conversation().ChatID())
	require.Empty(t, h.m.ChatList().Chats())
	require.Contains(t, h.m.View(), "Welcome to Your AI Chatbot")
}

func TestCreatingChatCapturesKeys(t *testing.T) {
	h := newHarness(t, backendtest.New())
	h.signIn()

	h.keys("n")
	require.True(t, h.m.ChatList().Creating())
	// Shortcuts of the shell are typed into the title instead.
	h.keys("tab")
	require.Equal(t, FocusChatList, h.m.Focused())
	h.send(tuitest.Type("Groceries")...)
	h.keys("enter")

	require.Equal(t, 1, h.fake.CallCount("CreateChat"))
	require.NotEmpty(t, h.m.SelectedChatID())
	require.Equal(t, h.m.SelectedChatID(), h.m.Conversation().ChatID())
}

func TestSignInThroughForm(t *testing.T) {
	h := newHarness(t, backendtest.New())
	h.send(types.AuthStatusMsg{Status: signedOut})

	h.send(tuitest.Type("ada@example.com")...)
	h.keys("tab")
	h.send(tuitest.Type("secret")...)
	h.keys("enter")

	require.Equal(t, 1, h.auth.signIns)
	require.Contains(t, h.msgs, tea.Msg(types.SignedInMsg{}))
}

func TestClosedStatusStreamQuits(t *testing.T) {
	h := newHarness(t, backendtest.New())
	_, cmd := h.m.Update(types.AuthStatusMsg{Closed: true})
	require.Equal(t, []tea.Msg{tea.QuitMsg{}}, tuitest.Exec(cmd))
	require.Empty(t, h.m.View())
}

func TestSelectingCurrentChatReopensIt(t *testing.T) {
	fake := backendtest.New()
	fake.AddChat("c1", "Trip planning")
	h := newHarness(t, fake)
	h.signIn()

	h.send(types.SelectChatMsg{ChatID: "c1"})
	require.Equal(t, 1, fake.CallCount("GetChatMessages"))
	require.Equal(t, 1, fake.CallCount("SubscribeMessages"))

	fake.AddMessage("c1", "Buy milk", false)
	h.send(types.SelectChatMsg{ChatID: "c1"})

	require.Equal(t, "c1", h.m.SelectedChatID())
	require.Equal(t, 2, fake.CallCount("GetChatMessages"))
	require.Equal(t, 2, fake.CallCount("SubscribeMessages"))
	require.Contains(t, h.m.View(), "Buy milk")
}
