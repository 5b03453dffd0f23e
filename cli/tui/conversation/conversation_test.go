package conversation

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/adityaraul004/Chatbotapp/cli/tui/tuitest"
	"github.com/adityaraul004/Chatbotapp/internal/backend"
	"github.com/adityaraul004/Chatbotapp/internal/backend/backendtest"
	"github.com/adityaraul004/Chatbotapp/internal/debug"
	"github.com/adityaraul004/Chatbotapp/internal/feed"
	"github.com/adityaraul004/Chatbotapp/internal/history"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

var base = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

type harness struct {
	t    *testing.T
	m    *Model
	fake *backendtest.Fake
	logs *bytes.Buffer
	// stream stays open for the whole test so delivering a snapshot does not end it.
	stream chan backend.Snapshot
}

func newHarness(t *testing.T, fake *backendtest.Fake) *harness {
	t.Helper()
	logs := &bytes.Buffer{}
	debug.SetOutput(logs)
	m, err := New(context.Background(), fake, history.NewHistory(""), time.Second)
	require.NoError(t, err)
	m.SetSize(100, 30)
	m.Focus()
	t.Cleanup(m.Close)
	stream := make(chan backend.Snapshot)
	t.Cleanup(func() { close(stream) })
	return &harness{t: t, m: m, fake: fake, logs: logs, stream: stream}
}

func (h *harness) run(cmd tea.Cmd) {
	h.send(tuitest.Exec(cmd)...)
}

func (h *harness) send(msgs ...tea.Msg) {
	queue := msgs
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
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

// live delivers one snapshot of the current subscription.
func (h *harness) live(chatID string, messages ...*types.Message) {
	h.send(liveMsg{
		chatID:    chatID,
		gen:       h.m.liveGen,
		snapshot:  backend.Snapshot{ChatID: chatID, Messages: messages},
		snapshots: h.stream,
	})
}

// endLive ends the current subscription with err, or by closing it when err is nil.
func (h *harness) endLive(chatID string, err error) {
	closed := make(chan backend.Snapshot)
	close(closed)
	msg := liveMsg{chatID: chatID, gen: h.m.liveGen, snapshots: closed}
	if err != nil {
		msg.snapshot = backend.Snapshot{ChatID: chatID, Err: err}
	} else {
		msg.closed = true
	}
	h.send(msg)
}

func (h *harness) contents() []string {
	var contents []string
	for _, message := range h.m.Feed().Messages() {
		contents = append(contents, message.Content)
	}
	return contents
}

func message(id, content string, isBot bool, minute int) *types.Message {
	return &types.Message{ID: id, Content: content, IsBot: isBot, CreatedAt: base.Add(time.Duration(minute) * time.Minute)}
}

func TestPlaceholderIgnoresInput(t *testing.T) {
	fake := backendtest.New()
	h := newHarness(t, fake)

	require.Contains(t, h.m.View(), "Welcome to Your AI Chatbot")
	h.send(tuitest.Type("hello")...)
	h.keys("enter")

	require.Empty(t, h.m.Input())
	require.Empty(t, fake.Calls())
}

func TestSetChatLoadsMessages(t *testing.T) {
	fake := backendtest.New()
	fake.AddChat("c1", "Groceries")
	fake.AddMessage("c1", "Buy milk", false)
	h := newHarness(t, fake)

	h.run(h.m.SetChat("c1"))

	require.Equal(t, "c1", h.m.ChatID())
	require.Equal(t, []string{"Buy milk"}, h.contents())
	require.Equal(t, []string{"GetChatMessages", "SubscribeMessages"}, fake.Calls())
	view := h.m.View()
	require.Contains(t, view, "Buy milk")
	require.Contains(t, view, "👤 You")
}

func TestChatSwitchDiscardsStaleData(t *testing.T) {
	fake := backendtest.New()
	fake.AddChat("c1", "Groceries")
	fake.AddChat("c2", "Trip planning")
	fake.AddMessage("c1", "Buy milk", false)
	fake.AddMessage("c2", "Plan a trip", false)
	h := newHarness(t, fake)

	// The first chat's fetches are still in flight when the second chat is picked.
	first := h.m.SetChat("c1")
	staleGen := h.m.liveGen
	h.run(h.m.SetChat("c2"))
	h.run(first)
	h.send(liveMsg{
		chatID:   "c1",
		gen:      staleGen,
		snapshot: backend.Snapshot{ChatID: "c1", Messages: []*types.Message{message("x", "Buy milk", false, 1)}},
	})

	require.Equal(t, "c2", h.m.ChatID())
	require.Equal(t, []string{"Plan a trip"}, h.contents())
}

func TestSwitchingChatCancelsSubscription(t *testing.T) {
	fake := backendtest.New()
	fake.Subscriptions = make(chan *backendtest.Subscription, 4)
	h := newHarness(t, fake)

	h.run(h.m.SetChat("c1"))
	first := <-fake.Subscriptions
	require.Equal(t, "c1", first.ChatID)
	require.NoError(t, first.Ctx.Err())

	h.run(h.m.SetChat("c2"))
	require.Error(t, first.Ctx.Err())
	second := <-fake.Subscriptions
	require.Equal(t, "c2", second.ChatID)
}

func TestLiveSubscriptionStream(t *testing.T) {
	fake := backendtest.New()
	fake.Subscriptions = make(chan *backendtest.Subscription)
	h := newHarness(t, fake)

	go func() {
		subscription := <-fake.Subscriptions
		subscription.Snapshots <- backend.Snapshot{
			ChatID:   subscription.ChatID,
			Messages: []*types.Message{message("m1", "From the stream", false, 1)},
		}
	}()
	h.run(h.m.SetChat("c1"))

	require.True(t, h.m.Feed().LiveActive())
	require.Equal(t, []string{"From the stream"}, h.contents())
}

func TestLiveIsPreferredOverPull(t *testing.T) {
	fake := backendtest.New()
	fake.AddMessage("c1", "Pulled", false)
	h := newHarness(t, fake)
	h.run(h.m.SetChat("c1"))
	require.Equal(t, []string{"Pulled"}, h.contents())

	h.live("c1", message("l1", "Live", false, 1))
	require.Equal(t, []string{"Live"}, h.contents())

	// A later pull does not override the live view.
	h.send(pulledMsg{chatID: "c1", messages: []*types.Message{message("p2", "Pulled again", false, 2)}})
	require.Equal(t, []string{"Live"}, h.contents())
}

func TestMessagesAreSorted(t *testing.T) {
	h := newHarness(t, backendtest.New())
	h.run(h.m.SetChat("c1"))

	h.live("c1",
		message("m3", "third", true, 3),
		message("m1", "first", false, 1),
		message("m2", "second", false, 2),
	)
	require.Equal(t, []string{"first", "second", "third"}, h.contents())
}

func TestSubscriptionErrorIsLogged(t *testing.T) {
	fake := backendtest.New()
	h := newHarness(t, fake)
	h.run(h.m.SetChat("c1"))

	h.endLive("c1", errors.New("socket closed"))
	require.Contains(t, h.logs.String(), "socket closed")
}

func TestEndedStreamFallsBackToPull(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
	}{
		{name: "error", err: errors.New("JWTExpired")},
		{name: "closed"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fake := backendtest.New()
			fake.AddMessage("c1", "hello", false)
			fake.Reply = func(message string) string { return "Try Kyoto for the cherry blossoms" }
			h := newHarness(t, fake)
			h.run(h.m.SetChat("c1"))
			h.live("c1", fake.Messages("c1")...)
			require.True(t, h.m.Feed().LiveActive())

			h.endLive("c1", tc.err)
			require.False(t, h.m.Feed().LiveActive())
			require.Equal(t, 2, fake.CallCount("GetChatMessages"))
			require.Equal(t, []string{"hello"}, h.contents())

			// Replies stored after the stream ended are pulled in.
			h.send(tuitest.Type("Where should I go in April?")...)
			h.keys("enter")
			require.Equal(t, []string{"hello", "Where should I go in April?", "Try Kyoto for the cherry blossoms"}, h.contents())
		})
	}
}

func TestReopeningChatRestartsLive(t *testing.T) {
	fake := backendtest.New()
	fake.Subscriptions = make(chan *backendtest.Subscription, 4)
	fake.AddMessage("c1", "hello", false)
	h := newHarness(t, fake)
	h.run(h.m.SetChat("c1"))
	first := <-fake.Subscriptions
	h.live("c1", fake.Messages("c1")...)
	h.endLive("c1", errors.New("socket closed"))

	// The assistant answers while nothing is listening.
	fake.AddMessage("c1", "Anything else?", true)
	calls := len(fake.Calls())
	h.run(h.m.SetChat("c1"))

	require.Error(t, first.Ctx.Err())
	second := <-fake.Subscriptions
	require.Equal(t, "c1", second.ChatID)
	require.NoError(t, second.Ctx.Err())
	require.Equal(t, []string{"GetChatMessages", "SubscribeMessages"}, fake.Calls()[calls:])
	require.Equal(t, []string{"hello", "Anything else?"}, h.contents())
}

func TestEmptyInputSendsNothing(t *testing.T) {
	fake := backendtest.New()
	h := newHarness(t, fake)
	h.run(h.m.SetChat("c1"))

	h.send(tuitest.Type("   ")...)
	h.keys("enter")

	require.Zero(t, fake.CallCount("SendMessage"))
	require.Zero(t, fake.CallCount("SendChatbotMessage"))
	require.False(t, h.m.Sending())
	require.False(t, h.m.Feed().HasPending())
}

func TestSendShowsPendingWhileInFlight(t *testing.T) {
	fake := backendtest.New()
	h := newHarness(t, fake)
	h.run(h.m.SetChat("c1"))

	h.send(tuitest.Type("Hello there")...)
	var cmd tea.Cmd
	h.m, cmd = h.m.Update(tuitest.Key("enter"))

	require.True(t, h.m.Sending())
	require.Empty(t, h.m.Input())
	messages := h.m.Feed().Messages()
	require.Len(t, messages, 1)
	require.Equal(t, feed.PendingID, messages[0].ID)
	require.Contains(t, h.m.View(), "Assistant is typing...")

	// Typing is ignored until the send completes.
	h.send(tuitest.Type("more")...)
	require.Empty(t, h.m.Input())

	h.run(cmd)
	require.False(t, h.m.Sending())
	require.Equal(t, []string{"Hello there"}, h.contents())
	require.False(t, h.m.Feed().HasPending())
}

func TestSendCallOrder(t *testing.T) {
	fake := backendtest.New()
	h := newHarness(t, fake)
	h.run(h.m.SetChat("c1"))

	h.send(tuitest.Type("Hi")...)
	h.keys("enter")

	calls := fake.Calls()
	require.GreaterOrEqual(t, len(calls), 4)
	require.Equal(t, []string{"SendMessage", "SendChatbotMessage"}, calls[2:4])
}

func TestTripPlanningConversation(t *testing.T) {
	fake := backendtest.New()
	fake.AddChat("c1", "Trip planning")
	fake.Reply = func(message string) string {
		return "Day 1: the Colosseum"
	}
	h := newHarness(t, fake)
	h.run(h.m.SetChat("c1"))

	h.send(tuitest.Type("Plan three days in Rome")...)
	h.keys("enter")

	stored := fake.Messages("c1")
	require.Len(t, stored, 2)
	require.Equal(t, "Plan three days in Rome", stored[0].Content)
	require.False(t, stored[0].IsBot)
	require.True(t, stored[1].IsBot)

	// The live stream then delivers both messages.
	h.live("c1", stored...)
	require.Equal(t, []string{"Plan three days in Rome", "Day 1: the Colosseum"}, h.contents())
	require.False(t, h.m.Feed().HasPending())
	require.Contains(t, h.m.View(), "🤖 Assistant")
}

func TestPersistFailureDropsEcho(t *testing.T) {
	fake := backendtest.New()
	fake.SetError("SendMessage", errors.New("permission denied"))
	h := newHarness(t, fake)
	h.run(h.m.SetChat("c1"))

	h.send(tuitest.Type("Hello")...)
	h.keys("enter")

	require.Zero(t, fake.CallCount("SendChatbotMessage"))
	require.Empty(t, h.m.Feed().Messages())
	require.False(t, h.m.Sending())
	require.Contains(t, h.logs.String(), "permission denied")
}

func TestTriggerFailureKeepsMessage(t *testing.T) {
	fake := backendtest.New()
	fake.SetError("SendChatbotMessage", errors.New("webhook returned 500"))
	h := newHarness(t, fake)
	h.run(h.m.SetChat("c1"))

	h.send(tuitest.Type("Hello")...)
	h.keys("enter")

	require.Equal(t, []string{"Hello"}, h.contents())
	require.Len(t, fake.Messages("c1"), 1)
	require.Contains(t, h.logs.String(), "webhook returned 500")
}

func TestHistoryRecall(t *testing.T) {
	h := newHarness(t, backendtest.New())
	h.run(h.m.SetChat("c1"))

	h.send(tuitest.Type("first question")...)
	h.keys("enter")
	require.Empty(t, h.m.Input())

	h.keys("alt+p")
	require.Equal(t, "first question", h.m.Input())
	h.keys("alt+n")
	require.Empty(t, h.m.Input())
}

func TestCopyLatestReply(t *testing.T) {
	var copied string
	original := copyToClipboard
	copyToClipboard = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { copyToClipboard = original })

	h := newHarness(t, backendtest.New())
	h.run(h.m.SetChat("c1"))
	h.live("c1",
		message("m1", "Old answer", true, 1),
		message("m2", "Question", false, 2),
		message("m3", "New answer", true, 3),
	)

	h.keys("alt+w")
	require.Equal(t, "New answer", copied)
}
