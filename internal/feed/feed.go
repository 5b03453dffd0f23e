// Package feed derives the message list shown for one chat from its two sources:
// the one-shot pull and the live subscription.
package feed

import (
	"time"

	"github.com/scylladb/go-set/strset"

	"github.com/adityaraul004/Chatbotapp/internal/types"
)

// PendingID identifies the local echo of a message that is being sent.
const PendingID = "pending"

// Feed is not safe for concurrent use. The views own it from their update loop.
type Feed struct {
	chatID string

	pull []*types.Message
	live []*types.Message
	// liveActive is set once the live source has delivered a non-empty snapshot.
	// From then on it is the only source.
	liveActive bool

	pending *pending

	view    []*types.Message
	version uint64
}

type pending struct {
	message *types.Message
	// persistedID is known once the message has been stored.
	persistedID string
	// known holds the ids present when the echo was created. A new user message with the
	// same content that is not in this set is the stored copy.
	known *strset.Set
}

// New returns a feed with no chat.
func New() *Feed {
	return &Feed{}
}

// ChatID returns the chat the feed currently follows.
func (f *Feed) ChatID() string {
	return f.chatID
}

// Reset follows a new chat and forgets everything about the previous one.
func (f *Feed) Reset(chatID string) {
	f.chatID = chatID
	f.pull = nil
	f.live = nil
	f.liveActive = false
	f.pending = nil
	f.recompute()
}

// ApplyPull stores the result of a one-shot fetch. Results for another chat are
// discarded. It reports whether the update was applied.
func (f *Feed) ApplyPull(chatID string, messages []*types.Message) bool {
	if chatID == "" || chatID != f.chatID {
		return false
	}
	f.pull = types.CloneMessages(messages)
	f.recompute()
	return true
}

// ApplyLive stores a live snapshot. Snapshots for another chat are discarded.
// It reports whether the update was applied.
func (f *Feed) ApplyLive(chatID string, messages []*types.Message) bool {
	if chatID == "" || chatID != f.chatID {
		return false
	}
	f.live = types.CloneMessages(messages)
	if len(messages) > 0 {
		f.liveActive = true
	}
	f.recompute()
	return true
}

// EndLive records that the live source has stopped. Pulls are authoritative again and
// the last live snapshot is kept as the pull snapshot until the next pull replaces it.
// It reports whether the update was applied.
func (f *Feed) EndLive(chatID string) bool {
	if chatID == "" || chatID != f.chatID {
		return false
	}
	if f.liveActive {
		f.pull = f.live
	}
	f.live = nil
	f.liveActive = false
	f.recompute()
	return true
}

// LiveActive reports whether the live source has taken over.
func (f *Feed) LiveActive() bool {
	return f.liveActive
}

// SetPending shows content as an outgoing user message until a snapshot holds it.
func (f *Feed) SetPending(chatID, content string, now time.Time) {
	if chatID == "" || chatID != f.chatID {
		return
	}
	known := strset.New()
	for _, message := range f.source() {
		known.Add(message.ID)
	}
	f.pending = &pending{
		message: &types.Message{
			ID:        PendingID,
			ChatID:    chatID,
			Content:   content,
			CreatedAt: now,
		},
		known: known,
	}
	f.recompute()
}

// ConfirmPending records the stored copy of the pending message.
func (f *Feed) ConfirmPending(chatID string, message *types.Message) {
	if f.pending == nil || chatID != f.chatID || message == nil {
		return
	}
	f.pending.persistedID = message.ID
	f.recompute()
}

// DropPending removes the pending echo.
func (f *Feed) DropPending(chatID string) {
	if f.pending == nil || chatID != f.chatID {
		return
	}
	f.pending = nil
	f.recompute()
}

// HasPending reports whether an echo is displayed.
func (f *Feed) HasPending() bool {
	return f.pending != nil
}

// Messages returns the derived view, oldest first. The slice must not be modified.
func (f *Feed) Messages() []*types.Message {
	return f.view
}

// Version changes every time the derived view changes.
func (f *Feed) Version() uint64 {
	return f.version
}

func (f *Feed) source() []*types.Message {
	if f.liveActive {
		return f.live
	}
	return f.pull
}

func (f *Feed) recompute() {
	view := types.CloneMessages(f.source())
	types.SortMessages(view)

	if f.pending != nil {
		if f.pending.deliveredIn(view) {
			f.pending = nil
		} else {
			echo := *f.pending.message
			if n := len(view); n > 0 && echo.CreatedAt.Before(view[n-1].CreatedAt) {
				echo.CreatedAt = view[n-1].CreatedAt
			}
			view = append(view, &echo)
		}
	}

	if !sameView(f.view, view) {
		f.version++
	}
	f.view = view
}

func (p *pending) deliveredIn(messages []*types.Message) bool {
	for _, message := range messages {
		if p.persistedID != "" && message.ID == p.persistedID {
			return true
		}
		if !message.IsBot && message.Content == p.message.Content && !p.known.Has(message.ID) {
			return true
		}
	}
	return false
}

func sameView(a, b []*types.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Content != b[i].Content || a[i].IsBot != b[i].IsBot {
			return false
		}
	}
	return true
}
