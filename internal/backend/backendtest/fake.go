// Package backendtest provides an in-memory Backend for tests.
package backendtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/adityaraul004/Chatbotapp/internal/backend"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

// Fake is an in-memory backend that records every call in order.
type Fake struct {
	mu    sync.Mutex
	calls []string
	chats []*types.Chat
	// messages by chat id.
	messages map[string][]*types.Message
	nextID   int
	now      time.Time

	// Errors to return, by operation name.
	Errors map[string]error
	// Subscriptions receives the channel feeding each SubscribeMessages call.
	Subscriptions chan *Subscription
	// Reply, when set, is stored as the assistant answer on SendChatbotMessage.
	Reply func(message string) string
}

// Subscription is the producer side of one SubscribeMessages call.
type Subscription struct {
	ChatID    string
	Snapshots chan backend.Snapshot
	Ctx       context.Context
}

// New returns an empty fake.
func New() *Fake {
	return &Fake{
		messages: map[string][]*types.Message{},
		now:      time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		Errors:   map[string]error{},
	}
}

// Calls returns the operations called so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times an operation was called.
func (f *Fake) CallCount(operation string) int {
	count := 0
	for _, call := range f.Calls() {
		if call == operation {
			count++
		}
	}
	return count
}

// SetError makes an operation fail. A nil error clears it.
func (f *Fake) SetError(operation string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[operation] = err
}

// AddChat stores a chat directly.
func (f *Fake) AddChat(id, title string) *types.Chat {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat := &types.Chat{ID: id, Title: title, UpdatedAt: f.tick()}
	f.chats = append([]*types.Chat{chat}, f.chats...)
	return chat
}

// AddMessage stores a message directly.
func (f *Fake) AddMessage(chatID, content string, isBot bool) *types.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addMessageLocked(chatID, content, isBot)
}

// Messages returns the stored messages of a chat, oldest first.
func (f *Fake) Messages(chatID string) []*types.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return types.CloneMessages(f.messages[chatID])
}

func (f *Fake) record(operation string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, operation)
	return f.Errors[operation]
}

func (f *Fake) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *Fake) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *Fake) addMessageLocked(chatID, content string, isBot bool) *types.Message {
	message := &types.Message{
		ID:        f.newID("m"),
		ChatID:    chatID,
		Content:   content,
		IsBot:     isBot,
		CreatedAt: f.tick(),
	}
	f.messages[chatID] = append(f.messages[chatID], message)
	for _, chat := range f.chats {
		if chat.ID == chatID {
			chat.UpdatedAt = message.CreatedAt
		}
	}
	return message
}

// GetChats implements backend.Backend.
func (f *Fake) GetChats(ctx context.Context) ([]*types.Chat, error) {
	if err := f.record("GetChats"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	chats := make([]*types.Chat, 0, len(f.chats))
	for _, chat := range f.chats {
		copied := *chat
		if messages := f.messages[chat.ID]; len(messages) > 0 {
			copied.Messages = []*types.Message{messages[len(messages)-1]}
		}
		chats = append(chats, &copied)
	}
	return chats, nil
}

// CreateChat implements backend.Backend.
func (f *Fake) CreateChat(ctx context.Context, title string) (*types.Chat, error) {
	if err := f.record("CreateChat"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	chat := &types.Chat{ID: f.newID("c"), Title: title, UpdatedAt: f.tick()}
	f.chats = append([]*types.Chat{chat}, f.chats...)
	copied := *chat
	return &copied, nil
}

// DeleteChat implements backend.Backend.
func (f *Fake) DeleteChat(ctx context.Context, chatID string) error {
	if err := f.record("DeleteChat"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, chat := range f.chats {
		if chat.ID == chatID {
			f.chats = append(f.chats[:i], f.chats[i+1:]...)
			delete(f.messages, chatID)
			return nil
		}
	}
	return errors.Wrapf(backend.ErrNotFound, "deleting chat %s", chatID)
}

// GetChatMessages implements backend.Backend.
func (f *Fake) GetChatMessages(ctx context.Context, chatID string) ([]*types.Message, error) {
	if err := f.record("GetChatMessages"); err != nil {
		return nil, err
	}
	return f.Messages(chatID), nil
}

// SubscribeMessages implements backend.Backend. The caller of the fake drives the
// stream through the Subscription published on Subscriptions.
func (f *Fake) SubscribeMessages(ctx context.Context, chatID string) (<-chan backend.Snapshot, error) {
	if err := f.record("SubscribeMessages"); err != nil {
		return nil, err
	}
	snapshots := make(chan backend.Snapshot, 16)
	if f.Subscriptions != nil {
		f.Subscriptions <- &Subscription{ChatID: chatID, Snapshots: snapshots, Ctx: ctx}
	}
	return snapshots, nil
}

// SendMessage implements backend.Backend.
func (f *Fake) SendMessage(ctx context.Context, chatID, content string) (*types.Message, error) {
	if err := f.record("SendMessage"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addMessageLocked(chatID, content, false), nil
}

// SendChatbotMessage implements backend.Backend.
func (f *Fake) SendChatbotMessage(ctx context.Context, chatID, message string) error {
	if err := f.record("SendChatbotMessage"); err != nil {
		return err
	}
	if f.Reply == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addMessageLocked(chatID, f.Reply(message), true)
	return nil
}
