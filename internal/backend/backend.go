package backend

import (
	"context"

	"github.com/pkg/errors"

	"github.com/adityaraul004/Chatbotapp/internal/types"
)

// ErrNotFound is returned when an operation targets a record that does not exist.
var ErrNotFound = errors.New("not found")

// Snapshot is one live delivery of a chat's messages. Err is set on the last
// snapshot if the stream ended with an error.
type Snapshot struct {
	ChatID   string
	Messages []*types.Message
	Err      error
}

// Backend is the data layer the views talk to.
type Backend interface {
	// GetChats returns the user's chats, most recently updated first, each with its latest message.
	GetChats(ctx context.Context) ([]*types.Chat, error)
	CreateChat(ctx context.Context, title string) (*types.Chat, error)
	// DeleteChat returns ErrNotFound if the chat does not exist.
	DeleteChat(ctx context.Context, chatID string) error
	// GetChatMessages returns the chat's messages, oldest first.
	GetChatMessages(ctx context.Context, chatID string) ([]*types.Message, error)
	// SubscribeMessages streams snapshots of the chat's messages until ctx is cancelled.
	SubscribeMessages(ctx context.Context, chatID string) (<-chan Snapshot, error)
	// SendMessage persists a user message.
	SendMessage(ctx context.Context, chatID, content string) (*types.Message, error)
	// SendChatbotMessage asks the assistant pipeline to answer message in the chat.
	SendChatbotMessage(ctx context.Context, chatID, message string) error
}
