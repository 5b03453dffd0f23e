// Package send runs the two phases of sending a user message: store it, then ask
// the assistant to answer.
package send

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/adityaraul004/Chatbotapp/internal/types"
)

// ErrEmptyMessage is returned for messages that are empty once trimmed.
var ErrEmptyMessage = errors.New("message is empty")

// Backend is the subset of the data layer a send needs.
type Backend interface {
	SendMessage(ctx context.Context, chatID, content string) (*types.Message, error)
	SendChatbotMessage(ctx context.Context, chatID, message string) error
}

// Result describes how far a send went.
type Result struct {
	ChatID  string
	Content string
	// Message is the stored user message, nil if the first phase failed.
	Message    *types.Message
	PersistErr error
	TriggerErr error
}

// Err returns the first failure, or nil.
func (r *Result) Err() error {
	if r.PersistErr != nil {
		return r.PersistErr
	}
	return r.TriggerErr
}

// Triggered reports whether the assistant was asked to answer successfully.
func (r *Result) Triggered() bool {
	return r.PersistErr == nil && r.TriggerErr == nil
}

// Sequence sends content to a chat. The assistant is only triggered once the user
// message has been stored.
type Sequence struct {
	backend Backend
}

// NewSequence instantiates and returns a new Sequence.
func NewSequence(backend Backend) *Sequence {
	return &Sequence{backend: backend}
}

// Prepare trims content and rejects an empty message or a missing chat.
func Prepare(chatID, content string) (string, error) {
	if chatID == "" {
		return "", errors.New("no chat selected")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyMessage
	}
	return content, nil
}

// Run executes both phases. The returned error is only set when nothing was sent.
func (s *Sequence) Run(ctx context.Context, chatID, content string) (*Result, error) {
	content, err := Prepare(chatID, content)
	if err != nil {
		return nil, err
	}

	result := &Result{ChatID: chatID, Content: content}
	result.Message, result.PersistErr = s.backend.SendMessage(ctx, chatID, content)
	if result.PersistErr != nil {
		result.PersistErr = errors.Wrap(result.PersistErr, "storing message")
		return result, nil
	}
	if err := s.backend.SendChatbotMessage(ctx, chatID, content); err != nil {
		result.TriggerErr = errors.Wrap(err, "triggering assistant")
	}
	return result, nil
}
