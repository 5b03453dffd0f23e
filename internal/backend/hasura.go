package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/adityaraul004/Chatbotapp/internal/configuration"
	"github.com/adityaraul004/Chatbotapp/internal/graphql"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

type transport interface {
	Do(ctx context.Context, query string, variables map[string]any, out any) error
	Subscribe(ctx context.Context, query string, variables map[string]any) (<-chan graphql.Event, error)
}

// Trigger starts the assistant pipeline for a chat.
type Trigger interface {
	Trigger(ctx context.Context, chatID, message string) error
}

// Hasura implements Backend on top of a Hasura GraphQL endpoint.
type Hasura struct {
	transport transport
	trigger   Trigger
}

// NewHasura returns a backend using the given transport. A nil trigger runs the
// `sendMessage` action through the same transport.
func NewHasura(transport transport, trigger Trigger) *Hasura {
	hasura := &Hasura{transport: transport, trigger: trigger}
	if trigger == nil {
		hasura.trigger = &actionTrigger{transport: transport}
	}
	return hasura
}

// New builds the backend described by the configuration.
func New(config *configuration.Config, client *graphql.Client, httpClient *http.Client, token graphql.TokenSource) *Hasura {
	var trigger Trigger
	if config.Chatbot.TriggerMode == configuration.TriggerModeWebhook {
		trigger = NewWebhook(config.Chatbot.WebhookURL, httpClient, token)
	}
	return NewHasura(client, trigger)
}

// GetChats implements the Backend interface.
func (h *Hasura) GetChats(ctx context.Context) ([]*types.Chat, error) {
	var response struct {
		Chats []*types.Chat `json:"chats"`
	}
	if err := h.transport.Do(ctx, getChatsQuery, nil, &response); err != nil {
		return nil, errors.Wrap(err, "getting chats")
	}
	for _, chat := range response.Chats {
		for _, message := range chat.Messages {
			message.ChatID = chat.ID
		}
	}
	return response.Chats, nil
}

// CreateChat implements the Backend interface.
func (h *Hasura) CreateChat(ctx context.Context, title string) (*types.Chat, error) {
	var response struct {
		Chat *types.Chat `json:"insert_chats_one"`
	}
	if err := h.transport.Do(ctx, createChatMutation, map[string]any{"title": title}, &response); err != nil {
		return nil, errors.Wrap(err, "creating chat")
	}
	if response.Chat == nil {
		return nil, errors.New("creating chat: no chat returned")
	}
	return response.Chat, nil
}

// DeleteChat implements the Backend interface.
func (h *Hasura) DeleteChat(ctx context.Context, chatID string) error {
	var response struct {
		Deleted *struct {
			ID string `json:"id"`
		} `json:"delete_chats_by_pk"`
	}
	if err := h.transport.Do(ctx, deleteChatMutation, map[string]any{"id": chatID}, &response); err != nil {
		return errors.Wrapf(err, "deleting chat %s", chatID)
	}
	if response.Deleted == nil {
		return errors.Wrapf(ErrNotFound, "deleting chat %s", chatID)
	}
	return nil
}

// GetChatMessages implements the Backend interface.
func (h *Hasura) GetChatMessages(ctx context.Context, chatID string) ([]*types.Message, error) {
	var response messagesResponse
	if err := h.transport.Do(ctx, getChatMessagesQuery, map[string]any{"chatId": chatID}, &response); err != nil {
		return nil, errors.Wrapf(err, "getting messages of chat %s", chatID)
	}
	return response.normalize(chatID), nil
}

// SubscribeMessages implements the Backend interface.
func (h *Hasura) SubscribeMessages(ctx context.Context, chatID string) (<-chan Snapshot, error) {
	events, err := h.transport.Subscribe(ctx, messagesSubscription, map[string]any{"chatId": chatID})
	if err != nil {
		return nil, errors.Wrapf(err, "subscribing to messages of chat %s", chatID)
	}

	snapshots := make(chan Snapshot)
	go func() {
		defer close(snapshots)
		for event := range events {
			snapshot := Snapshot{ChatID: chatID}
			if event.Err != nil {
				snapshot.Err = errors.Wrapf(event.Err, "streaming messages of chat %s", chatID)
			} else {
				var response messagesResponse
				if err := json.Unmarshal(event.Data, &response); err != nil {
					snapshot.Err = errors.Wrap(err, "unmarshaling messages")
				} else {
					snapshot.Messages = response.normalize(chatID)
				}
			}
			select {
			case snapshots <- snapshot:
			case <-ctx.Done():
				return
			}
			if snapshot.Err != nil {
				return
			}
		}
	}()
	return snapshots, nil
}

// SendMessage implements the Backend interface.
func (h *Hasura) SendMessage(ctx context.Context, chatID, content string) (*types.Message, error) {
	var response struct {
		Message *types.Message `json:"insert_messages_one"`
	}
	variables := map[string]any{"chatId": chatID, "content": content}
	if err := h.transport.Do(ctx, sendMessageMutation, variables, &response); err != nil {
		return nil, errors.Wrapf(err, "sending message to chat %s", chatID)
	}
	if response.Message == nil {
		return nil, errors.Errorf("sending message to chat %s: no message returned", chatID)
	}
	if response.Message.ChatID == "" {
		response.Message.ChatID = chatID
	}
	return response.Message, nil
}

// SendChatbotMessage implements the Backend interface.
func (h *Hasura) SendChatbotMessage(ctx context.Context, chatID, message string) error {
	if err := h.trigger.Trigger(ctx, chatID, message); err != nil {
		return errors.Wrapf(err, "triggering chatbot for chat %s", chatID)
	}
	return nil
}

type messagesResponse struct {
	Messages []*types.Message `json:"messages"`
}

func (r *messagesResponse) normalize(chatID string) []*types.Message {
	for _, message := range r.Messages {
		if message.ChatID == "" {
			message.ChatID = chatID
		}
	}
	types.SortMessages(r.Messages)
	return r.Messages
}

// actionTrigger runs the Hasura `sendMessage` action, which forwards to the workflow webhook.
type actionTrigger struct {
	transport transport
}

func (t *actionTrigger) Trigger(ctx context.Context, chatID, message string) error {
	variables := map[string]any{"chatId": chatID, "message": message}
	if err := t.transport.Do(ctx, sendChatbotMessageMutation, variables, nil); err != nil {
		return errors.Wrap(err, "running sendMessage action")
	}
	return nil
}
