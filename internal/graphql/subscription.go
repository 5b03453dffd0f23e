package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/adityaraul004/Chatbotapp/internal/debug"
)

const (
	subprotocol      = "graphql-transport-ws"
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second

	messageConnectionInit = "connection_init"
	messageConnectionAck  = "connection_ack"
	messagePing           = "ping"
	messagePong           = "pong"
	messageSubscribe      = "subscribe"
	messageNext           = "next"
	messageError          = "error"
	messageComplete       = "complete"
)

// Event is one delivery of a subscription: either a data payload or an error.
type Event struct {
	Data json.RawMessage
	Err  error
}

type wireMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscription struct {
	id     string
	conn   *websocket.Conn
	events chan Event

	writeMu sync.Mutex
}

// Subscribe starts a subscription. The returned channel is closed when the
// subscription ends. A terminal error is delivered as the last event.
// Cancelling ctx completes the operation and closes the socket.
func (c *Client) Subscribe(ctx context.Context, query string, variables map[string]any) (<-chan Event, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.wsEndpoint, c.header())
	if err != nil {
		return nil, errors.Wrap(err, "dialing websocket")
	}
	s := &subscription{
		id:     uuid.NewString(),
		conn:   conn,
		events: make(chan Event),
	}

	if err := s.init(c.token()); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "initializing connection")
	}
	if err := s.write(messageSubscribe, &request{Query: query, Variables: variables}); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "subscribing")
	}

	done := make(chan struct{})
	go s.read(ctx, done)
	go s.closeOnCancel(ctx, done)
	return s.events, nil
}

func (s *subscription) init(token string) error {
	payload := map[string]any{}
	if token != "" {
		payload["headers"] = map[string]string{"Authorization": "Bearer " + token}
	}
	if err := s.write(messageConnectionInit, payload); err != nil {
		return err
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		return errors.Wrap(err, "setting read deadline")
	}
	for {
		message := &wireMessage{}
		if err := s.conn.ReadJSON(message); err != nil {
			return errors.Wrap(err, "waiting for ack")
		}
		switch message.Type {
		case messageConnectionAck:
			return errors.Wrap(s.conn.SetReadDeadline(time.Time{}), "clearing read deadline")
		case messagePing:
			if err := s.write(messagePong, nil); err != nil {
				return err
			}
		default:
			return errors.Errorf("unexpected %q before connection_ack", message.Type)
		}
	}
}

func (s *subscription) read(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	defer close(s.events)
	defer s.conn.Close()

	for {
		message := &wireMessage{}
		if err := s.conn.ReadJSON(message); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return
			}
			s.emit(ctx, Event{Err: errors.Wrap(err, "reading message")})
			return
		}

		switch message.Type {
		case messagePing:
			if err := s.write(messagePong, nil); err != nil {
				debug.GetLogger().Error("answering ping", "error", err)
			}
		case messagePong:
		case messageNext:
			if message.ID != s.id {
				continue
			}
			event := Event{}
			var payload struct {
				Data   json.RawMessage `json:"data"`
				Errors json.RawMessage `json:"errors"`
			}
			if err := json.Unmarshal(message.Payload, &payload); err != nil {
				event.Err = errors.Wrap(err, "unmarshaling payload")
			} else if gqlErr := parseErrorsJSON(payload.Errors); gqlErr != nil {
				event.Err = gqlErr
			} else {
				event.Data = payload.Data
			}
			if !s.emit(ctx, event) {
				return
			}
		case messageError:
			if message.ID != s.id {
				continue
			}
			err := parseErrorsJSON(message.Payload)
			if err == nil {
				err = &Error{Messages: []string{"subscription failed"}}
			}
			s.emit(ctx, Event{Err: err})
			return
		case messageComplete:
			if message.ID == s.id {
				return
			}
		default:
			debug.GetLogger().Warn("unknown subscription message", "type", message.Type)
		}
	}
}

func (s *subscription) closeOnCancel(ctx context.Context, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		if err := s.write(messageComplete, nil); err != nil {
			debug.GetLogger().Debug("completing subscription", "error", err)
		}
		s.writeMu.Lock()
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout),
		)
		s.writeMu.Unlock()
		s.conn.Close()
	case <-done:
	}
}

// emit delivers an event unless the subscriber has gone away.
func (s *subscription) emit(ctx context.Context, event Event) bool {
	select {
	case s.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *subscription) write(messageType string, payload any) error {
	message := &wireMessage{Type: messageType}
	if messageType == messageSubscribe || messageType == messageComplete {
		message.ID = s.id
	}
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "marshaling payload")
		}
		message.Payload = bytes
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return errors.Wrap(err, "setting write deadline")
	}
	if err := s.conn.WriteJSON(message); err != nil {
		return errors.Wrapf(err, "writing %s", messageType)
	}
	return nil
}

func parseErrorsJSON(raw json.RawMessage) *Error {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil
	}
	return parseErrors(gjson.ParseBytes(raw))
}

// header authenticates the upgrade request for servers that check it there.
func (c *Client) header() http.Header {
	header := http.Header{}
	if token := c.token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return header
}
