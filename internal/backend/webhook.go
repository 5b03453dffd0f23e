package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/adityaraul004/Chatbotapp/internal/graphql"
)

// Webhook posts chatbot requests straight to the workflow webhook.
type Webhook struct {
	url        string
	httpClient *http.Client
	token      graphql.TokenSource
}

// NewWebhook instantiates and returns a new Webhook.
func NewWebhook(url string, httpClient *http.Client, token graphql.TokenSource) *Webhook {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Webhook{url: url, httpClient: httpClient, token: token}
}

type webhookRequest struct {
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

// Trigger implements the Trigger interface.
func (w *Webhook) Trigger(ctx context.Context, chatID, message string) error {
	body, err := json.Marshal(&webhookRequest{ChatID: chatID, Message: message})
	if err != nil {
		return errors.Wrap(err, "marshaling request")
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	request.Header.Set("Content-Type", "application/json")
	if token := w.token(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := w.httpClient.Do(request)
	if err != nil {
		return errors.Wrap(err, "calling webhook")
	}
	defer response.Body.Close()
	if response.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return errors.Errorf("webhook returned %d: %s", response.StatusCode, responseBody)
	}
	_, _ = io.Copy(io.Discard, response.Body)
	return nil
}
