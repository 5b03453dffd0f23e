package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// TokenSource returns the bearer token to attach to a request, or "" for none.
type TokenSource func() string

// Error holds the errors array of a GraphQL response.
type Error struct {
	Messages []string
	Codes    []string
}

func (e *Error) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

// HasCode reports whether any of the errors carries the given extension code.
func (e *Error) HasCode(code string) bool {
	for _, c := range e.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// Client executes GraphQL operations over HTTP and websocket.
type Client struct {
	endpoint   string
	wsEndpoint string
	httpClient *http.Client
	dialer     *websocket.Dialer
	token      TokenSource
}

// New instantiates and returns a new Client.
func New(endpoint, wsEndpoint string, httpClient *http.Client, token TokenSource) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		endpoint:   endpoint,
		wsEndpoint: wsEndpoint,
		httpClient: httpClient,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
			Subprotocols:     []string{subprotocol},
		},
		token: token,
	}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Do executes a query or mutation and decodes its `data` into out. out may be nil.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	data, err := c.Raw(ctx, query, variables)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "unmarshaling data")
	}
	return nil
}

// Raw executes a query or mutation and returns the raw `data` object.
func (c *Client) Raw(ctx context.Context, query string, variables map[string]any) ([]byte, error) {
	body, err := json.Marshal(&request{Query: query, Variables: variables})
	if err != nil {
		return nil, errors.Wrap(err, "marshaling request")
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	if token := c.token(); token != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+token)
	}

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, errors.Wrap(err, "sending request")
	}
	defer httpResponse.Body.Close()

	responseBody, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}
	if !gjson.ValidBytes(responseBody) {
		return nil, errors.Errorf("invalid response (status %d): %s", httpResponse.StatusCode, truncate(responseBody))
	}
	if gqlErr := parseErrors(gjson.GetBytes(responseBody, "errors")); gqlErr != nil {
		return nil, gqlErr
	}
	if httpResponse.StatusCode >= 300 {
		return nil, errors.Errorf("unexpected status %d: %s", httpResponse.StatusCode, truncate(responseBody))
	}
	data := gjson.GetBytes(responseBody, "data")
	if !data.Exists() {
		return nil, errors.New("response has no data")
	}
	return []byte(data.Raw), nil
}

func parseErrors(result gjson.Result) *Error {
	if !result.IsArray() || len(result.Array()) == 0 {
		return nil
	}
	gqlErr := &Error{}
	result.ForEach(func(_, value gjson.Result) bool {
		gqlErr.Messages = append(gqlErr.Messages, value.Get("message").String())
		if code := value.Get("extensions.code").String(); code != "" {
			gqlErr.Codes = append(gqlErr.Codes, code)
		}
		return true
	})
	return gqlErr
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
