package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/adityaraul004/Chatbotapp/internal/debug"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

const (
	// Tokens are refreshed this long before they expire.
	refreshMargin      = 60 * time.Second
	minRefreshInterval = 5 * time.Second
)

// Error is an error reported by the auth service. Message is meant for the user.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth: %s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("auth: %s (%d)", e.Message, e.Status)
}

// User is the signed in account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Session holds the credentials issued by the auth service. It only lives in memory.
type Session struct {
	AccessToken          string `json:"accessToken"`
	AccessTokenExpiresIn int    `json:"accessTokenExpiresIn"`
	RefreshToken         string `json:"refreshToken"`
	User                 *User  `json:"user"`
}

type sessionResponse struct {
	Session *Session `json:"session"`
}

// Client talks to the Nhost auth service and publishes the authentication status.
type Client struct {
	endpoint   string
	httpClient *http.Client

	mu           sync.Mutex
	session      *Session
	status       types.AuthStatus
	subscribers  map[int]chan types.AuthStatus
	nextID       int
	refreshTimer *time.Timer
}

// New returns a client in the loading state. Call Start to settle it.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:    endpoint,
		httpClient:  httpClient,
		status:      types.AuthStatus{IsLoading: true},
		subscribers: map[int]chan types.AuthStatus{},
	}
}

// Start settles the initial status. No credentials are persisted between runs,
// so the client always settles as unauthenticated.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.status.IsLoading {
		return
	}
	c.publishLocked(types.AuthStatus{IsAuthenticated: c.session != nil})
}

// Status returns the current status.
func (c *Client) Status() types.AuthStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Subscribe returns a channel receiving the current status followed by every change.
// Slow readers only observe the latest status. The returned function unsubscribes
// and closes the channel.
func (c *Client) Subscribe() (<-chan types.AuthStatus, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	ch := make(chan types.AuthStatus, 1)
	ch <- c.status
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(ch)
			}
		})
	}
}

// AccessToken returns the bearer token of the current session, or "".
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

// User returns the signed in user, or nil.
func (c *Client) User() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.User
}

// SignUp registers a new account. When the service requires email verification no
// session is returned and the status does not change.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) error {
	request := map[string]any{
		"email":    email,
		"password": password,
		"options":  map[string]any{"displayName": displayName},
	}
	response := &sessionResponse{}
	if err := c.post(ctx, "/signup/email-password", request, response); err != nil {
		return errors.Wrap(err, "signing up")
	}
	if response.Session != nil {
		c.setSession(response.Session)
	}
	return nil
}

// SignIn authenticates with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	request := map[string]any{
		"email":    email,
		"password": password,
	}
	response := &sessionResponse{}
	if err := c.post(ctx, "/signin/email-password", request, response); err != nil {
		return errors.Wrap(err, "signing in")
	}
	if response.Session == nil {
		return &Error{Status: http.StatusUnauthorized, Message: "No session returned, please verify your email"}
	}
	c.setSession(response.Session)
	return nil
}

// SignOut invalidates the session. The local session is dropped even if the
// service cannot be reached.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.clearSessionLocked()
	c.mu.Unlock()

	if session == nil {
		return nil
	}
	request := map[string]any{"refreshToken": session.RefreshToken}
	if err := c.post(ctx, "/signout", request, nil); err != nil {
		return errors.Wrap(err, "signing out")
	}
	return nil
}

// Close stops the refresh timer and closes every subscriber channel.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}
}

func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return nil
	}

	request := map[string]any{"refreshToken": session.RefreshToken}
	refreshed := &Session{}
	if err := c.post(ctx, "/token", request, refreshed); err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	if refreshed.User == nil {
		refreshed.User = session.User
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A sign out raced with the refresh.
	if c.session != session {
		return nil
	}
	c.session = refreshed
	c.scheduleRefreshLocked()
	return nil
}

func (c *Client) setSession(session *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
	c.scheduleRefreshLocked()
	c.publishLocked(types.AuthStatus{IsAuthenticated: true})
}

func (c *Client) clearSessionLocked() {
	c.session = nil
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	c.publishLocked(types.AuthStatus{})
}

func (c *Client) scheduleRefreshLocked() {
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	if c.session == nil || c.session.AccessTokenExpiresIn <= 0 || c.session.RefreshToken == "" {
		return
	}
	delay := time.Duration(c.session.AccessTokenExpiresIn)*time.Second - refreshMargin
	if delay < minRefreshInterval {
		delay = minRefreshInterval
	}
	c.refreshTimer = time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.refresh(ctx); err != nil {
			debug.GetLogger().Error("refreshing session", "error", err)
			c.mu.Lock()
			c.clearSessionLocked()
			c.mu.Unlock()
		}
	})
}

func (c *Client) publishLocked(status types.AuthStatus) {
	c.status = status
	for _, ch := range c.subscribers {
		// Keep only the latest value for slow readers.
		select {
		case <-ch:
		default:
		}
		ch <- status
	}
}

func (c *Client) post(ctx context.Context, path string, request, response any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "marshaling request")
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return errors.Wrapf(err, "calling %s", path)
	}
	defer httpResponse.Body.Close()

	responseBody, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}
	if httpResponse.StatusCode >= 300 {
		return parseError(httpResponse.StatusCode, responseBody)
	}
	if response == nil || len(bytes.TrimSpace(responseBody)) == 0 || !gjson.ValidBytes(responseBody) {
		return nil
	}
	if err := json.Unmarshal(responseBody, response); err != nil {
		return errors.Wrap(err, "unmarshaling response")
	}
	return nil
}

func parseError(status int, body []byte) *Error {
	authErr := &Error{Status: status}
	if gjson.ValidBytes(body) {
		authErr.Code = gjson.GetBytes(body, "error").String()
		authErr.Message = gjson.GetBytes(body, "message").String()
	}
	if authErr.Message == "" {
		authErr.Message = http.StatusText(status)
	}
	return authErr
}
