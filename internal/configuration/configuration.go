package configuration

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/adityaraul004/Chatbotapp/internal/file"
)

const (
	// TriggerModeAction asks Hasura to run the `sendMessage` action, which calls the webhook.
	TriggerModeAction = "action"
	// TriggerModeWebhook posts straight to the workflow webhook.
	TriggerModeWebhook = "webhook"

	defaultRegion = "us-east-1"
)

var defaultConfig = Config{
	RequestTimeout: 30,
	LogFile:        "/tmp/subspace-debug.log",

	Nhost: &NhostConfig{
		Region: defaultRegion,
	},

	Chatbot: &ChatbotConfig{
		TriggerMode: TriggerModeAction,
	},

	Chat: &ChatConfig{
		PollIntervalMillis: 2000,
		HistoryFile:        "~/.config/subspace/history",
	},
}

// Config holds configuration for the subspace client.
type Config struct {
	// Request timeout in seconds, applied to every HTTP call.
	RequestTimeout int    `json:"request_timeout"`
	LogFile        string `json:"log_file"`

	Nhost   *NhostConfig   `json:"nhost"`
	Chatbot *ChatbotConfig `json:"chatbot"`
	Chat    *ChatConfig    `json:"chat"`
}

// NhostConfig locates the backend project.
type NhostConfig struct {
	Subdomain string `json:"subdomain"`
	Region    string `json:"region"`
	// Explicit endpoints win over the ones derived from subdomain and region.
	AuthURL      string `json:"auth_url,omitempty"`
	GraphQLURL   string `json:"graphql_url,omitempty"`
	GraphQLWSURL string `json:"graphql_ws_url,omitempty"`
}

// ChatbotConfig selects how the assistant pipeline is triggered.
type ChatbotConfig struct {
	TriggerMode string `json:"trigger_mode"`
	WebhookURL  string `json:"webhook_url,omitempty"`
}

// ChatConfig holds configuration for the chat views.
type ChatConfig struct {
	PollIntervalMillis int    `json:"poll_interval_millis"`
	HistoryFile        string `json:"history_file"`
}

// Parse a configuration file, then apply overrides from the .env file at envPath.
// A missing .env file is not an error.
func Parse(path, envPath string) (*Config, error) {
	path, err := file.ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}

	if envPath != "" {
		ok, err := file.Exists(envPath)
		if err != nil {
			return nil, errors.Wrap(err, "checking env file")
		}
		if ok {
			env, err := godotenv.Read(envPath)
			if err != nil {
				return nil, errors.Wrap(err, "reading env file")
			}
			config.ApplyEnv(env)
		}
	}

	if config.Chat.HistoryFile, err = file.ExpandPath(config.Chat.HistoryFile); err != nil {
		return nil, errors.Wrap(err, "expanding history file path")
	}
	if config.LogFile, err = file.ExpandPath(config.LogFile); err != nil {
		return nil, errors.Wrap(err, "expanding log file path")
	}
	return config, nil
}

// ApplyEnv overrides settings with the variables written by `subspace setup`.
func (c *Config) ApplyEnv(env map[string]string) {
	if v := env["VITE_NHOST_SUBDOMAIN"]; v != "" {
		c.Nhost.Subdomain = v
	}
	if v := env["VITE_NHOST_REGION"]; v != "" {
		c.Nhost.Region = v
	}
	if v := env["VITE_HASURA_ENDPOINT"]; v != "" {
		c.Nhost.GraphQLURL = v
	}
	if v := env["VITE_HASURA_WS_ENDPOINT"]; v != "" {
		c.Nhost.GraphQLWSURL = v
	}
	if v := env["VITE_N8N_WEBHOOK_URL"]; v != "" {
		c.Chatbot.WebhookURL = v
	}
}

// Validate returns an error if the backend cannot be located.
func (c *Config) Validate() error {
	if c.Nhost.Subdomain == "" && (c.Nhost.AuthURL == "" || c.Nhost.GraphQLURL == "") {
		return errors.New("nhost subdomain is not configured, run `subspace setup`")
	}
	switch c.Chatbot.TriggerMode {
	case TriggerModeAction:
	case TriggerModeWebhook:
		if c.Chatbot.WebhookURL == "" {
			return errors.New("chatbot trigger mode is webhook but no webhook url is configured")
		}
	default:
		return errors.Errorf("unknown chatbot trigger mode %q", c.Chatbot.TriggerMode)
	}
	return nil
}

// AuthEndpoint returns the base URL of the auth service.
func (c *Config) AuthEndpoint() string {
	if c.Nhost.AuthURL != "" {
		return strings.TrimSuffix(c.Nhost.AuthURL, "/")
	}
	return fmt.Sprintf("https://%s.auth.%s.nhost.run/v1", c.Nhost.Subdomain, c.Nhost.Region)
}

// GraphQLEndpoint returns the HTTP GraphQL endpoint.
func (c *Config) GraphQLEndpoint() string {
	if c.Nhost.GraphQLURL != "" {
		return c.Nhost.GraphQLURL
	}
	return fmt.Sprintf("https://%s.nhost.run/v1/graphql", c.Nhost.Subdomain)
}

// GraphQLWSEndpoint returns the websocket GraphQL endpoint.
func (c *Config) GraphQLWSEndpoint() string {
	if c.Nhost.GraphQLWSURL != "" {
		return c.Nhost.GraphQLWSURL
	}
	endpoint := c.GraphQLEndpoint()
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	}
	return endpoint
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// PollInterval returns the chat list refresh interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Chat.PollIntervalMillis) * time.Millisecond
}

// applyDefaults fills every unset field from the default configuration.
func (c *Config) applyDefaults() error {
	defaults := defaultConfig.clone()
	if err := mergo.Merge(c, defaults); err != nil {
		return errors.Wrap(err, "merging default configuration")
	}
	return nil
}

// clone deep copies the configuration so merges never alias the defaults.
func (c Config) clone() Config {
	nhost, chatbot, chat := *c.Nhost, *c.Chatbot, *c.Chat
	c.Nhost, c.Chatbot, c.Chat = &nhost, &chatbot, &chat
	return c
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	if err := file.CreateParentDirectory(path); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	defaults := defaultConfig.clone()
	if err := defaults.save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}
