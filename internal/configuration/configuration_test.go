package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseInitializesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subspace", "config.json")

	config, err := Parse(path, "")
	require.NoError(t, err)
	require.FileExists(t, path)

	require.Equal(t, 2*time.Second, config.PollInterval())
	require.Equal(t, 30*time.Second, config.Timeout())
	require.Equal(t, defaultRegion, config.Nhost.Region)
	require.Equal(t, TriggerModeAction, config.Chatbot.TriggerMode)
}

func TestParseMergesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nhost": {"subdomain": "myproject"}, "chat": {"poll_interval_millis": 500}}`), 0644))

	config, err := Parse(path, "")
	require.NoError(t, err)

	require.Equal(t, "myproject", config.Nhost.Subdomain)
	require.Equal(t, defaultRegion, config.Nhost.Region)
	require.Equal(t, 500*time.Millisecond, config.PollInterval())
	require.NotEmpty(t, config.Chat.HistoryFile)
	require.Equal(t, 30, config.RequestTimeout)

	// The shared defaults must not be mutated by a parse.
	require.Empty(t, defaultConfig.Nhost.Subdomain)
}

func TestParseAppliesEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	envPath := filepath.Join(dir, ".env")
	env := `VITE_NHOST_SUBDOMAIN=fromenv
VITE_NHOST_REGION=eu-central-1
VITE_HASURA_ENDPOINT=https://fromenv.nhost.run/v1/graphql
VITE_N8N_WEBHOOK_URL=https://me.n8n.cloud/webhook/chatbot
`
	require.NoError(t, os.WriteFile(envPath, []byte(env), 0644))

	config, err := Parse(path, envPath)
	require.NoError(t, err)

	require.Equal(t, "fromenv", config.Nhost.Subdomain)
	require.Equal(t, "eu-central-1", config.Nhost.Region)
	require.Equal(t, "https://fromenv.auth.eu-central-1.nhost.run/v1", config.AuthEndpoint())
	require.Equal(t, "https://fromenv.nhost.run/v1/graphql", config.GraphQLEndpoint())
	require.Equal(t, "wss://fromenv.nhost.run/v1/graphql", config.GraphQLWSEndpoint())
	require.Equal(t, "https://me.n8n.cloud/webhook/chatbot", config.Chatbot.WebhookURL)
}

func TestEndpoints(t *testing.T) {
	config := defaultConfig.clone()
	config.Nhost.Subdomain = "abc"
	require.Equal(t, "https://abc.auth.us-east-1.nhost.run/v1", config.AuthEndpoint())
	require.Equal(t, "https://abc.nhost.run/v1/graphql", config.GraphQLEndpoint())
	require.Equal(t, "wss://abc.nhost.run/v1/graphql", config.GraphQLWSEndpoint())

	config.Nhost.AuthURL = "http://localhost:4000/v1/"
	config.Nhost.GraphQLURL = "http://localhost:8080/v1/graphql"
	require.Equal(t, "http://localhost:4000/v1", config.AuthEndpoint())
	require.Equal(t, "ws://localhost:8080/v1/graphql", config.GraphQLWSEndpoint())
}

func TestValidate(t *testing.T) {
	config := defaultConfig.clone()
	require.Error(t, config.Validate())

	config.Nhost.Subdomain = "abc"
	require.NoError(t, config.Validate())

	config.Chatbot.TriggerMode = TriggerModeWebhook
	require.Error(t, config.Validate())

	config.Chatbot.WebhookURL = "https://me.n8n.cloud/webhook/chatbot"
	require.NoError(t, config.Validate())

	config.Chatbot.TriggerMode = "carrier-pigeon"
	require.Error(t, config.Validate())
}
