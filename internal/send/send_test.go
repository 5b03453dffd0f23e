package send

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/adityaraul004/Chatbotapp/internal/backend/backendtest"
)

func TestRunPersistsBeforeTriggering(t *testing.T) {
	fake := backendtest.New()
	chat := fake.AddChat("c1", "Trip planning")

	result, err := NewSequence(fake).Run(context.Background(), chat.ID, "  Plan a weekend in Lisbon  ")
	require.NoError(t, err)
	require.True(t, result.Triggered())
	require.NoError(t, result.Err())
	require.Equal(t, "Plan a weekend in Lisbon", result.Content)
	require.Equal(t, "Plan a weekend in Lisbon", result.Message.Content)
	require.False(t, result.Message.IsBot)
	require.Equal(t, []string{"SendMessage", "SendChatbotMessage"}, fake.Calls())
}

func TestRunRejectsEmptyMessage(t *testing.T) {
	fake := backendtest.New()
	for _, content := range []string{"", "   ", "\n\t"} {
		result, err := NewSequence(fake).Run(context.Background(), "c1", content)
		require.ErrorIs(t, err, ErrEmptyMessage)
		require.Nil(t, result)
	}
	require.Empty(t, fake.Calls())
}

func TestRunRequiresChat(t *testing.T) {
	fake := backendtest.New()
	_, err := NewSequence(fake).Run(context.Background(), "", "hello")
	require.Error(t, err)
	require.Empty(t, fake.Calls())
}

func TestRunSkipsTriggerWhenPersistFails(t *testing.T) {
	fake := backendtest.New()
	fake.SetError("SendMessage", errors.New("permission denied"))

	result, err := NewSequence(fake).Run(context.Background(), "c1", "hello")
	require.NoError(t, err)
	require.Error(t, result.PersistErr)
	require.NoError(t, result.TriggerErr)
	require.Nil(t, result.Message)
	require.False(t, result.Triggered())
	require.Equal(t, result.PersistErr, result.Err())
	require.Equal(t, []string{"SendMessage"}, fake.Calls())
}

func TestRunReportsTriggerFailure(t *testing.T) {
	fake := backendtest.New()
	fake.SetError("SendChatbotMessage", errors.New("webhook down"))

	result, err := NewSequence(fake).Run(context.Background(), "c1", "hello")
	require.NoError(t, err)
	require.NoError(t, result.PersistErr)
	require.Error(t, result.TriggerErr)
	require.NotNil(t, result.Message)
	require.Contains(t, result.Err().Error(), "webhook down")
	require.Equal(t, []string{"SendMessage", "SendChatbotMessage"}, fake.Calls())
}
