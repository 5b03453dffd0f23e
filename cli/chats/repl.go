package chats

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
	"github.com/spf13/cobra"

	"github.com/adityaraul004/Chatbotapp/internal/auth"
	"github.com/adityaraul004/Chatbotapp/internal/backend"
	"github.com/adityaraul004/Chatbotapp/internal/cli"
	"github.com/adityaraul004/Chatbotapp/internal/configuration"
	"github.com/adityaraul004/Chatbotapp/internal/debug"
	"github.com/adityaraul004/Chatbotapp/internal/feed"
	"github.com/adityaraul004/Chatbotapp/internal/send"
)

// transcript follows one chat and prints every message once.
type transcript struct {
	backend  backend.Backend
	sequence *send.Sequence
	timeout  time.Duration
	chatID   string

	mu      sync.Mutex
	feed    *feed.Feed
	printed *strset.Set
}

func newTranscript(b backend.Backend, chatID string, timeout time.Duration) *transcript {
	f := feed.New()
	f.Reset(chatID)
	return &transcript{
		backend:  b,
		sequence: send.NewSequence(b),
		timeout:  timeout,
		chatID:   chatID,
		feed:     f,
		printed:  strset.New(),
	}
}

// load pulls the chat once.
func (t *transcript) load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	messages, err := t.backend.GetChatMessages(ctx, t.chatID)
	if err != nil {
		return errors.Wrap(err, "getting chat messages")
	}
	t.update(func(f *feed.Feed) { f.ApplyPull(t.chatID, messages) })
	return nil
}

// follow applies live snapshots until ctx is done or the stream ends. Once it has
// ended, sends pull the chat again.
func (t *transcript) follow(ctx context.Context) error {
	snapshots, err := t.backend.SubscribeMessages(ctx, t.chatID)
	if err != nil {
		return errors.Wrap(err, "subscribing to chat messages")
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snapshot, ok := <-snapshots:
				if !ok {
					t.update(func(f *feed.Feed) { f.EndLive(t.chatID) })
					return
				}
				if snapshot.Err != nil {
					debug.GetLogger().Error("streaming chat messages", "chat_id", t.chatID, "error", snapshot.Err)
					cli.Error("Live updates stopped: %v", snapshot.Err)
					t.update(func(f *feed.Feed) { f.EndLive(t.chatID) })
					return
				}
				t.update(func(f *feed.Feed) { f.ApplyLive(t.chatID, snapshot.Messages) })
			}
		}
	}()
	return nil
}

// send stores content and asks the assistant to answer it.
func (t *transcript) send(ctx context.Context, content string) error {
	content, err := send.Prepare(t.chatID, content)
	if err != nil {
		return err
	}
	t.update(func(f *feed.Feed) { f.SetPending(t.chatID, content, time.Now()) })

	ctx, cancel := context.WithTimeout(ctx, 2*t.timeout)
	defer cancel()
	result, err := t.sequence.Run(ctx, t.chatID, content)
	if err != nil {
		return err
	}
	if result.PersistErr != nil {
		t.update(func(f *feed.Feed) { f.DropPending(t.chatID) })
		return result.PersistErr
	}
	t.update(func(f *feed.Feed) { f.ConfirmPending(t.chatID, result.Message) })

	t.mu.Lock()
	live := t.feed.LiveActive()
	t.mu.Unlock()
	if !live {
		if err := t.load(ctx); err != nil {
			return err
		}
	}
	return result.TriggerErr
}

// update changes the feed and prints the messages not printed yet.
func (t *transcript) update(apply func(f *feed.Feed)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	apply(t.feed)
	for _, message := range t.feed.Messages() {
		if message.ID == feed.PendingID || t.printed.Has(message.ID) {
			continue
		}
		t.printed.Add(message.ID)
		if message.IsBot {
			cli.AssistantMessage(message.CreatedAt, message.Content)
		} else {
			cli.UserMessage(message.CreatedAt, message.Content)
		}
	}
}

// NewReplCmd instantiates and returns the repl command.
func NewReplCmd(config *configuration.Config, authClient *auth.Client, b backend.Backend) *cobra.Command {
	var opts struct {
		Email  string
		ChatID string
	}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Talk to the assistant in one chat from a line prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if err := signIn(ctx, authClient, opts.Email); err != nil {
				return err
			}
			defer authClient.SignOut(context.WithoutCancel(ctx))

			t := newTranscript(b, opts.ChatID, config.Timeout())
			cli.Title("Chat %s", opts.ChatID)
			if err := t.load(ctx); err != nil {
				return err
			}
			if err := t.follow(ctx); err != nil {
				return err
			}

			rl, err := cli.NewPrompt(config.Chat.HistoryFile)
			if err != nil {
				return err
			}
			defer rl.Close()
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return errors.Wrap(err, "reading input")
				}
				if strings.TrimSpace(line) == "" {
					continue
				}
				if err := t.send(ctx, line); err != nil {
					debug.GetLogger().Error("sending message", "chat_id", opts.ChatID, "error", err)
					cli.Error("Failed to send: %v", err)
				}
			}
		},
	}
	cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "email to sign in with")
	cmd.Flags().StringVar(&opts.ChatID, "chat", "", "id of the chat to open")
	cmd.MarkFlagRequired("chat")
	return cmd
}
