// Package chats holds the line-mode commands: listing chats and a conversation prompt.
package chats

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/adityaraul004/Chatbotapp/internal/auth"
	"github.com/adityaraul004/Chatbotapp/internal/backend"
	"github.com/adityaraul004/Chatbotapp/internal/cli"
	"github.com/adityaraul004/Chatbotapp/internal/configuration"
	"github.com/adityaraul004/Chatbotapp/internal/types"
)

// signIn settles the auth client and signs in, prompting for missing credentials.
func signIn(ctx context.Context, authClient *auth.Client, email string) error {
	authClient.Start(ctx)
	var err error
	if email == "" {
		if email, err = cli.Ask("Email", "", ""); err != nil {
			return err
		}
	}
	password, err := cli.AskSecret("Password", "")
	if err != nil {
		return err
	}
	if err := authClient.SignIn(ctx, email, password); err != nil {
		var apiErr *auth.Error
		if errors.As(err, &apiErr) {
			return errors.New(apiErr.Message)
		}
		return errors.Wrap(err, "signing in")
	}
	return nil
}

// previewLine flattens the latest message of a chat onto one line.
func previewLine(chat *types.Chat) string {
	message := chat.Preview()
	if message == nil {
		return ""
	}
	icon := "👤 "
	if message.IsBot {
		icon = "🤖 "
	}
	return icon + strings.Join(strings.Fields(message.Content), " ")
}

// printChats prints a listing of chats, newest first as returned by the backend.
func printChats(chats []*types.Chat) {
	cli.Title("Chats")
	if len(chats) == 0 {
		cli.Notice("No chats yet")
		return
	}
	for i, chat := range chats {
		cli.ChatEntry(i+1, chat.ID, chat.Title, previewLine(chat), chat.UpdatedAt)
	}
	cli.Separator()
}

// NewListCmd instantiates and returns the list command.
func NewListCmd(config *configuration.Config, authClient *auth.Client, b backend.Backend) *cobra.Command {
	var opts struct {
		Email string
	}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your chats",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := signIn(ctx, authClient, opts.Email); err != nil {
				return err
			}
			defer authClient.SignOut(context.WithoutCancel(ctx))

			ctx, cancel := context.WithTimeout(ctx, config.Timeout())
			defer cancel()
			chats, err := b.GetChats(ctx)
			if err != nil {
				return errors.Wrap(err, "getting chats")
			}
			printChats(chats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "email to sign in with")
	return cmd
}
