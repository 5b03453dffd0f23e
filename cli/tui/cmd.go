package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/adityaraul004/Chatbotapp/internal/auth"
	"github.com/adityaraul004/Chatbotapp/internal/backend"
	"github.com/adityaraul004/Chatbotapp/internal/configuration"
	"github.com/adityaraul004/Chatbotapp/internal/history"
)

// NewCmd instantiates and returns the chat command.
func NewCmd(config *configuration.Config, authClient *auth.Client, b backend.Backend) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the full-screen chat client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()

			m, err := New(ctx, authClient, b, Options{
				PollInterval: config.PollInterval(),
				Timeout:      config.Timeout(),
				History:      history.NewHistory(config.Chat.HistoryFile),
			})
			if err != nil {
				return err
			}
			defer m.Close()
			authClient.Start(ctx)

			p := tea.NewProgram(
				m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithMouseCellMotion(),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running chat: %w", err)
			}
			return nil
		},
	}
}
