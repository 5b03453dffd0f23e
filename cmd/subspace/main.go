package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/adityaraul004/Chatbotapp/cli/chats"
	"github.com/adityaraul004/Chatbotapp/cli/setup"
	"github.com/adityaraul004/Chatbotapp/cli/tui"
	"github.com/adityaraul004/Chatbotapp/internal/auth"
	"github.com/adityaraul004/Chatbotapp/internal/backend"
	"github.com/adityaraul004/Chatbotapp/internal/configuration"
	"github.com/adityaraul004/Chatbotapp/internal/debug"
	"github.com/adityaraul004/Chatbotapp/internal/graphql"
)

const (
	configFilepath = "~/.config/subspace/config.json"
	envFilepath    = ".env"
)

var rootCmd = &cobra.Command{
	Use:     "subspace",
	Short:   "A terminal client for the Subspace chatbot",
	Version: "1.0",
}

func main() {
	config, err := configuration.Parse(configFilepath, envFilepath)
	if err != nil {
		panic(err)
	}
	if err := debug.Init(config.LogFile); err != nil {
		panic(err)
	}

	// Clients. Nothing connects until a command runs.
	httpClient := &http.Client{Timeout: 2 * config.Timeout()}
	authClient := auth.New(config.AuthEndpoint(), httpClient)
	defer authClient.Close()
	graphqlClient := graphql.New(config.GraphQLEndpoint(), config.GraphQLWSEndpoint(), httpClient, authClient.AccessToken)
	b := backend.New(config, graphqlClient, httpClient, authClient.AccessToken)

	rootCmd.AddCommand(tui.NewCmd(config, authClient, b))
	rootCmd.AddCommand(setup.NewCmd())
	rootCmd.AddCommand(chats.NewListCmd(config, authClient, b))
	rootCmd.AddCommand(chats.NewReplCmd(config, authClient, b))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
