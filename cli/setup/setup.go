// Package setup writes the .env file the client and the n8n workflow read.
package setup

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/adityaraul004/Chatbotapp/internal/cli"
	"github.com/adityaraul004/Chatbotapp/internal/file"
)

const defaultRegion = "us-east-1"

//go:embed env.tmpl
var envTemplate string

// Answers are the values collected from the user.
type Answers struct {
	NhostSubdomain    string
	NhostRegion       string
	HasuraAdminSecret string
	OpenRouterAPIKey  string
	N8NInstance       string
}

// Prompter asks the user questions.
type Prompter interface {
	Confirm(question string) (bool, error)
	Ask(question, help, defaultValue string) (string, error)
	AskSecret(question, help string) (string, error)
}

// Render returns the content of the .env file.
func Render(answers Answers) (string, error) {
	tmpl, err := template.New("env").Funcs(sprig.FuncMap()).Parse(envTemplate)
	if err != nil {
		return "", errors.Wrap(err, "parsing env template")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, answers); err != nil {
		return "", errors.Wrap(err, "executing env template")
	}
	return buf.String(), nil
}

// Run asks for every value and writes the .env file at path. An existing file is only
// replaced once the user agrees. It reports whether the file was written.
func Run(path string, prompter Prompter, out io.Writer) (bool, error) {
	fmt.Fprintln(out, "🚀 SUBSPACE CHATBOT - ENVIRONMENT SETUP")
	fmt.Fprintln(out)

	exists, err := file.Exists(path)
	if err != nil {
		return false, errors.Wrap(err, "checking env file")
	}
	if exists {
		fmt.Fprintf(out, "⚠️  %s file already exists!\n", path)
		overwrite, err := prompter.Confirm("Do you want to overwrite it?")
		if err != nil {
			return false, err
		}
		if !overwrite {
			fmt.Fprintf(out, "Setup cancelled. Your existing %s file is preserved.\n", path)
			return false, nil
		}
	}

	answers, err := ask(prompter)
	if err != nil {
		return false, err
	}
	content, err := Render(answers)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return false, errors.Wrap(err, "writing env file")
	}

	fmt.Fprintf(out, "\n✅ %s file created successfully!\n", path)
	fmt.Fprintln(out, "\n📋 Next steps:")
	fmt.Fprintln(out, "1. Review the .env file to ensure all values are correct")
	fmt.Fprintln(out, "2. Import the n8n workflow and add the workflow variables from the .env file")
	fmt.Fprintln(out, "3. Start chatting with: subspace chat")
	return true, nil
}

func ask(prompter Prompter) (Answers, error) {
	var answers Answers
	var err error
	if answers.NhostSubdomain, err = prompter.Ask("Nhost Subdomain (e.g., myproject)", "Get this from your Nhost project dashboard", ""); err != nil {
		return answers, err
	}
	if answers.NhostRegion, err = prompter.Ask("Nhost Region", "Usually us-east-1", defaultRegion); err != nil {
		return answers, err
	}
	if answers.NhostRegion == "" {
		answers.NhostRegion = defaultRegion
	}
	if answers.HasuraAdminSecret, err = prompter.AskSecret("Hasura Admin Secret", "Get this from Nhost → Settings → API → GraphQL"); err != nil {
		return answers, err
	}
	if answers.OpenRouterAPIKey, err = prompter.AskSecret("OpenRouter API Key", "Get this from openrouter.ai"); err != nil {
		return answers, err
	}
	if answers.N8NInstance, err = prompter.Ask("n8n Instance URL (e.g., https://myname.n8n.cloud)", "Your n8n cloud instance URL", ""); err != nil {
		return answers, err
	}
	return answers, nil
}

type surveyPrompter struct{}

func (surveyPrompter) Confirm(question string) (bool, error) {
	return cli.QueryUser(question, false)
}

func (surveyPrompter) Ask(question, help, defaultValue string) (string, error) {
	return cli.Ask(question, help, defaultValue)
}

func (surveyPrompter) AskSecret(question, help string) (string, error) {
	return cli.AskSecret(question, help)
}

// NewCmd instantiates and returns the setup command.
func NewCmd() *cobra.Command {
	var opts struct {
		Output string
	}
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the .env file with the backend and workflow settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := Run(opts.Output, surveyPrompter{}, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", ".env", "path of the env file to write")
	return cmd
}
