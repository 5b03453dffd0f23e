package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/buger/goterm"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

var (
	// Colors for different types of output
	userColor      = color.New(color.FgGreen, color.Bold)   // Bold green for the user's messages
	assistantColor = color.New(color.FgCyan)                // Cyan for assistant replies
	titleColor     = color.New(color.FgMagenta, color.Bold) // Bold magenta for titles
	separatorColor = color.New(color.FgHiBlack)             // Dark grey for separators
	mutedColor     = color.New(color.FgHiBlack)             // Dark grey for timestamps and previews
	errorColor     = color.New(color.FgRed)                 // Red for failures
	noticeColor    = color.New(color.FgYellow)              // Yellow for notices
	promptColor    = color.New(color.FgHiBlue)              // Bright blue for prompts

	width = terminalWidth()
)

func terminalWidth() int {
	if w := goterm.Width(); w > 0 {
		return w
	}
	return 80
}

// Separator printed to cli.
func Separator() {
	separator := strings.Repeat("-", width)
	separatorColor.Println(separator)
}

// Title printed to cli.
func Title(text string, args ...any) {
	title := "      " + fmt.Sprintf(text, args...) + "      "
	leftWidth := max((width-len(title))/2, 0)
	separator1 := strings.Repeat("-", leftWidth)
	separator2 := strings.Repeat("-", max(width-len(title)-len(separator1), 0))
	output := fmt.Sprintf("%s%s%s", separator1, title, separator2)
	titleColor.Println(output)
}

// UserMessage printed to cli.
func UserMessage(at time.Time, text string) {
	mutedColor.Printf("[%s] ", at.Local().Format("3:04:05 PM"))
	userColor.Print("👤 You: ")
	fmt.Fprintln(color.Output, text)
}

// AssistantMessage printed to cli.
func AssistantMessage(at time.Time, text string) {
	mutedColor.Printf("[%s] ", at.Local().Format("3:04:05 PM"))
	assistantColor.Print("🤖 Assistant: ")
	assistantColor.Println(text)
}

// ChatEntry prints one line of a chat listing.
func ChatEntry(index int, id, title, preview string, updatedAt time.Time) {
	titleColor.Printf("%2d. %s", index, title)
	mutedColor.Printf("  (%s, %s)\n", id, updatedAt.Local().Format("Jan 2, 2006"))
	if preview != "" {
		mutedColor.Printf("    %s\n", preview)
	}
}

// Notice printed to cli.
func Notice(text string, args ...any) {
	noticeColor.Printf(text+"\n", args...)
}

// Error printed to cli.
func Error(text string, args ...any) {
	errorColor.Printf(text+"\n", args...)
}

// NewPrompt returns a line editor for conversations. Lines are kept in historyFile.
func NewPrompt(historyFile string) (*readline.Instance, error) {
	config := &readline.Config{
		Prompt:            promptColor.Sprint("> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistoryFile:       historyFile,
		HistorySearchFold: true,
	}
	rl, err := readline.NewEx(config)
	if err != nil {
		return nil, errors.Wrap(err, "creating prompt")
	}
	return rl, nil
}

// QueryUser a yes/no question.
func QueryUser(question string, defaultValue bool) (bool, error) {
	surveyQuestion := &survey.Confirm{
		Message: question,
		Default: defaultValue,
	}
	confirm := defaultValue
	if err := survey.AskOne(surveyQuestion, &confirm); err != nil {
		return false, err
	}
	return confirm, nil
}

// Ask the user for a line of text. help is shown on request.
func Ask(question, help, defaultValue string) (string, error) {
	surveyQuestion := &survey.Input{
		Message: question,
		Help:    help,
		Default: defaultValue,
	}
	var answer string
	if err := survey.AskOne(surveyQuestion, &answer); err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// AskSecret asks the user for a value that is not echoed.
func AskSecret(question, help string) (string, error) {
	surveyQuestion := &survey.Password{
		Message: question,
		Help:    help,
	}
	var answer string
	if err := survey.AskOne(surveyQuestion, &answer); err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
