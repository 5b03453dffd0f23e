// Package tuitest runs Bubble Tea commands synchronously for tests.
package tuitest

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Timeout bounds how long a single command may run. Timers such as polling ticks
// and cursor blinks do not finish in time and are dropped. Spinner frames are
// always dropped.
var Timeout = 100 * time.Millisecond

// Exec runs cmd, and every command it batches, and returns the messages they produced.
func Exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	result := make(chan tea.Msg, 1)
	go func() {
		result <- cmd()
	}()

	var msg tea.Msg
	select {
	case msg = <-result:
	case <-time.After(Timeout):
		return nil
	}

	switch msg := msg.(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var msgs []tea.Msg
		for _, cmd := range msg {
			msgs = append(msgs, Exec(cmd)...)
		}
		return msgs
	default:
		return []tea.Msg{msg}
	}
}

// Key returns the key message for a key name such as "enter", "esc" or "ctrl+j",
// or for literal runes.
func Key(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+j":
		return tea.KeyMsg{Type: tea.KeyCtrlJ}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "alt+q", "alt+w", "alt+p", "alt+n":
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{rune(name[len(name)-1])}, Alt: true}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}

// Type returns one key message per rune of text.
func Type(text string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(text))
	for _, r := range text {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}
