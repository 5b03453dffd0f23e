package conversation

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/adityaraul004/Chatbotapp/cli/tui/styles"
	"github.com/adityaraul004/Chatbotapp/internal/debug"
)

// SetSize sets the dimensions of the pane.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.recalculateLayout()
}

// adjustTextareaHeight resizes the textarea based on content line count.
func (m *Model) adjustTextareaHeight() {
	lineCount := strings.Count(m.textarea.Value(), "\n") + 1
	newHeight := min(max(lineCount, styles.MinTextareaHeight), styles.MaxTextareaHeight)

	oldHeight := m.textarea.Height()
	if oldHeight == newHeight {
		return
	}
	m.textarea.SetHeight(newHeight)
	m.recalculateLayout()
	if m.ready {
		m.viewport.LineDown(newHeight - oldHeight)
	}
}

// recalculateLayout adjusts viewport and textarea dimensions based on current state.
func (m *Model) recalculateLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	viewportHeight := m.height - styles.HelpMarginTop - 1
	if m.sending {
		viewportHeight--
	} else {
		viewportHeight -= m.textarea.Height() + styles.TextAreaStyle.GetVerticalFrameSize()
	}
	viewportHeight = max(viewportHeight, styles.MinViewportHeight)

	rendererWidth := m.width - styles.MessageHorizontalFrameSize() - styles.MessagePaddingLeft
	if err := m.renderer.SetWidth(rendererWidth); err != nil {
		debug.GetLogger().Error("resizing markdown renderer", "error", err)
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, viewportHeight)
		m.ready = true
		m.refreshViewport()
		m.viewport.GotoBottom()
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = viewportHeight
		m.refreshViewport()
	}

	m.textarea.SetWidth(m.width - styles.TextAreaStyle.GetHorizontalPadding() - styles.TextAreaStyle.GetHorizontalBorderSize())
}

// refreshViewport re-renders the feed into the viewport.
func (m *Model) refreshViewport() {
	m.renderedVersion = m.feed.Version()
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
}
