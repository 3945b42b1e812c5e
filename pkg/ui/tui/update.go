package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Message types for the dashboard

// TweetMsg is sent when a tweet is collected
type TweetMsg TweetPreview

// ProgressMsg is sent to set the collected counter directly
type ProgressMsg struct {
	Collected int
}

// PageMsg is sent when a results page has been consumed
type PageMsg struct {
	Fetched int
	Kept    int
}

// StageMsg is sent when the engine moves to a new stage
type StageMsg struct {
	Stage string
}

// CooldownMsg is sent when the engine starts or clears a wait
type CooldownMsg struct {
	Reason string
	Until  time.Time
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		// Regular UI update tick
		return m, tea.Batch(
			tickCmd(),
			m.spinner.Tick,
		)

	case TweetMsg:
		m.RecordTweet(TweetPreview(msg))
		return m, nil

	case ProgressMsg:
		m.SetProgress(msg.Collected)
		return m, nil

	case PageMsg:
		m.RecordPage(msg.Fetched, msg.Kept)
		return m, nil

	case StageMsg:
		m.SetStage(msg.Stage)
		return m, nil

	case CooldownMsg:
		m.SetCooldown(msg.Reason, msg.Until)
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "p", "P":
		m.isPaused = !m.isPaused
		if m.isPaused {
			m.AddLogMessage("WARN", "Collection paused by user")
		} else {
			m.AddLogMessage("INFO", "Collection resumed by user")
		}
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		// Clear logs
		m.mu.Lock()
		m.logMessages = []LogMessage{}
		m.mu.Unlock()
		return m, nil
	}

	return m, nil
}

// Commands

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Helper functions for external use

// SendTweet creates a message recording a collected tweet
func SendTweet(id, author, date, text string) tea.Msg {
	return TweetMsg{
		ID:     id,
		Author: author,
		Date:   date,
		Text:   text,
	}
}

// SendProgress creates a message setting the collected counter
func SendProgress(collected int) tea.Msg {
	return ProgressMsg{Collected: collected}
}

// SendPage creates a message recording a consumed page
func SendPage(fetched, kept int) tea.Msg {
	return PageMsg{Fetched: fetched, Kept: kept}
}

// SendStage creates a message for an engine stage change
func SendStage(stage string) tea.Msg {
	return StageMsg{Stage: stage}
}

// SendCooldown creates a message for a wait the engine entered
func SendCooldown(reason string, until time.Time) tea.Msg {
	return CooldownMsg{Reason: reason, Until: until}
}

// SendLog creates a log message
func SendLog(level, message string) tea.Msg {
	return LogMsg{Level: level, Message: message}
}
