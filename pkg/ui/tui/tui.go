package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI represents the live collection dashboard
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a new dashboard for a session with the given query
// label and tweet target (zero means no cap)
func NewTUI(query string, target int) *TUI {
	model := NewModel(query, target)
	program := tea.NewProgram(&model, tea.WithAltScreen())

	return &TUI{
		program: program,
		model:   &model,
	}
}

// Start starts the dashboard and blocks until it exits
func (t *TUI) Start() error {
	go func() {
		// Send initial tick to start the spinner
		time.Sleep(100 * time.Millisecond)
		t.program.Send(TickMsg(time.Now()))
	}()

	_, err := t.program.Run()
	return err
}

// Stop stops the dashboard gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the dashboard
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// TweetCollected notifies the dashboard of a newly collected tweet
func (t *TUI) TweetCollected(id, author, date, text string) {
	t.Send(SendTweet(id, author, date, text))
}

// Progress sets the collected counter directly
func (t *TUI) Progress(collected int) {
	t.Send(SendProgress(collected))
}

// PageConsumed records a consumed results page
func (t *TUI) PageConsumed(fetched, kept int) {
	t.Send(SendPage(fetched, kept))
}

// Stage updates the engine stage line
func (t *TUI) Stage(stage string) {
	t.Send(SendStage(stage))
}

// Cooldown records a wait the engine entered
func (t *TUI) Cooldown(reason string, until time.Time) {
	t.Send(SendCooldown(reason, until))
}

// Log sends a log message to the dashboard
func (t *TUI) Log(level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	t.Send(SendLog(level, message))
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogSuccess logs a success message
func (t *TUI) LogSuccess(format string, args ...interface{}) {
	t.Log("SUCCESS", format, args...)
}

// LogWarning logs a warning message
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Log("WARN", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}

// IsPaused returns whether collection is paused
func (t *TUI) IsPaused() bool {
	t.model.mu.RLock()
	defer t.model.mu.RUnlock()
	return t.model.isPaused
}
