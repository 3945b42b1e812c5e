package tui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TweetPreview is the slice of a collected tweet shown in the dashboard
type TweetPreview struct {
	ID     string
	Author string
	Date   string
	Text   string
}

// Model represents the dashboard model
type Model struct {
	// UI components
	spinner     spinner.Model
	progressBar progress.Model

	// Session identity
	query  string
	target int

	// Collection state
	collected    int
	pagesFetched int
	duplicates   int
	filtered     int

	// Engine status
	stage           string
	cooldownReason  string
	cooldownStarted time.Time
	cooldownUntil   time.Time

	// Recently collected tweets, newest last
	recentTweets []TweetPreview
	maxRecent    int

	// Stats
	sessionStartTime time.Time

	// UI state
	width          int
	height         int
	showHelp       bool
	isPaused       bool
	logMessages    []LogMessage
	maxLogMessages int

	// Mutex for thread safety
	mu sync.RWMutex
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// NewModel creates a new dashboard model
func NewModel(query string, target int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return Model{
		spinner:          s,
		progressBar:      p,
		query:            query,
		target:           target,
		stage:            "starting",
		recentTweets:     []TweetPreview{},
		maxRecent:        8,
		sessionStartTime: time.Now(),
		logMessages:      []LogMessage{},
		maxLogMessages:   50,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// RecordTweet appends a collected tweet to the recent list
func (m *Model) RecordTweet(preview TweetPreview) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.collected++
	m.recentTweets = append(m.recentTweets, preview)
	if len(m.recentTweets) > m.maxRecent {
		m.recentTweets = m.recentTweets[len(m.recentTweets)-m.maxRecent:]
	}
}

// SetProgress sets the collected counter directly (used on resume)
func (m *Model) SetProgress(collected int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collected = collected
}

// RecordPage records a fetched page and the records it contributed
func (m *Model) RecordPage(fetched, kept int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pagesFetched++
	if dupes := fetched - kept; dupes > 0 {
		m.duplicates += dupes
	}
}

// SetStage updates the engine stage line
func (m *Model) SetStage(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stage = stage
}

// SetCooldown records a wait the engine is sitting out
func (m *Model) SetCooldown(reason string, until time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cooldownReason = reason
	m.cooldownStarted = time.Now()
	m.cooldownUntil = until
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	color := dimWhite
	switch level {
	case "ERROR":
		color = lipgloss.Color("#FF0000")
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	// Keep only the last N messages
	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// GetRecentTweets returns the recently collected tweets, newest last
func (m *Model) GetRecentTweets() []TweetPreview {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recent := make([]TweetPreview, len(m.recentTweets))
	copy(recent, m.recentTweets)
	return recent
}

// GetCollectionStats returns rate and ETA estimates
func (m *Model) GetCollectionStats() (rate float64, eta time.Duration) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	elapsed := time.Since(m.sessionStartTime).Minutes()
	if elapsed > 0 {
		rate = float64(m.collected) / elapsed
	}

	if m.target > 0 && rate > 0 && m.collected < m.target {
		remaining := float64(m.target - m.collected)
		eta = time.Duration(remaining/rate) * time.Minute
	}

	return
}

// Percentage returns progress toward the target as 0..1
func (m *Model) Percentage() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.target <= 0 {
		return 0
	}
	p := float64(m.collected) / float64(m.target)
	if p > 1 {
		p = 1
	}
	return p
}

// FormatRate formats a per-minute collection rate
func FormatRate(perMinute float64) string {
	return fmt.Sprintf("%.1f tweets/min", perMinute)
}
