package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire dashboard
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// Build the UI layout
	var sections []string

	// Logo
	sections = append(sections, m.renderLogo())

	// Main content area with two columns
	leftColumn := m.renderLeftColumn()
	rightColumn := m.renderRightColumn()

	mainContent := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftColumn,
		"  ", // spacing
		rightColumn,
	)
	sections = append(sections, mainContent)

	// Help
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	// Join all sections vertically
	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderLogo renders the dashboard header
func (m Model) renderLogo() string {
	logo := `
╔══════════════════════════════════════════════════╗
║ ██╗  ██╗███████╗ ██████╗██████╗  █████╗ ██████╗  ║
║ ╚██╗██╔╝██╔════╝██╔════╝██╔══██╗██╔══██╗██╔══██╗ ║
║  ╚███╔╝ ███████╗██║     ██████╔╝███████║██████╔╝ ║
║  ██╔██╗ ╚════██║██║     ██╔══██╗██╔══██║██╔═══╝  ║
║ ██╔╝ ██╗███████║╚██████╗██║  ██║██║  ██║██║      ║
║ ╚═╝  ╚═╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝      ║
║          LIVE TWEET COLLECTION DASHBOARD         ║
╚══════════════════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

// renderLeftColumn renders the left side of the UI
func (m Model) renderLeftColumn() string {
	width := (m.width - 4) / 2

	var sections []string

	// Stats panel
	sections = append(sections, m.renderStatsPanel(width))

	// Recent tweets panel
	sections = append(sections, m.renderRecentTweetsPanel(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderRightColumn renders the right side of the UI
func (m Model) renderRightColumn() string {
	width := (m.width - 4) / 2

	var sections []string

	// Cooldown panel
	sections = append(sections, m.renderCooldownPanel(width))

	// Logs panel
	sections = append(sections, m.renderLogsPanel(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatsPanel renders the session statistics panel
func (m Model) renderStatsPanel(width int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" SESSION ")

	elapsed := time.Since(m.sessionStartTime)
	rate, eta := m.collectionStatsLocked()

	targetLabel := "unlimited"
	if m.target > 0 {
		targetLabel = fmt.Sprintf("%d", m.target)
	}

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Query:"), statsValueStyle.Render(m.query)),
		fmt.Sprintf("%s %s %s", statsLabelStyle.Render("Stage:"), m.spinner.View(), statsValueStyle.Render(m.stage)),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Collected:"), statsValueStyle.Render(fmt.Sprintf("%d / %s", m.collected, targetLabel))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Pages:"), statsValueStyle.Render(fmt.Sprintf("%d", m.pagesFetched))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Duplicates:"), statsValueStyle.Render(fmt.Sprintf("%d", m.duplicates))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Session Time:"), statsValueStyle.Render(formatDuration(elapsed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Rate:"), statsValueStyle.Render(FormatRate(rate))),
	}

	if m.target > 0 {
		bar := m.progressBar
		bar.Width = width - 8
		stats = append(stats, bar.ViewAs(m.percentageLocked()))
		if eta > 0 {
			stats = append(stats, fmt.Sprintf("%s %s", statsLabelStyle.Render("ETA:"), statsValueStyle.Render(formatDuration(eta))))
		}
	}

	if m.isPaused {
		stats = append(stats, warningStyle.Render("⏸  PAUSED"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, stats...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderRecentTweetsPanel renders the recently collected tweets
func (m Model) renderRecentTweetsPanel(width int) string {
	title := titleStyle.Render(" RECENT TWEETS ")

	recent := m.GetRecentTweets()

	if len(recent) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("No tweets collected yet")
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, content),
		)
	}

	var items []string
	// Newest first
	for i := len(recent) - 1; i >= 0; i-- {
		tweet := recent[i]
		header := fmt.Sprintf("%s %s",
			tweetAuthorStyle.Render("@"+tweet.Author),
			tweetDateStyle.Render(tweet.Date),
		)
		items = append(items, header, tweetTextStyle.Render(truncate(tweet.Text, width-8)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderCooldownPanel renders the wait/cooldown status
func (m Model) renderCooldownPanel(width int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" COOLDOWN ")

	remaining := time.Until(m.cooldownUntil)
	if m.cooldownReason == "" || remaining <= 0 {
		content := cooldownNormalStyle.Render("Collecting at full speed")
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, content),
		)
	}

	// Remaining wait rendered as a draining bar
	barWidth := width - 8
	total := m.cooldownUntil.Sub(m.cooldownStarted)
	frac := 1.0
	if total > 0 {
		frac = remaining.Seconds() / total.Seconds()
		if frac > 1 {
			frac = 1
		}
	}
	filled := int(frac * float64(barWidth))
	bar := cooldownWarningStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", barWidth-filled))

	content := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Waiting:"), warningStyle.Render(m.cooldownReason)),
		bar,
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Resumes in:"), statsValueStyle.Render(formatDuration(remaining))),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(content, "\n")),
	)
}

// renderLogsPanel renders the logs panel
func (m Model) renderLogsPanel(width int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" SYSTEM LOGS ")

	// Get recent logs
	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for i := start; i < len(m.logMessages); i++ {
		log := m.logMessages[i]
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := logMessageStyle.Render(truncate(log.Message, width-25))

		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	// Calculate height for logs panel to fill remaining space
	logsHeight := m.height - 35 // Approximate calculation
	if logsHeight < 5 {
		logsHeight = 5
	}

	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderHelp renders the help panel
func (m Model) renderHelp() string {
	help := `
  Navigation:
    q/Q      - Quit (progress is checkpointed)
    p/P      - Pause/Resume collection
    ?        - Toggle this help

  Status Indicators:
    ` + successStyle.Render("Green") + `    - Active/Healthy
    ` + warningStyle.Render("Orange") + `   - Waiting/Cooldown
    ` + errorStyle.Render("Red") + `      - Error/Critical

  Icons:
    ⏸        - Paused
    █        - Progress indicator
`

	return panelStyle.Width(m.width).Render(help)
}

// collectionStatsLocked mirrors GetCollectionStats for callers already
// holding the read lock
func (m Model) collectionStatsLocked() (rate float64, eta time.Duration) {
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

// percentageLocked mirrors Percentage for callers already holding the
// read lock
func (m Model) percentageLocked() float64 {
	if m.target <= 0 {
		return 0
	}
	p := float64(m.collected) / float64(m.target)
	if p > 1 {
		p = 1
	}
	return p
}

// truncate shortens a string to fit a display width
func truncate(s string, max int) string {
	if max <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
