package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps track of collection progress for a scrape session
type StatusTracker struct {
	TotalCollected int
	Target         int
	PagesFetched   int
	Duplicates     int
	StartTime      time.Time
}

// NewStatusTracker creates a new status tracker. A target of zero means
// the session has no tweet cap.
func NewStatusTracker(target int) *StatusTracker {
	return &StatusTracker{
		Target:    target,
		StartTime: time.Now(),
	}
}

// IncrementCollected bumps the collected tweet counter
func (st *StatusTracker) IncrementCollected() {
	st.TotalCollected++
}

// RecordPage bumps the fetched page counter
func (st *StatusTracker) RecordPage() {
	st.PagesFetched++
}

// RecordDuplicate bumps the duplicate counter
func (st *StatusTracker) RecordDuplicate() {
	st.Duplicates++
}

// GetProgressBar returns a formatted progress bar toward the target
func (st *StatusTracker) GetProgressBar() string {
	const width = 20
	if st.Target <= 0 {
		return fmt.Sprintf("%d tweets", st.TotalCollected)
	}

	progress := float64(st.TotalCollected) / float64(st.Target)
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.TotalCollected, st.Target)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetCollectionRate returns the average collection rate (tweets per minute)
func (st *StatusTracker) GetCollectionRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.TotalCollected) / elapsed
}

// PrintProgress prints the current progress status on one line
func (st *StatusTracker) PrintProgress() {
	fmt.Printf("\r%s %s | pages: %d | dupes: %d",
		Green("[COLLECTED]"),
		st.GetProgressBar(),
		st.PagesFetched,
		st.Duplicates)
}

// IsTargetReached checks if the session collected its target count
func (st *StatusTracker) IsTargetReached() bool {
	return st.Target > 0 && st.TotalCollected >= st.Target
}

// SetCollectedCount sets the collected count (used for resuming)
func (st *StatusTracker) SetCollectedCount(count int) {
	st.TotalCollected = count
}
