// Package checkpoint persists resumable session state. Saves are
// atomic: the previous file is copied aside as a .backup, the new state
// is written to a temp file, synced, and renamed over the old one. A
// crash at any point leaves either the old state or the new one on
// disk, never a torn file, and Load falls back to the backup when the
// primary file is corrupt.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"xscraper/pkg/logger"
)

// Store reads and writes session state at a fixed path.
type Store struct {
	path   string
	logger logger.Logger
}

// NewStore creates a store for the given state file path.
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		logger: logger.GetLogger(),
	}
}

// Path returns the state file path.
func (st *Store) Path() string {
	return st.path
}

func (st *Store) backupPath() string {
	return st.path + ".backup"
}

// Exists reports whether a state file is present.
func (st *Store) Exists() bool {
	_, err := os.Stat(st.path)
	return err == nil
}

// Save writes the state atomically, preserving the previous file as a
// backup first.
func (st *Store) Save(state *SessionState) error {
	state.Timestamp = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(st.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := st.backup(); err != nil {
		return err
	}

	tempPath := st.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync state file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close state file: %w", err)
	}

	if err := os.Rename(tempPath, st.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	st.logger.DebugWithFields("Session state saved", map[string]interface{}{
		"session_id":     state.SessionID,
		"mode":           state.Mode,
		"tweets_scraped": state.TweetsScraped,
	})

	return nil
}

// backup copies the current state file aside before it is overwritten.
func (st *Store) backup() error {
	src, err := os.Open(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open state for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(st.backupPath())
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy state to backup: %w", err)
	}
	return nil
}

// Load reads and validates the state file. A missing file returns
// (nil, nil). A corrupt or structurally invalid primary file falls back
// to the backup; only when both are unusable is an error returned.
func (st *Store) Load() (*SessionState, error) {
	state, primaryErr := st.loadFrom(st.path)
	if primaryErr == nil {
		return state, nil
	}
	if os.IsNotExist(primaryErr) {
		return nil, nil
	}

	st.logger.WarnWithFields("State file unusable, trying backup", map[string]interface{}{
		"path":  st.path,
		"error": primaryErr.Error(),
	})

	state, backupErr := st.loadFrom(st.backupPath())
	if backupErr != nil {
		return nil, fmt.Errorf("state file corrupt and backup unusable: %w", primaryErr)
	}

	st.logger.InfoWithFields("Recovered session state from backup", map[string]interface{}{
		"session_id": state.SessionID,
	})
	return state, nil
}

func (st *Store) loadFrom(path string) (*SessionState, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var state SessionState
	if err := json.NewDecoder(file).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("invalid state: %w", err)
	}
	return &state, nil
}

// Clear removes the state file and its backup. Called after a session
// completes cleanly so the next run starts fresh.
func (st *Store) Clear() error {
	for _, p := range []string{st.path, st.backupPath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	st.logger.Debug("Session state cleared")
	return nil
}

// ValidateIntegrity checks that a loaded state still matches the world:
// the output file it references must exist, and the progress cursor must
// still be within bounds. A cursor past the end means the prior run
// already completed, so resuming would be a silent no-op.
func (st *Store) ValidateIntegrity(state *SessionState) error {
	if _, err := os.Stat(state.OutputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output file %s referenced by state no longer exists", state.OutputPath)
		}
		return fmt.Errorf("failed to stat output file: %w", err)
	}

	switch state.Mode {
	case ModeBatch:
		if state.CurrentIndex >= len(state.Usernames) {
			return fmt.Errorf("saved session already processed all %d accounts; nothing to resume (run 'state clear' to start fresh)", len(state.Usernames))
		}
	case ModeLinks:
		if len(state.ProcessedLinks) >= len(state.Links) {
			return fmt.Errorf("saved session already processed all %d links; nothing to resume (run 'state clear' to start fresh)", len(state.Links))
		}
	}
	return nil
}

// Summary renders a short human-readable description of a saved
// session, used by the state command and the resume prompt.
func Summary(state *SessionState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session %s (%s mode)\n", state.SessionID, state.Mode)
	fmt.Fprintf(&b, "  Last saved:     %s\n", state.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "  Output:         %s\n", state.OutputPath)
	fmt.Fprintf(&b, "  Tweets scraped: %d\n", state.TweetsScraped)

	if state.OldestTweet != "" || state.NewestTweet != "" {
		fmt.Fprintf(&b, "  Date range:     %s .. %s\n", state.OldestTweet, state.NewestTweet)
	}

	switch state.Mode {
	case ModeSingle:
		fmt.Fprintf(&b, "  Target:         %s\n", state.Target)
		if state.NextCursor != "" {
			fmt.Fprintf(&b, "  Has pagination cursor: yes\n")
		}
	case ModeBatch:
		fmt.Fprintf(&b, "  Accounts:       %d of %d processed\n", state.CurrentIndex, len(state.Usernames))
		if state.CurrentIndex < len(state.Usernames) {
			fmt.Fprintf(&b, "  Next account:   %s\n", state.Usernames[state.CurrentIndex])
		}
	case ModeLinks:
		fmt.Fprintf(&b, "  Links:          %d of %d processed\n", len(state.ProcessedLinks), len(state.Links))
	}

	return b.String()
}
