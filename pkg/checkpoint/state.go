package checkpoint

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CurrentVersion is written into every saved state file. Files with a
// different version are rejected on load rather than interpreted.
const CurrentVersion = 1

// Mode identifies which kind of session a state file belongs to.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
	ModeLinks  Mode = "links"
)

// SessionState is the full resumable snapshot of a scrape session. A
// state file paired with its output file is enough to continue from
// exactly where the previous run stopped.
type SessionState struct {
	Version   int       `json:"version"`
	SessionID string    `json:"session_id"`
	Mode      Mode      `json:"mode"`
	Timestamp time.Time `json:"timestamp"`

	// Target is the username or search query the session scrapes.
	// Empty in links mode.
	Target string `json:"target,omitempty"`

	TweetsScraped int      `json:"tweets_scraped"`
	SeenTweetIDs  []string `json:"seen_tweet_ids"`
	OutputPath    string   `json:"output_path"`
	NextCursor    string   `json:"next_cursor,omitempty"`

	// OldestTweet and NewestTweet bound the dates collected so far,
	// formatted as the export layout.
	OldestTweet string `json:"oldest_tweet,omitempty"`
	NewestTweet string `json:"newest_tweet,omitempty"`

	// Settings captures the effective scrape options so a resumed run
	// behaves like the original even if the config file changed.
	Settings map[string]interface{} `json:"settings,omitempty"`

	// Batch mode fields.
	Usernames    []string `json:"usernames,omitempty"`
	CurrentIndex int      `json:"current_index,omitempty"`

	// Links mode fields.
	Links          []string `json:"links,omitempty"`
	ProcessedLinks []string `json:"processed_links,omitempty"`
}

// NewSessionState creates a state for a fresh session with a generated
// session ID.
func NewSessionState(mode Mode, target, outputPath string) *SessionState {
	return &SessionState{
		Version:      CurrentVersion,
		SessionID:    uuid.NewString(),
		Mode:         mode,
		Timestamp:    time.Now().UTC(),
		Target:       target,
		SeenTweetIDs: []string{},
		OutputPath:   outputPath,
	}
}

// Validate performs the structural checks every loaded state must pass.
// A state that fails here is treated the same as a corrupt file.
func (s *SessionState) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported state version %d", s.Version)
	}
	if s.SessionID == "" {
		return fmt.Errorf("state has no session id")
	}
	if s.OutputPath == "" {
		return fmt.Errorf("state has no output path")
	}
	if s.TweetsScraped < 0 {
		return fmt.Errorf("negative tweet count %d", s.TweetsScraped)
	}

	switch s.Mode {
	case ModeSingle:
		if s.Target == "" {
			return fmt.Errorf("single mode state has no target")
		}
	case ModeBatch:
		if len(s.Usernames) == 0 {
			return fmt.Errorf("batch mode state has no usernames")
		}
		if s.CurrentIndex < 0 || s.CurrentIndex > len(s.Usernames) {
			return fmt.Errorf("batch index %d out of range for %d usernames", s.CurrentIndex, len(s.Usernames))
		}
	case ModeLinks:
		if len(s.Links) == 0 {
			return fmt.Errorf("links mode state has no links")
		}
		if len(s.ProcessedLinks) > len(s.Links) {
			return fmt.Errorf("%d processed links exceeds %d total", len(s.ProcessedLinks), len(s.Links))
		}
	default:
		return fmt.Errorf("unknown session mode %q", s.Mode)
	}

	return nil
}

// Remaining reports how much of the session's work list is left. For
// single mode there is no list, so it always reports zero.
func (s *SessionState) Remaining() int {
	switch s.Mode {
	case ModeBatch:
		return len(s.Usernames) - s.CurrentIndex
	case ModeLinks:
		return len(s.Links) - len(s.ProcessedLinks)
	default:
		return 0
	}
}
