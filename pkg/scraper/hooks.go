package scraper

import "xscraper/pkg/models"

// State names a position in the engine's pagination loop. Terminal
// states are StateDone and StateAborted.
type State string

const (
	StateAuthenticating State = "AUTHENTICATING"
	StateSearching      State = "SEARCHING"
	StateConsumingPage  State = "CONSUMING_PAGE"
	StateAdvancingPage  State = "ADVANCING_PAGE"
	StatePromptNeeded   State = "PROMPT_NEEDED"
	StateDone           State = "DONE"
	StateAborted        State = "ABORTED"
)

// StopReason records why a session halted.
type StopReason string

const (
	ReasonLimitReached     StopReason = "limit_reached"
	ReasonEndOfResults     StopReason = "end_of_results"
	ReasonNoResults        StopReason = "no_matching_results"
	ReasonPromptStop       StopReason = "stopped_at_prompt"
	ReasonEmptyPageCeiling StopReason = "empty_page_ceiling"
	ReasonUserStop         StopReason = "user_stop"
	ReasonError            StopReason = "error"
)

// PromptDecision is the caller's answer to an empty-page prompt.
type PromptDecision int

const (
	// PromptUnresolved means no decision; the engine keeps going until
	// the empty-page ceiling forces a halt.
	PromptUnresolved PromptDecision = iota
	PromptContinue
	PromptStop
)

// Hooks are the caller-facing controls: progress notification, the
// polled stop predicate, the two notification channels, and prompt
// resolution. Every field is optional.
type Hooks struct {
	// OnProgress receives the running accepted-record count.
	OnProgress func(count int)

	// OnRecord receives each accepted record as it is written.
	OnRecord func(tweet *models.Tweet)

	// OnStatus receives human-readable status lines.
	OnStatus func(status string)

	// Stop is the cancellation predicate, polled before each record,
	// before each page advance, and once per second during waits.
	Stop func() bool

	// OnAuthExpired fires when credentials stop working, before the
	// engine waits for a refresh.
	OnAuthExpired func(reason string)

	// AwaitCredentialRefresh blocks until credentials are updated.
	// When nil, an auth failure ends the session.
	AwaitCredentialRefresh func() error

	// OnNetworkTrouble fires when the network retry budget runs out.
	OnNetworkTrouble func(reason string)

	// ResolvePrompt is consulted when consecutive empty pages reach
	// the prompt threshold. Called at most once per session.
	ResolvePrompt func(consecutiveEmpty int) PromptDecision
}

func (h Hooks) progress(count int) {
	if h.OnProgress != nil {
		h.OnProgress(count)
	}
}

func (h Hooks) record(tweet *models.Tweet) {
	if h.OnRecord != nil {
		h.OnRecord(tweet)
	}
}

func (h Hooks) status(msg string) {
	if h.OnStatus != nil {
		h.OnStatus(msg)
	}
}

// Result is what a finished session hands back, whatever the exit
// path. The output file and checkpoint are already flushed and saved
// by the time a Result exists.
type Result struct {
	State      State
	Reason     StopReason
	Accepted   int
	OutputPath string
	SeenIDs    []string

	// HasMore reports whether resuming could plausibly yield more
	// records: true after an abort mid-stream, false when the session
	// ran to its own conclusion.
	HasMore bool

	// OldestTweet and NewestTweet bound the accepted records' dates,
	// in the export layout. Empty when nothing was accepted or no
	// timestamp parsed.
	OldestTweet string
	NewestTweet string
}
