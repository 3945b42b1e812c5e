package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"xscraper/pkg/checkpoint"
	"xscraper/pkg/config"
	"xscraper/pkg/dedupe"
	errs "xscraper/pkg/errors"
	"xscraper/pkg/export"
	"xscraper/pkg/logger"
	"xscraper/pkg/models"
	"xscraper/pkg/normalize"
	"xscraper/pkg/ratelimit"
	"xscraper/pkg/retry"
	"xscraper/pkg/twitter"
)

// EngineConfig carries everything one pagination session needs. Auth,
// Sink, Store and State are required; the rest have working defaults.
type EngineConfig struct {
	Query  twitter.Query
	Auth   twitter.Authenticator
	Sink   export.Sink
	Store  *checkpoint.Store
	State  *checkpoint.SessionState
	Config *config.Config
	Hooks  Hooks
	Logger logger.Logger

	// Sleep overrides the interruptible sleeper in the retry policy.
	// Tests substitute an instant one.
	Sleep retry.SleepFunc
}

// Engine drives one paginated scrape: authenticate, search, consume
// pages record by record, advance under the retry policy, and halt on
// limit, end of data, the empty-page policy, a stop request, or an
// unrecoverable error. Every exit path flushes the sink and saves the
// session state before returning.
type Engine struct {
	query  twitter.Query
	auth   twitter.Authenticator
	client twitter.Client
	sink   export.Sink
	store  *checkpoint.Store
	state  *checkpoint.SessionState
	cfg    *config.Config
	hooks  Hooks
	log    logger.Logger

	seen   *dedupe.Set
	policy *retry.Policy
	pacer  *ratelimit.Pacer
	breaks *ratelimit.BreakPolicy

	ctx       context.Context
	current   State
	emptyRun  int
	prompted  bool
	sinceSave int

	oldest time.Time
	newest time.Time
}

// NewEngine wires a fresh engine. When the session state carries seen
// IDs from a prior run they seed the deduplicator, so resumed sessions
// silently skip records already written.
func NewEngine(ec EngineConfig) *Engine {
	if ec.Config == nil {
		ec.Config = config.DefaultConfig()
	}
	if ec.Logger == nil {
		ec.Logger = logger.GetLogger()
	}

	e := &Engine{
		query: ec.Query,
		auth:  ec.Auth,
		sink:  ec.Sink,
		store: ec.Store,
		state: ec.State,
		cfg:   ec.Config,
		hooks: ec.Hooks,
		log:   ec.Logger,
		seen:  dedupe.NewSet(ec.State.SeenTweetIDs),
	}

	e.policy = retry.NewPolicy(e.log)
	e.policy.Stop = e.stopped
	e.policy.Notify = e.hooks.status
	e.policy.OnAuthExpired = e.hooks.OnAuthExpired
	e.policy.AwaitCredentialRefresh = e.hooks.AwaitCredentialRefresh
	e.policy.OnNetworkTrouble = e.hooks.OnNetworkTrouble
	if ec.Sleep != nil {
		e.policy.Sleep = ec.Sleep
	}

	e.pacer = ratelimit.NewPacer(e.cfg.Scrape.FetchDelay, e.stopped)
	e.breaks = ratelimit.NewBreakPolicy(
		e.cfg.Breaks.Enabled,
		e.cfg.Breaks.TweetInterval,
		e.cfg.Breaks.MinMinutes,
		e.cfg.Breaks.MaxMinutes,
		e.stopped,
	)
	e.breaks.OnBreak = func(d time.Duration) {
		e.hooks.status(fmt.Sprintf("Taking a %v break to stay under the radar", d.Round(time.Second)))
	}

	return e
}

// stopped is the shared cancellation predicate: the caller's stop hook
// or context cancellation, whichever fires first.
func (e *Engine) stopped() bool {
	if e.hooks.Stop != nil && e.hooks.Stop() {
		return true
	}
	return e.ctx != nil && e.ctx.Err() != nil
}

func (e *Engine) transition(s State) {
	e.current = s
	e.log.WithField("state", string(s)).Debug("Engine state change")
}

// Run executes the session to completion. The returned Result is
// non-nil on every path, including errors.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	e.ctx = ctx

	if err := e.query.Validate(); err != nil {
		return e.finish(StateAborted, ReasonError, false), err
	}

	e.transition(StateAuthenticating)
	err := e.policy.Do("authenticate", func() error {
		client, err := e.auth.Authenticate(ctx)
		if err != nil {
			return err
		}
		e.client = client
		return nil
	})
	if err != nil {
		return e.abort(err)
	}

	e.transition(StateSearching)
	e.hooks.status("Searching: " + e.query.String())

	page, end, err := e.fetch("search", func(ctx context.Context) (twitter.Page, error) {
		return e.client.Search(ctx, e.query.String(), e.state.NextCursor)
	})
	if err != nil {
		return e.abort(err)
	}
	if end {
		return e.finish(StateDone, ReasonEndOfResults, false), nil
	}

	for {
		if e.stopped() {
			return e.finish(StateAborted, ReasonUserStop, true), nil
		}

		e.transition(StateConsumingPage)
		if res, err := e.consumePage(page); res != nil || err != nil {
			return res, err
		}

		// The cursor saved from here on re-fetches the next page.
		e.state.NextCursor = page.Cursor()

		e.transition(StateAdvancingPage)
		next, end, err := e.fetch("advance page", func(ctx context.Context) (twitter.Page, error) {
			return page.Next(ctx)
		})
		if err != nil {
			return e.abort(err)
		}
		if end {
			return e.finish(StateDone, ReasonEndOfResults, false), nil
		}
		page = next
	}
}

// fetch runs one page retrieval under pacing and the retry policy.
// end-of-results is reported as a flag: both the upstream sentinel and
// an exhausted pagination-glitch budget land there.
func (e *Engine) fetch(name string, get func(context.Context) (twitter.Page, error)) (twitter.Page, bool, error) {
	if err := e.pacer.Wait(); err != nil {
		return nil, false, err
	}

	var page twitter.Page
	var end bool
	err := e.policy.Do(name, func() error {
		p, err := get(e.ctx)
		if err != nil {
			if errors.Is(err, twitter.ErrEndOfResults) {
				end = true
				return nil
			}
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		if errs.TypeOf(err) == errs.TypePagination {
			e.log.WithError(err).Info("Pagination retries exhausted, treating as end of results")
			return nil, true, nil
		}
		return nil, false, err
	}
	return page, end, nil
}

// consumePage pushes one page's records through normalize, dedupe,
// keyword filter and the sink. A non-nil Result means the session is
// over (limit reached, empty-page policy, stop).
func (e *Engine) consumePage(page twitter.Page) (*Result, error) {
	accepted := 0

	for _, raw := range page.Tweets() {
		if e.stopped() {
			return e.finish(StateAborted, ReasonUserStop, true), nil
		}

		record, err := normalize.Tweet(raw)
		if err != nil {
			e.log.WithError(err).Debug("Skipping unusable record")
			continue
		}
		if !e.seen.Add(record.ID) {
			continue
		}
		if !e.matchesKeywords(record.Text) {
			continue
		}

		if err := e.sink.Append(record.ExportRow(e.sink.Path())); err != nil {
			res, _ := e.abort(err)
			return res, err
		}
		accepted++
		e.state.TweetsScraped++
		e.trackDates(record)
		e.hooks.progress(e.state.TweetsScraped)
		e.hooks.record(record)

		e.sinceSave++
		if e.sinceSave >= e.cfg.Scrape.SaveEvery {
			e.sinceSave = 0
			e.persist()
		}

		if err := e.breaks.Record(); err != nil {
			return e.finish(StateAborted, ReasonUserStop, true), nil
		}

		if e.cfg.Scrape.MaxTweets > 0 && e.state.TweetsScraped >= e.cfg.Scrape.MaxTweets {
			e.hooks.status(fmt.Sprintf("Reached target of %d tweets", e.cfg.Scrape.MaxTweets))
			return e.finish(StateDone, ReasonLimitReached, false), nil
		}
	}

	if accepted > 0 {
		e.emptyRun = 0
		return nil, nil
	}
	return e.emptyPageDecision()
}

// emptyPageDecision applies the consecutive-empty-page policy: with
// nothing ever accepted a short run means no matching results; after
// accepts, the prompt threshold surfaces the decision to the caller
// once, and the ceiling forces a halt regardless.
func (e *Engine) emptyPageDecision() (*Result, error) {
	e.emptyRun++
	e.log.WithField("consecutive_empty", e.emptyRun).Debug("Page yielded no accepted records")

	if e.state.TweetsScraped == 0 && e.emptyRun >= e.cfg.Scrape.EmptyPagesNoResults {
		return e.finish(StateDone, ReasonNoResults, false), nil
	}

	if e.state.TweetsScraped > 0 && e.emptyRun >= e.cfg.Scrape.EmptyPagesPrompt && !e.prompted {
		e.prompted = true
		e.transition(StatePromptNeeded)
		e.hooks.status(fmt.Sprintf("%d consecutive empty pages, likely end of results", e.emptyRun))

		if e.hooks.ResolvePrompt != nil {
			switch e.hooks.ResolvePrompt(e.emptyRun) {
			case PromptStop:
				return e.finish(StateDone, ReasonPromptStop, false), nil
			case PromptContinue:
				e.hooks.status("Continuing past empty pages")
			}
		}
	}

	if e.emptyRun >= e.cfg.Scrape.EmptyPagesCeiling {
		return e.finish(StateDone, ReasonEmptyPageCeiling, false), nil
	}

	return nil, nil
}

func (e *Engine) matchesKeywords(text string) bool {
	if len(e.query.Keywords) == 0 {
		return true
	}

	lower := strings.ToLower(text)
	matched := 0
	for _, kw := range e.query.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(lower, kw) {
			matched++
		} else if e.query.Match != twitter.MatchAny {
			return false
		}
	}
	return matched > 0 || e.query.Match != twitter.MatchAny
}

func (e *Engine) trackDates(record *models.Tweet) {
	if record.PostedAt.IsZero() {
		return
	}
	if e.oldest.IsZero() || record.PostedAt.Before(e.oldest) {
		e.oldest = record.PostedAt
		e.state.OldestTweet = record.Date
	}
	if e.newest.IsZero() || record.PostedAt.After(e.newest) {
		e.newest = record.PostedAt
		e.state.NewestTweet = record.Date
	}
}

// persist is the periodic checkpoint: flush rows, then save state, so
// the state file never claims rows the output does not have.
func (e *Engine) persist() {
	if err := e.sink.Flush(); err != nil {
		e.log.WithError(err).Error("Failed to flush export file")
	}
	e.state.SeenTweetIDs = e.seen.IDs()
	if err := e.store.Save(e.state); err != nil {
		e.log.WithError(err).Error("Failed to save session state")
	}
}

// abort maps an escalated error onto the terminal result. A stop that
// surfaced through the retry policy is a clean user stop, not a
// failure.
func (e *Engine) abort(err error) (*Result, error) {
	if errors.Is(err, retry.ErrStopped) {
		return e.finish(StateAborted, ReasonUserStop, true), nil
	}
	e.log.WithError(err).Error("Session aborted")
	return e.finish(StateAborted, ReasonError, true), err
}

// finish is the single exit gate: every terminal path funnels through
// here so the final flush and state save can never be skipped.
func (e *Engine) finish(s State, reason StopReason, hasMore bool) *Result {
	e.transition(s)
	e.persist()

	return &Result{
		State:       s,
		Reason:      reason,
		Accepted:    e.state.TweetsScraped,
		OutputPath:  e.sink.Path(),
		SeenIDs:     e.seen.IDs(),
		HasMore:     hasMore,
		OldestTweet: e.state.OldestTweet,
		NewestTweet: e.state.NewestTweet,
	}
}
