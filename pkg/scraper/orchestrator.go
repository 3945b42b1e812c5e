package scraper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"xscraper/pkg/checkpoint"
	"xscraper/pkg/config"
	"xscraper/pkg/dedupe"
	errs "xscraper/pkg/errors"
	"xscraper/pkg/export"
	"xscraper/pkg/logger"
	"xscraper/pkg/metadata"
	"xscraper/pkg/models"
	"xscraper/pkg/normalize"
	"xscraper/pkg/ratelimit"
	"xscraper/pkg/retry"
	"xscraper/pkg/storage"
	"xscraper/pkg/twitter"
)

// AccountOutcome records how one account in a batch fared.
type AccountOutcome struct {
	Username   string
	OutputPath string
	Accepted   int
	Status     string
	Err        string
}

// BatchReport aggregates a batch run. Completed is false when the run
// stopped before reaching the end of the account list.
type BatchReport struct {
	Outcomes      []AccountOutcome
	TotalAccepted int
	Completed     bool
}

// Orchestrator composes the engine into the three run modes and owns
// the session checkpoint. One orchestrator drives at most one session
// at a time.
type Orchestrator struct {
	cfg   *config.Config
	auth  twitter.Authenticator
	hooks Hooks
	log   logger.Logger
	store *checkpoint.Store
	files *storage.Manager

	// sleep overrides the retry policy's sleeper in tests.
	sleep retry.SleepFunc
}

// New creates an orchestrator. The checkpoint lives next to the output
// files under the configured state file name.
func New(cfg *config.Config, auth twitter.Authenticator, hooks Hooks) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Orchestrator{
		cfg:   cfg,
		auth:  auth,
		hooks: hooks,
		log:   logger.GetLogger(),
		store: checkpoint.NewStore(filepath.Join(cfg.Output.Directory, cfg.Output.StateFile)),
	}
}

// Store exposes the session checkpoint for the state and resume
// surfaces.
func (o *Orchestrator) Store() *checkpoint.Store {
	return o.store
}

// ensureWorkspace creates the output directory before any sink or
// checkpoint write touches it.
func (o *Orchestrator) ensureWorkspace() error {
	if o.files != nil {
		return nil
	}
	files, err := storage.NewManager(o.cfg.Output.Directory)
	if err != nil {
		return err
	}
	o.files = files
	return nil
}

// recordExport notes a finished export file in the directory manifest.
// Manifest trouble never fails the run.
func (o *Orchestrator) recordExport(state *checkpoint.SessionState, res *Result) {
	if o.files != nil {
		o.files.RecordExport(res.OutputPath)
	}

	manifest, err := metadata.Load(o.cfg.Output.Directory)
	if err != nil {
		o.log.WithError(err).Warn("Failed to load export manifest")
		return
	}

	query := ""
	if state.Mode != checkpoint.ModeLinks {
		query = queryFromSettings(state).String()
	}
	manifest.Upsert(metadata.ExportRecord{
		SessionID:   state.SessionID,
		Mode:        string(state.Mode),
		Target:      state.Target,
		Query:       query,
		Path:        res.OutputPath,
		Format:      formatFromSettings(state, o.cfg.Output.Format),
		Tweets:      res.Accepted,
		OldestTweet: state.OldestTweet,
		NewestTweet: state.NewestTweet,
		CompletedAt: time.Now().UTC(),
	})
	if err := manifest.Save(); err != nil {
		o.log.WithError(err).Warn("Failed to update export manifest")
	}
}

// RunSingle executes one query to completion.
func (o *Orchestrator) RunSingle(ctx context.Context, query twitter.Query) (*Result, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(o.cfg.Output.Format)
	if err != nil {
		return nil, errs.Wrap(errs.TypeMalformedInput, "bad output format", err)
	}

	if err := o.ensureWorkspace(); err != nil {
		return nil, err
	}

	name := queryName(query)
	path, err := filepath.Abs(o.outputPath(name, format))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output path: %w", err)
	}

	state := checkpoint.NewSessionState(checkpoint.ModeSingle, name, path)
	state.Settings = settingsFromQuery(query, string(format))

	sink, err := export.New(format, path, name, false)
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	return o.runEngine(ctx, query, sink, state)
}

// RunBatch scrapes a list of accounts sequentially. Per-account
// failures are recorded and the batch continues; auth and network
// failures invalidate the whole session and propagate immediately.
func (o *Orchestrator) RunBatch(ctx context.Context, usernames []string, since, until string) (*BatchReport, error) {
	if len(usernames) == 0 {
		return nil, errs.New(errs.TypeMalformedInput, "batch needs at least one username")
	}
	if err := twitter.ValidateDateRange(since, until); err != nil {
		return nil, err
	}
	if _, err := export.ParseFormat(o.cfg.Output.Format); err != nil {
		return nil, errs.Wrap(errs.TypeMalformedInput, "bad output format", err)
	}
	if err := o.ensureWorkspace(); err != nil {
		return nil, err
	}

	state := checkpoint.NewSessionState(checkpoint.ModeBatch, "", "pending")
	state.Usernames = usernames
	state.Settings = map[string]interface{}{
		"since": since,
		"until": until,
	}

	return o.runBatchFrom(ctx, state, &BatchReport{})
}

// runBatchFrom walks the account list from state.CurrentIndex. Shared
// by fresh runs and resume.
func (o *Orchestrator) runBatchFrom(ctx context.Context, state *checkpoint.SessionState, report *BatchReport) (*BatchReport, error) {
	format, _ := export.ParseFormat(o.cfg.Output.Format)
	since, _ := state.Settings["since"].(string)
	until, _ := state.Settings["until"].(string)
	resuming := state.NextCursor != "" || len(state.SeenTweetIDs) > 0

	for state.CurrentIndex < len(state.Usernames) {
		if o.stopRequested(ctx) {
			report.Completed = false
			return report, nil
		}

		username := state.Usernames[state.CurrentIndex]
		query := twitter.Query{FromUser: username, Since: since, Until: until}

		path := state.OutputPath
		if !resuming || path == "" || path == "pending" {
			abs, err := filepath.Abs(o.outputPath(username, format))
			if err != nil {
				return report, fmt.Errorf("failed to resolve output path: %w", err)
			}
			path = abs
		}

		sink, err := export.New(format, path, username, resuming)
		if err != nil {
			return report, err
		}

		state.Target = username
		state.OutputPath = path
		o.hooks.status(fmt.Sprintf("Scraping @%s (%d of %d)", username, state.CurrentIndex+1, len(state.Usernames)))

		res, err := o.runEngine(ctx, query, sink, state)
		sink.Close()

		if err != nil {
			t := errs.TypeOf(err)
			if t == errs.TypeAuthExpired || t == errs.TypeNetwork {
				return report, err
			}
			report.Outcomes = append(report.Outcomes, AccountOutcome{
				Username: username, OutputPath: path, Status: "failed", Err: err.Error(),
			})
		} else {
			report.Outcomes = append(report.Outcomes, AccountOutcome{
				Username: username, OutputPath: path,
				Accepted: res.Accepted, Status: string(res.Reason),
			})
			report.TotalAccepted += res.Accepted
			if res.State == StateAborted {
				report.Completed = false
				return report, nil
			}
		}

		// Account finished. Reset per-account progress and move on.
		state.CurrentIndex++
		state.NextCursor = ""
		state.SeenTweetIDs = []string{}
		state.TweetsScraped = 0
		state.OldestTweet = ""
		state.NewestTweet = ""
		resuming = false
		if err := o.store.Save(state); err != nil {
			o.log.WithError(err).Error("Failed to save batch progress")
		}
	}

	report.Completed = true
	return report, nil
}

// RunLinks fetches a list of direct tweet links one by one. Malformed
// and duplicate links were already dropped by the file loader; links
// that fetch as not-found are skipped with a warning.
func (o *Orchestrator) RunLinks(ctx context.Context, linksPath string) (*Result, error) {
	links, err := twitter.LoadLinksFile(linksPath, o.log)
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(o.cfg.Output.Format)
	if err != nil {
		return nil, errs.Wrap(errs.TypeMalformedInput, "bad output format", err)
	}

	if err := o.ensureWorkspace(); err != nil {
		return nil, err
	}

	path, err := filepath.Abs(o.outputPath("links", format))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output path: %w", err)
	}

	state := checkpoint.NewSessionState(checkpoint.ModeLinks, "", path)
	state.Links = links

	sink, err := export.New(format, path, "links", false)
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	return o.runLinksFrom(ctx, state, sink)
}

// runLinksFrom fetches every unprocessed link. Shared by fresh runs
// and resume.
func (o *Orchestrator) runLinksFrom(ctx context.Context, state *checkpoint.SessionState, sink export.Sink) (*Result, error) {
	stop := func() bool { return o.stopRequested(ctx) }

	policy := o.newPolicy(stop)
	pacer := ratelimit.NewPacer(o.cfg.Scrape.FetchDelay, stop)
	seen := dedupSeed(state)
	processed := make(map[string]bool, len(state.ProcessedLinks))
	for _, l := range state.ProcessedLinks {
		processed[l] = true
	}

	var client twitter.Client
	err := policy.Do("authenticate", func() error {
		c, err := o.auth.Authenticate(ctx)
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return o.finishLinks(state, sink, StateAborted, linkAbortReason(err), true), errOrNil(err)
	}

	sinceSave := 0
	for _, link := range state.Links {
		if processed[link] {
			continue
		}
		if stop() {
			return o.finishLinks(state, sink, StateAborted, ReasonUserStop, true), nil
		}

		id, err := twitter.TweetIDFromLink(link)
		if err != nil {
			// Loader already filtered these; a stale state may still
			// carry one.
			o.log.WithField("link", link).Warn("Skipping malformed link")
			state.ProcessedLinks = append(state.ProcessedLinks, link)
			continue
		}

		if err := pacer.Wait(); err != nil {
			return o.finishLinks(state, sink, StateAborted, ReasonUserStop, true), nil
		}

		var raw models.RawTweet
		err = policy.Do("fetch "+id, func() error {
			r, err := client.TweetByID(ctx, id)
			if err != nil {
				return err
			}
			raw = r
			return nil
		})
		if err != nil {
			if errors.Is(err, retry.ErrStopped) {
				return o.finishLinks(state, sink, StateAborted, ReasonUserStop, true), nil
			}
			t := errs.TypeOf(err)
			if t == errs.TypeAuthExpired || t == errs.TypeNetwork || t == errs.TypeUnknown {
				return o.finishLinks(state, sink, StateAborted, ReasonError, true), err
			}
			// Not found or a pagination-class hiccup: skip this link.
			o.log.WithError(err).WithField("link", link).Warn("Skipping unfetchable link")
			state.ProcessedLinks = append(state.ProcessedLinks, link)
			continue
		}

		state.ProcessedLinks = append(state.ProcessedLinks, link)

		record, err := normalize.Tweet(raw)
		if err != nil {
			o.log.WithError(err).WithField("link", link).Warn("Skipping unusable record")
			continue
		}
		if !seen.Add(record.ID) {
			continue
		}
		if err := sink.Append(record.ExportRow(sink.Path())); err != nil {
			return o.finishLinks(state, sink, StateAborted, ReasonError, true), err
		}
		state.TweetsScraped++
		o.hooks.progress(state.TweetsScraped)

		sinceSave++
		if sinceSave >= o.cfg.Scrape.LinkSaveEvery {
			sinceSave = 0
			state.SeenTweetIDs = seen.IDs()
			if err := sink.Flush(); err != nil {
				o.log.WithError(err).Error("Failed to flush export file")
			}
			if err := o.store.Save(state); err != nil {
				o.log.WithError(err).Error("Failed to save session state")
			}
		}
	}

	state.SeenTweetIDs = seen.IDs()
	res := o.finishLinks(state, sink, StateDone, ReasonEndOfResults, false)
	o.recordExport(state, res)
	return res, nil
}

// Resume continues the session in the checkpoint. The output file is
// reopened in append mode and already-seen records are skipped. The
// batch and links return values are mutually exclusive with the single
// Result, keyed by the resumed mode.
func (o *Orchestrator) Resume(ctx context.Context) (*Result, *BatchReport, error) {
	state, err := o.store.Load()
	if err != nil {
		return nil, nil, err
	}
	if state == nil {
		return nil, nil, fmt.Errorf("no saved session to resume")
	}
	if err := o.store.ValidateIntegrity(state); err != nil {
		return nil, nil, err
	}
	if err := o.ensureWorkspace(); err != nil {
		return nil, nil, err
	}

	o.hooks.status("Resuming session:\n" + checkpoint.Summary(state))

	switch state.Mode {
	case checkpoint.ModeSingle:
		res, err := o.resumeSingle(ctx, state)
		return res, nil, err
	case checkpoint.ModeBatch:
		report, err := o.runBatchFrom(ctx, state, &BatchReport{})
		return nil, report, err
	case checkpoint.ModeLinks:
		format, ferr := export.ParseFormat(formatFromSettings(state, o.cfg.Output.Format))
		if ferr != nil {
			return nil, nil, ferr
		}
		sink, serr := export.New(format, state.OutputPath, "links", true)
		if serr != nil {
			return nil, nil, serr
		}
		defer sink.Close()
		res, err := o.runLinksFrom(ctx, state, sink)
		return res, nil, err
	default:
		return nil, nil, fmt.Errorf("cannot resume unknown mode %q", state.Mode)
	}
}

func (o *Orchestrator) resumeSingle(ctx context.Context, state *checkpoint.SessionState) (*Result, error) {
	query := queryFromSettings(state)
	format, err := export.ParseFormat(formatFromSettings(state, o.cfg.Output.Format))
	if err != nil {
		return nil, err
	}

	sink, err := export.New(format, state.OutputPath, state.Target, true)
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	return o.runEngine(ctx, query, sink, state)
}

func (o *Orchestrator) runEngine(ctx context.Context, query twitter.Query, sink export.Sink, state *checkpoint.SessionState) (*Result, error) {
	engine := NewEngine(EngineConfig{
		Query:  query,
		Auth:   o.auth,
		Sink:   sink,
		Store:  o.store,
		State:  state,
		Config: o.cfg,
		Hooks:  o.hooks,
		Logger: o.log,
		Sleep:  o.sleep,
	})
	res, err := engine.Run(ctx)
	if res != nil && res.State == StateDone {
		o.recordExport(state, res)
	}
	return res, err
}

func (o *Orchestrator) finishLinks(state *checkpoint.SessionState, sink export.Sink, s State, reason StopReason, hasMore bool) *Result {
	if err := sink.Flush(); err != nil {
		o.log.WithError(err).Error("Failed to flush export file")
	}
	if err := o.store.Save(state); err != nil {
		o.log.WithError(err).Error("Failed to save session state")
	}
	return &Result{
		State:      s,
		Reason:     reason,
		Accepted:   state.TweetsScraped,
		OutputPath: sink.Path(),
		SeenIDs:    state.SeenTweetIDs,
		HasMore:    hasMore,
	}
}

func (o *Orchestrator) newPolicy(stop retry.StopFunc) *retry.Policy {
	policy := retry.NewPolicy(o.log)
	policy.Stop = stop
	policy.Notify = o.hooks.status
	policy.OnAuthExpired = o.hooks.OnAuthExpired
	policy.AwaitCredentialRefresh = o.hooks.AwaitCredentialRefresh
	policy.OnNetworkTrouble = o.hooks.OnNetworkTrouble
	if o.sleep != nil {
		policy.Sleep = o.sleep
	}
	return policy
}

func (o *Orchestrator) stopRequested(ctx context.Context) bool {
	if o.hooks.Stop != nil && o.hooks.Stop() {
		return true
	}
	return ctx != nil && ctx.Err() != nil
}

func (o *Orchestrator) outputPath(name string, format export.Format) string {
	return filepath.Join(o.cfg.Output.Directory, sanitizeFilename(name)+"_tweets."+format.Ext())
}

func dedupSeed(state *checkpoint.SessionState) *dedupe.Set {
	return dedupe.NewSet(state.SeenTweetIDs)
}

func linkAbortReason(err error) StopReason {
	if errors.Is(err, retry.ErrStopped) {
		return ReasonUserStop
	}
	return ReasonError
}

func errOrNil(err error) error {
	if errors.Is(err, retry.ErrStopped) {
		return nil
	}
	return err
}

// queryName derives a filesystem-friendly session name from the query.
func queryName(query twitter.Query) string {
	if query.FromUser != "" {
		return strings.TrimPrefix(query.FromUser, "@")
	}
	for _, kw := range query.Keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			return kw
		}
	}
	return "search"
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "session"
	}
	return b.String()
}

func settingsFromQuery(query twitter.Query, format string) map[string]interface{} {
	keywords := make([]interface{}, 0, len(query.Keywords))
	for _, kw := range query.Keywords {
		keywords = append(keywords, kw)
	}
	return map[string]interface{}{
		"from_user":       query.FromUser,
		"keywords":        keywords,
		"match":           string(query.Match),
		"since":           query.Since,
		"until":           query.Until,
		"include_replies": query.IncludeReplies,
		"format":          format,
	}
}

// queryFromSettings rebuilds a query from the checkpoint's settings
// bag. Values went through JSON, so slices come back as []interface{}.
func queryFromSettings(state *checkpoint.SessionState) twitter.Query {
	s := state.Settings
	query := twitter.Query{FromUser: state.Target}

	if v, ok := s["from_user"].(string); ok && v != "" {
		query.FromUser = v
	}
	if v, ok := s["match"].(string); ok {
		query.Match = twitter.MatchMode(v)
	}
	if v, ok := s["since"].(string); ok {
		query.Since = v
	}
	if v, ok := s["until"].(string); ok {
		query.Until = v
	}
	if v, ok := s["include_replies"].(bool); ok {
		query.IncludeReplies = v
	}
	if raw, ok := s["keywords"].([]interface{}); ok {
		for _, kw := range raw {
			if str, ok := kw.(string); ok {
				query.Keywords = append(query.Keywords, str)
			}
		}
	}
	return query
}

func formatFromSettings(state *checkpoint.SessionState, fallback string) string {
	if v, ok := state.Settings["format"].(string); ok && v != "" {
		return v
	}
	return fallback
}
