package scraper

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"xscraper/pkg/checkpoint"
	"xscraper/pkg/config"
	errs "xscraper/pkg/errors"
	"xscraper/pkg/export"
	"xscraper/pkg/logger"
	"xscraper/pkg/models"
	"xscraper/pkg/retry"
	"xscraper/pkg/twitter"
)

// fakeClient serves scripted pages. Cursors are "p<N>" so a resumed
// Search lands on the right page.
type fakeClient struct {
	pages [][]models.RawTweet

	// nextErrs[i] is consumed, one per call, before serving page i.
	nextErrs map[int][]error

	byID      map[string]models.RawTweet
	fetchErrs map[string][]error
}

func (c *fakeClient) Search(ctx context.Context, query, cursor string) (twitter.Page, error) {
	idx := 0
	if cursor != "" {
		fmt.Sscanf(cursor, "p%d", &idx)
	}
	return c.pageAt(idx)
}

func (c *fakeClient) pageAt(i int) (twitter.Page, error) {
	if errList := c.nextErrs[i]; len(errList) > 0 {
		err := errList[0]
		c.nextErrs[i] = errList[1:]
		return nil, err
	}
	if i >= len(c.pages) {
		return nil, twitter.ErrEndOfResults
	}
	return &fakePage{client: c, index: i}, nil
}

func (c *fakeClient) TweetByID(ctx context.Context, id string) (models.RawTweet, error) {
	if errList := c.fetchErrs[id]; len(errList) > 0 {
		err := errList[0]
		c.fetchErrs[id] = errList[1:]
		return nil, err
	}
	raw, ok := c.byID[id]
	if !ok {
		return nil, twitter.ErrNotFound
	}
	return raw, nil
}

type fakePage struct {
	client *fakeClient
	index  int
}

func (p *fakePage) Tweets() []models.RawTweet { return p.client.pages[p.index] }
func (p *fakePage) Cursor() string            { return fmt.Sprintf("p%d", p.index+1) }
func (p *fakePage) Next(ctx context.Context) (twitter.Page, error) {
	return p.client.pageAt(p.index + 1)
}

// fakeAuth hands out the fake client, optionally failing first.
type fakeAuth struct {
	client twitter.Client
	errs   []error
	calls  int
}

func (a *fakeAuth) Authenticate(ctx context.Context) (twitter.Client, error) {
	a.calls++
	if len(a.errs) > 0 {
		err := a.errs[0]
		a.errs = a.errs[1:]
		return nil, err
	}
	return a.client, nil
}

func instantSleep(d time.Duration, stop retry.StopFunc, tick func(time.Duration)) error {
	if stop != nil && stop() {
		return retry.ErrStopped
	}
	return nil
}

func rawTweet(id string) models.RawTweet {
	return models.RawTweet{
		"id":   id,
		"text": "tweet number " + id,
		"user": map[string]interface{}{
			"screen_name": "alice",
			"name":        "Alice",
		},
		"created_at":    "Mon Jan 02 15:04:05 +0000 2006",
		"retweet_count": 1,
	}
}

func pageOf(ids ...string) []models.RawTweet {
	tweets := make([]models.RawTweet, 0, len(ids))
	for _, id := range ids {
		tweets = append(tweets, rawTweet(id))
	}
	return tweets
}

func numberedPage(start, n int) []models.RawTweet {
	tweets := make([]models.RawTweet, 0, n)
	for i := 0; i < n; i++ {
		tweets = append(tweets, rawTweet(fmt.Sprintf("%d", start+i)))
	}
	return tweets
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scrape.FetchDelay = 0
	cfg.Breaks.Enabled = false
	return cfg
}

type testSession struct {
	engine *Engine
	sink   export.Sink
	state  *checkpoint.SessionState
	store  *checkpoint.Store
	path   string
}

func newTestSession(t *testing.T, client *fakeClient, cfg *config.Config, hooks Hooks, state *checkpoint.SessionState) *testSession {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "alice_tweets.csv")
	resume := state != nil
	if state == nil {
		state = checkpoint.NewSessionState(checkpoint.ModeSingle, "alice", path)
	}

	sink, err := export.NewCSVSink(state.OutputPath, resume)
	if err != nil {
		t.Fatalf("NewCSVSink() error = %v", err)
	}
	t.Cleanup(func() { sink.Close() })

	store := checkpoint.NewStore(filepath.Join(dir, "scraper_state.json"))

	engine := NewEngine(EngineConfig{
		Query:  twitter.Query{FromUser: "alice"},
		Auth:   &fakeAuth{client: client},
		Sink:   sink,
		Store:  store,
		State:  state,
		Config: cfg,
		Hooks:  hooks,
		Logger: logger.NewNop(),
		Sleep:  instantSleep,
	})

	return &testSession{engine: engine, sink: sink, state: state, store: store, path: state.OutputPath}
}

func csvRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

// dataRows strips the header and the export-path column, which differs
// between temp directories.
func dataRows(t *testing.T, path string) [][]string {
	rows := csvRows(t, path)
	if len(rows) == 0 {
		t.Fatal("output file has no header")
	}
	out := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, row[:len(row)-1])
	}
	return out
}

func TestEngineCollectsAllPages(t *testing.T) {
	client := &fakeClient{pages: [][]models.RawTweet{
		pageOf("1", "2", "3"),
		pageOf("4", "5"),
	}}

	var counts []int
	s := newTestSession(t, client, testConfig(), Hooks{
		OnProgress: func(n int) { counts = append(counts, n) },
	}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.State != StateDone || res.Reason != ReasonEndOfResults {
		t.Errorf("terminal = %s/%s, want DONE/end_of_results", res.State, res.Reason)
	}
	if res.Accepted != 5 {
		t.Errorf("Accepted = %d, want 5", res.Accepted)
	}
	if res.HasMore {
		t.Error("HasMore = true after end of results")
	}
	if len(counts) != 5 || counts[4] != 5 {
		t.Errorf("progress counts = %v, want 1..5", counts)
	}

	rows := dataRows(t, s.path)
	if len(rows) != 5 {
		t.Fatalf("output has %d rows, want 5", len(rows))
	}
	if rows[0][9] != "1" || rows[4][9] != "5" {
		t.Errorf("row order wrong: first=%q last=%q", rows[0][9], rows[4][9])
	}
}

func TestEngineLimitReachedMidPage(t *testing.T) {
	// Two pages of 100, then an empty page, then end of results. The
	// 150 cap trips halfway through the second page.
	client := &fakeClient{pages: [][]models.RawTweet{
		numberedPage(0, 100),
		numberedPage(100, 100),
		{},
	}}

	cfg := testConfig()
	cfg.Scrape.MaxTweets = 150

	s := newTestSession(t, client, cfg, Hooks{}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Accepted != 150 {
		t.Errorf("Accepted = %d, want 150", res.Accepted)
	}
	if res.Reason != ReasonLimitReached {
		t.Errorf("Reason = %s, want limit_reached", res.Reason)
	}
	if res.HasMore {
		t.Error("HasMore = true, want false once the target is met")
	}

	if rows := dataRows(t, s.path); len(rows) != 150 {
		t.Errorf("output has %d rows, want exactly 150", len(rows))
	}

	saved, err := s.store.Load()
	if err != nil {
		t.Fatalf("loading final state: %v", err)
	}
	if saved.TweetsScraped != 150 {
		t.Errorf("saved TweetsScraped = %d, want 150", saved.TweetsScraped)
	}
}

func TestEngineDedupesRepeatedIDs(t *testing.T) {
	client := &fakeClient{pages: [][]models.RawTweet{
		pageOf("1", "2"),
		pageOf("2", "3", "1"),
	}}

	s := newTestSession(t, client, testConfig(), Hooks{}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Accepted != 3 {
		t.Errorf("Accepted = %d, want 3 after dedupe", res.Accepted)
	}

	rows := dataRows(t, s.path)
	seen := map[string]int{}
	for _, row := range rows {
		seen[row[9]]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %s written %d times", id, n)
		}
	}
}

func TestEngineNoResultsAfterThreeEmptyPages(t *testing.T) {
	client := &fakeClient{pages: [][]models.RawTweet{
		{}, {}, {}, {}, {},
	}}

	s := newTestSession(t, client, testConfig(), Hooks{}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.State != StateDone || res.Reason != ReasonNoResults {
		t.Errorf("terminal = %s/%s, want DONE/no_matching_results", res.State, res.Reason)
	}
	if res.Accepted != 0 {
		t.Errorf("Accepted = %d, want 0", res.Accepted)
	}
}

func TestEnginePromptEmittedExactlyOnce(t *testing.T) {
	// One real record, then a long run of empty pages: the prompt
	// fires at the prompt threshold, and with no decision the ceiling
	// forces a halt.
	pages := [][]models.RawTweet{pageOf("1")}
	for i := 0; i < 12; i++ {
		pages = append(pages, []models.RawTweet{})
	}
	client := &fakeClient{pages: pages}

	prompts := 0
	s := newTestSession(t, client, testConfig(), Hooks{
		ResolvePrompt: func(consecutive int) PromptDecision {
			prompts++
			if consecutive != 5 {
				t.Errorf("prompt at %d consecutive empties, want 5", consecutive)
			}
			return PromptUnresolved
		},
	}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if prompts != 1 {
		t.Errorf("prompt emitted %d times, want exactly once", prompts)
	}
	if res.Reason != ReasonEmptyPageCeiling {
		t.Errorf("Reason = %s, want empty_page_ceiling", res.Reason)
	}
	if res.Accepted != 1 {
		t.Errorf("Accepted = %d, want 1", res.Accepted)
	}
}

func TestEnginePromptStopHaltsImmediately(t *testing.T) {
	pages := [][]models.RawTweet{pageOf("1")}
	for i := 0; i < 12; i++ {
		pages = append(pages, []models.RawTweet{})
	}
	client := &fakeClient{pages: pages}

	s := newTestSession(t, client, testConfig(), Hooks{
		ResolvePrompt: func(int) PromptDecision { return PromptStop },
	}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.State != StateDone || res.Reason != ReasonPromptStop {
		t.Errorf("terminal = %s/%s, want DONE/stopped_at_prompt", res.State, res.Reason)
	}
}

func TestEngineEmptyRunResetsOnAccept(t *testing.T) {
	// Empty runs shorter than the threshold, broken by real pages, are
	// harmless.
	client := &fakeClient{pages: [][]models.RawTweet{
		{}, {},
		pageOf("1"),
		{}, {}, {}, {},
		pageOf("2"),
	}}

	s := newTestSession(t, client, testConfig(), Hooks{
		ResolvePrompt: func(int) PromptDecision {
			t.Error("prompt fired despite counter resets")
			return PromptStop
		},
	}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Accepted != 2 || res.Reason != ReasonEndOfResults {
		t.Errorf("got %d accepted, reason %s; want 2, end_of_results", res.Accepted, res.Reason)
	}
}

func TestEngineStopRequestAborts(t *testing.T) {
	client := &fakeClient{pages: [][]models.RawTweet{
		numberedPage(0, 10),
		numberedPage(10, 10),
	}}

	accepted := 0
	s := newTestSession(t, client, testConfig(), Hooks{
		OnProgress: func(n int) { accepted = n },
		Stop:       func() bool { return accepted >= 4 },
	}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.State != StateAborted || res.Reason != ReasonUserStop {
		t.Errorf("terminal = %s/%s, want ABORTED/user_stop", res.State, res.Reason)
	}
	if !res.HasMore {
		t.Error("HasMore = false after a mid-stream stop")
	}
	if res.Accepted != 4 {
		t.Errorf("Accepted = %d, want 4", res.Accepted)
	}

	// The abort still flushed and checkpointed.
	if rows := dataRows(t, s.path); len(rows) != 4 {
		t.Errorf("output has %d rows, want 4", len(rows))
	}
	saved, err := s.store.Load()
	if err != nil {
		t.Fatalf("loading state after abort: %v", err)
	}
	if len(saved.SeenTweetIDs) != 4 {
		t.Errorf("saved %d seen ids, want 4", len(saved.SeenTweetIDs))
	}
}

func TestEngineContextCancelAborts(t *testing.T) {
	client := &fakeClient{pages: [][]models.RawTweet{numberedPage(0, 10)}}

	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	s := newTestSession(t, client, testConfig(), Hooks{
		OnProgress: func(count int) {
			n = count
			if n == 3 {
				cancel()
			}
		},
	}, nil)

	res, err := s.engine.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.State != StateAborted || res.Reason != ReasonUserStop {
		t.Errorf("terminal = %s/%s, want ABORTED/user_stop", res.State, res.Reason)
	}
	if res.Accepted != 3 {
		t.Errorf("Accepted = %d, want 3", res.Accepted)
	}
}

func TestEngineResumeReproducesUninterruptedOutput(t *testing.T) {
	script := func() *fakeClient {
		return &fakeClient{pages: [][]models.RawTweet{
			pageOf("1", "2", "3"),
			pageOf("4", "5", "6"),
			pageOf("7", "8"),
		}}
	}

	// Reference: one uninterrupted run.
	ref := newTestSession(t, script(), testConfig(), Hooks{}, nil)
	if _, err := ref.engine.Run(context.Background()); err != nil {
		t.Fatalf("reference Run() error = %v", err)
	}
	want := dataRows(t, ref.path)

	// Interrupted run: stop after 4 accepts, mid second page.
	cfg := testConfig()
	cfg.Scrape.SaveEvery = 2
	accepted := 0
	interrupted := newTestSession(t, script(), cfg, Hooks{
		OnProgress: func(n int) { accepted = n },
		Stop:       func() bool { return accepted >= 4 },
	}, nil)
	res, err := interrupted.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("interrupted Run() error = %v", err)
	}
	if res.State != StateAborted {
		t.Fatalf("interrupted run ended %s, want ABORTED", res.State)
	}

	// The partial file is a byte prefix of its own contents so far.
	partial := dataRows(t, interrupted.path)
	if len(partial) != 4 {
		t.Fatalf("partial output has %d rows, want 4", len(partial))
	}

	// Resume from the saved checkpoint against the same scripted
	// upstream.
	saved, err := interrupted.store.Load()
	if err != nil {
		t.Fatalf("loading checkpoint: %v", err)
	}
	if saved == nil {
		t.Fatal("no checkpoint saved by interrupted run")
	}

	resumedSink, err := export.NewCSVSink(saved.OutputPath, true)
	if err != nil {
		t.Fatalf("reopening sink: %v", err)
	}
	defer resumedSink.Close()

	resumed := NewEngine(EngineConfig{
		Query:  twitter.Query{FromUser: "alice"},
		Auth:   &fakeAuth{client: script()},
		Sink:   resumedSink,
		Store:  interrupted.store,
		State:  saved,
		Config: cfg,
		Hooks:  Hooks{},
		Logger: logger.NewNop(),
		Sleep:  instantSleep,
	})
	finalRes, err := resumed.Run(context.Background())
	if err != nil {
		t.Fatalf("resumed Run() error = %v", err)
	}
	if finalRes.Reason != ReasonEndOfResults {
		t.Errorf("resumed run reason = %s, want end_of_results", finalRes.Reason)
	}
	if finalRes.Accepted != 8 {
		t.Errorf("resumed total = %d, want 8", finalRes.Accepted)
	}

	got := dataRows(t, interrupted.path)
	if len(got) != len(want) {
		t.Fatalf("resumed output has %d rows, reference has %d", len(got), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("row %d col %d: got %q, want %q", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestEngineNetworkFailureRetriesSamePage(t *testing.T) {
	client := &fakeClient{
		pages: [][]models.RawTweet{
			pageOf("1", "2"),
			pageOf("3", "4"),
		},
		nextErrs: map[int][]error{
			1: {
				fmt.Errorf("connection reset by peer"),
				fmt.Errorf("read timeout"),
			},
		},
	}

	s := newTestSession(t, client, testConfig(), Hooks{}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Accepted != 4 {
		t.Errorf("Accepted = %d, want 4 (same page refetched after failures)", res.Accepted)
	}
}

func TestEngineNetworkBudgetExhaustionEscalates(t *testing.T) {
	failing := make([]error, 10)
	for i := range failing {
		failing[i] = fmt.Errorf("network unreachable")
	}
	client := &fakeClient{
		pages:    [][]models.RawTweet{pageOf("1"), pageOf("2")},
		nextErrs: map[int][]error{1: failing},
	}

	troubled := false
	s := newTestSession(t, client, testConfig(), Hooks{
		OnNetworkTrouble: func(string) { troubled = true },
	}, nil)

	res, err := s.engine.Run(context.Background())
	if err == nil {
		t.Fatal("Run() expected escalated network error")
	}
	if errs.TypeOf(err) != errs.TypeNetwork {
		t.Errorf("error type = %v, want network", errs.TypeOf(err))
	}
	if !troubled {
		t.Error("network-degradation channel never fired")
	}
	if res == nil || res.State != StateAborted {
		t.Fatalf("result = %+v, want ABORTED", res)
	}
	if !res.HasMore {
		t.Error("HasMore = false after a network abort")
	}
	// Data collected before the failure survived.
	if rows := dataRows(t, s.path); len(rows) != 1 {
		t.Errorf("output has %d rows, want 1", len(rows))
	}
}

func TestEngineAuthExpiryRefetchesSamePage(t *testing.T) {
	client := &fakeClient{
		pages: [][]models.RawTweet{
			pageOf("1"),
			pageOf("2"),
		},
		nextErrs: map[int][]error{
			1: {fmt.Errorf("401 unauthorized: token expired")},
		},
	}

	authNotified := 0
	refreshed := 0
	s := newTestSession(t, client, testConfig(), Hooks{
		OnAuthExpired:          func(string) { authNotified++ },
		AwaitCredentialRefresh: func() error { refreshed++; return nil },
	}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if authNotified != 1 || refreshed != 1 {
		t.Errorf("auth notifications = %d, refreshes = %d, want 1 and 1", authNotified, refreshed)
	}
	if res.Accepted != 2 {
		t.Errorf("Accepted = %d, want 2 (same page refetched after refresh)", res.Accepted)
	}
}

func TestEngineAuthExpiryWithoutRefreshEscalates(t *testing.T) {
	client := &fakeClient{pages: [][]models.RawTweet{pageOf("1")}}
	auth := &fakeAuth{errs: []error{fmt.Errorf("403 forbidden")}}

	dir := t.TempDir()
	path := filepath.Join(dir, "alice_tweets.csv")
	state := checkpoint.NewSessionState(checkpoint.ModeSingle, "alice", path)
	sink, err := export.NewCSVSink(path, false)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	auth.client = client
	engine := NewEngine(EngineConfig{
		Query:  twitter.Query{FromUser: "alice"},
		Auth:   auth,
		Sink:   sink,
		Store:  checkpoint.NewStore(filepath.Join(dir, "state.json")),
		State:  state,
		Config: testConfig(),
		Logger: logger.NewNop(),
		Sleep:  instantSleep,
	})

	res, err := engine.Run(context.Background())
	if err == nil {
		t.Fatal("Run() expected auth error")
	}
	if errs.TypeOf(err) != errs.TypeAuthExpired {
		t.Errorf("error type = %v, want auth_expired", errs.TypeOf(err))
	}
	if res.State != StateAborted {
		t.Errorf("State = %s, want ABORTED", res.State)
	}
}

func TestEnginePaginationGlitchTreatedAsEndOfResults(t *testing.T) {
	glitches := []error{
		fmt.Errorf("tweet not found"),
		fmt.Errorf("tweet not found"),
		fmt.Errorf("tweet not found"),
		fmt.Errorf("tweet not found"),
	}
	client := &fakeClient{
		pages:    [][]models.RawTweet{pageOf("1", "2"), pageOf("3")},
		nextErrs: map[int][]error{1: glitches},
	}

	s := newTestSession(t, client, testConfig(), Hooks{}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, want glitch absorbed as end of results", err)
	}
	if res.State != StateDone || res.Reason != ReasonEndOfResults {
		t.Errorf("terminal = %s/%s, want DONE/end_of_results", res.State, res.Reason)
	}
	if res.Accepted != 2 {
		t.Errorf("Accepted = %d, want 2", res.Accepted)
	}
}

func TestEngineKeywordFilter(t *testing.T) {
	mk := func(id, text string) models.RawTweet {
		raw := rawTweet(id)
		raw["text"] = text
		return raw
	}
	client := func() *fakeClient {
		return &fakeClient{pages: [][]models.RawTweet{{
			mk("1", "shipping a new release today"),
			mk("2", "thoughts on go generics"),
			mk("3", "release notes for the go runtime"),
		}}}
	}

	run := func(t *testing.T, q twitter.Query) *Result {
		t.Helper()
		dir := t.TempDir()
		path := filepath.Join(dir, "out.csv")
		state := checkpoint.NewSessionState(checkpoint.ModeSingle, "alice", path)
		sink, err := export.NewCSVSink(path, false)
		if err != nil {
			t.Fatal(err)
		}
		defer sink.Close()

		engine := NewEngine(EngineConfig{
			Query:  q,
			Auth:   &fakeAuth{client: client()},
			Sink:   sink,
			Store:  checkpoint.NewStore(filepath.Join(dir, "state.json")),
			State:  state,
			Config: testConfig(),
			Logger: logger.NewNop(),
			Sleep:  instantSleep,
		})
		res, err := engine.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return res
	}

	all := run(t, twitter.Query{FromUser: "alice", Keywords: []string{"go", "release"}, Match: twitter.MatchAll})
	if all.Accepted != 1 {
		t.Errorf("match-all accepted %d, want 1", all.Accepted)
	}

	any := run(t, twitter.Query{FromUser: "alice", Keywords: []string{"go", "release"}, Match: twitter.MatchAny})
	if any.Accepted != 3 {
		t.Errorf("match-any accepted %d, want 3", any.Accepted)
	}
}

func TestEngineUnusableRecordsSkipped(t *testing.T) {
	noText := models.RawTweet{"id": "9", "user": map[string]interface{}{"screen_name": "alice"}}
	noID := models.RawTweet{"text": "orphan"}
	client := &fakeClient{pages: [][]models.RawTweet{
		{rawTweet("1"), noText, noID, rawTweet("2")},
	}}

	s := newTestSession(t, client, testConfig(), Hooks{}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Accepted != 2 {
		t.Errorf("Accepted = %d, want 2 with unusable records skipped", res.Accepted)
	}
}

func TestEngineTracksDateBounds(t *testing.T) {
	older := rawTweet("1")
	older["created_at"] = "2023-02-01 10:00:00"
	newer := rawTweet("2")
	newer["created_at"] = "2024-05-01 09:30:00"
	client := &fakeClient{pages: [][]models.RawTweet{{newer, older}}}

	s := newTestSession(t, client, testConfig(), Hooks{}, nil)

	res, err := s.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.OldestTweet != "2023-02-01 10:00:00" {
		t.Errorf("OldestTweet = %q", res.OldestTweet)
	}
	if res.NewestTweet != "2024-05-01 09:30:00" {
		t.Errorf("NewestTweet = %q", res.NewestTweet)
	}
}

func TestEngineRejectsMalformedQueryBeforeNetwork(t *testing.T) {
	auth := &fakeAuth{client: &fakeClient{}}

	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	state := checkpoint.NewSessionState(checkpoint.ModeSingle, "alice", path)
	sink, err := export.NewCSVSink(path, false)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	engine := NewEngine(EngineConfig{
		Query:  twitter.Query{FromUser: "alice", Since: "garbage"},
		Auth:   auth,
		Sink:   sink,
		Store:  checkpoint.NewStore(filepath.Join(dir, "state.json")),
		State:  state,
		Config: testConfig(),
		Logger: logger.NewNop(),
		Sleep:  instantSleep,
	})

	_, err = engine.Run(context.Background())
	if errs.TypeOf(err) != errs.TypeMalformedInput {
		t.Fatalf("error type = %v, want malformed_input", errs.TypeOf(err))
	}
	if auth.calls != 0 {
		t.Errorf("authenticate called %d times for a malformed query, want 0", auth.calls)
	}
}
