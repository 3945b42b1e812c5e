package main

import (
	"context"
	"sync/atomic"
	"time"

	"xscraper/pkg/models"
	"xscraper/pkg/scraper"
	"xscraper/pkg/twitter"
	"xscraper/pkg/ui/tui"
)

// runScrapeDashboard runs a single-account scrape under the live
// dashboard instead of plain line output. The engine runs in a
// goroutine; quitting the dashboard requests a cooperative stop and
// waits for the checkpoint to land.
func runScrapeDashboard(query twitter.Query) (*scraper.Result, error) {
	target := cfg.Scrape.MaxTweets
	dash := tui.NewTUI(query.String(), target)

	var stopRequested atomic.Bool
	var done atomic.Bool

	hooks := scraper.Hooks{
		Stop: stopRequested.Load,
		OnProgress: func(count int) {
			dash.Progress(count)
			// Honor the dashboard pause key between records.
			for dash.IsPaused() && !stopRequested.Load() {
				time.Sleep(200 * time.Millisecond)
			}
		},
		OnRecord: func(tweet *models.Tweet) {
			dash.TweetCollected(tweet.ID, tweet.Username, tweet.Date, tweet.Text)
		},
		OnStatus: func(status string) {
			dash.Stage(status)
			dash.LogInfo("%s", status)
		},
		OnAuthExpired: func(reason string) {
			dash.LogError("Session cookies rejected: %s", reason)
		},
		OnNetworkTrouble: func(reason string) {
			dash.LogError("Network is unavailable: %s", reason)
		},
		// The dashboard has no stdin prompt; leaving the decision
		// unresolved lets the empty-page ceiling make the call.
		ResolvePrompt: func(consecutiveEmpty int) scraper.PromptDecision {
			dash.LogWarning("%d consecutive empty pages", consecutiveEmpty)
			return scraper.PromptUnresolved
		},
	}

	var res *scraper.Result
	var runErr error
	go func() {
		res, runErr = newOrchestrator(hooks).RunSingle(context.Background(), query)
		done.Store(true)
		dash.Stop()
	}()

	if err := dash.Start(); err != nil {
		return nil, err
	}

	// The dashboard exited first: the user quit. Ask the engine to
	// stop and wait for it to flush and checkpoint.
	if !done.Load() {
		stopRequested.Store(true)
		for !done.Load() {
			time.Sleep(100 * time.Millisecond)
		}
	}

	return res, runErr
}
