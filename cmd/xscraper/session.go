package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"xscraper/pkg/auth"
	"xscraper/pkg/scraper"
	"xscraper/pkg/twitter"
	"xscraper/pkg/ui"
)

// newSessionHooks wires the caller-facing controls for an interactive
// terminal run: Ctrl-C requests a cooperative stop, progress goes to
// stdout, and the credential-refresh and empty-page prompts read from
// stdin.
func newSessionHooks() (scraper.Hooks, func()) {
	var stopRequested atomic.Bool

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nStop requested, finishing current record and saving...")
		stopRequested.Store(true)
	}()
	cleanup := func() {
		signal.Stop(sigCh)
		close(sigCh)
	}

	stdin := bufio.NewReader(os.Stdin)
	notifier := ui.NewNotifier()
	tracker := ui.NewStatusTracker(cfg.Scrape.MaxTweets)

	hooks := scraper.Hooks{
		Stop: stopRequested.Load,
		OnProgress: func(count int) {
			tracker.SetCollectedCount(count)
			fmt.Printf("\r%s %s", ui.Green("[COLLECTED]"), tracker.GetProgressBar())
		},
		OnStatus: func(status string) {
			fmt.Printf("\n%s\n", status)
		},
		OnAuthExpired: func(reason string) {
			notifier.SendError("Session expired", reason)
		},
		AwaitCredentialRefresh: func() error {
			fmt.Print("Update your cookies from a fresh browser login, then press Enter to continue: ")
			if _, err := stdin.ReadString('\n'); err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			return nil
		},
		OnNetworkTrouble: func(reason string) {
			notifier.SendError("Network unavailable", reason)
		},
		ResolvePrompt: func(consecutiveEmpty int) scraper.PromptDecision {
			fmt.Printf("\n%d pages in a row produced no new tweets. Keep going? [y/N]: ", consecutiveEmpty)
			answer, err := stdin.ReadString('\n')
			if err != nil {
				return scraper.PromptUnresolved
			}
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
				return scraper.PromptContinue
			}
			return scraper.PromptStop
		},
	}

	return hooks, cleanup
}

// newOrchestrator builds an orchestrator whose authenticator prefers
// the cookies.json file and falls back to the credential store.
func newOrchestrator(hooks scraper.Hooks) *scraper.Orchestrator {
	return scraper.New(cfg, newAuthenticator(), hooks)
}

func newAuthenticator() twitter.Authenticator {
	if _, err := os.Stat(cfg.Auth.CookiesFile); err == nil {
		return twitter.NewHTTPAuthenticator(cfg.Auth.CookiesFile)
	}

	if manager, err := auth.NewManager(); err == nil {
		if session, err := manager.RetrieveDefault(); err == nil {
			return twitter.NewCookieAuthenticator(session.Cookies())
		}
	}

	// Nothing stored either; let the file path produce the error.
	return twitter.NewHTTPAuthenticator(cfg.Auth.CookiesFile)
}

func printResult(res *scraper.Result) {
	fmt.Printf("\n\nSession %s (%s)\n", strings.ToLower(string(res.State)), res.Reason)
	ui.PrintInfo("  Tweets collected", fmt.Sprintf("%d", res.Accepted))
	ui.PrintInfo("  Output file", res.OutputPath)
	if res.OldestTweet != "" || res.NewestTweet != "" {
		ui.PrintInfo("  Date range", res.OldestTweet+" .. "+res.NewestTweet)
	}
	if res.HasMore {
		ui.PrintWarning("  Run 'xscraper resume' to continue this session.")
	}
}

func printBatchReport(report *scraper.BatchReport) {
	fmt.Printf("\n\nBatch finished: %d tweets across %d accounts\n", report.TotalAccepted, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		if outcome.Err != "" {
			fmt.Printf("  @%-20s FAILED: %s\n", outcome.Username, outcome.Err)
			continue
		}
		fmt.Printf("  @%-20s %5d tweets  %s\n", outcome.Username, outcome.Accepted, outcome.OutputPath)
	}
	if !report.Completed {
		fmt.Println("  Batch incomplete. Run 'xscraper resume' to continue.")
	}
}
