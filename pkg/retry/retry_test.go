package retry

import (
	"errors"
	"testing"
	"time"

	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
)

// instantSleep records requested delays without sleeping.
func instantSleep(recorded *[]time.Duration) SleepFunc {
	return func(d time.Duration, stop StopFunc, tick func(time.Duration)) error {
		if stop != nil && stop() {
			return ErrStopped
		}
		*recorded = append(*recorded, d)
		return nil
	}
}

func newTestPolicy(recorded *[]time.Duration) *Policy {
	p := NewPolicy(logger.NewNop())
	p.Sleep = instantSleep(recorded)
	return p
}

func TestDelayFor(t *testing.T) {
	table := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 3 * time.Second},
		{4, 3 * time.Second}, // capped at the last entry
		{99, 3 * time.Second},
	}

	for _, tc := range tests {
		if got := DelayFor(table, tc.attempt); got != tc.expected {
			t.Errorf("DelayFor(attempt=%d) = %v, want %v", tc.attempt, got, tc.expected)
		}
	}

	if got := DelayFor(nil, 1); got != 0 {
		t.Errorf("empty table should yield 0, got %v", got)
	}
}

func TestNetworkRetryCeiling(t *testing.T) {
	var delays []time.Duration
	p := newTestPolicy(&delays)

	attempts := 0
	err := p.Do("search", func() error {
		attempts++
		return errors.New("connection reset by peer")
	})

	if attempts != 5 {
		t.Errorf("expected exactly 5 attempts, got %d", attempts)
	}
	if errs.TypeOf(err) != errs.TypeNetwork {
		t.Errorf("expected network classification, got %v", err)
	}

	expected := []time.Duration{
		30 * time.Second, 60 * time.Second, 120 * time.Second,
		300 * time.Second, 600 * time.Second,
	}
	if len(delays) != len(expected) {
		t.Fatalf("expected %d delays, got %d (%v)", len(expected), len(delays), delays)
	}
	for i := range expected {
		if delays[i] != expected[i] {
			t.Errorf("delay %d: expected %v, got %v", i, expected[i], delays[i])
		}
	}
}

func TestNetworkRecoveryResetsNothingMidway(t *testing.T) {
	var delays []time.Duration
	p := newTestPolicy(&delays)

	attempts := 0
	err := p.Do("next page", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("request timed out")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if len(delays) != 2 {
		t.Errorf("expected 2 delays before success, got %v", delays)
	}
}

func TestNetworkTroubleNotification(t *testing.T) {
	var delays []time.Duration
	p := newTestPolicy(&delays)

	notified := ""
	p.OnNetworkTrouble = func(reason string) { notified = reason }

	_ = p.Do("search", func() error {
		return errors.New("network is down")
	})

	if notified == "" {
		t.Error("expected network trouble notification after budget exhaustion")
	}
}

func TestRateLimitDoesNotConsumeAttempts(t *testing.T) {
	var delays []time.Duration
	p := newTestPolicy(&delays)

	attempts := 0
	err := p.Do("search", func() error {
		attempts++
		switch {
		case attempts <= 2:
			return errs.New(errs.TypeRateLimited, "429 too many requests")
		case attempts <= 7:
			return errors.New("connection refused")
		default:
			return nil
		}
	})

	// Two rate-limit waits plus the full 5-attempt network budget:
	// the rate limit waits must not have eaten into it.
	if errs.TypeOf(err) != errs.TypeNetwork {
		t.Errorf("expected network exhaustion, got %v", err)
	}
	if attempts != 7 {
		t.Errorf("expected 7 attempts (2 rate-limited + 5 network), got %d", attempts)
	}
	if delays[0] != RateLimitWait || delays[1] != RateLimitWait {
		t.Errorf("expected two rate-limit waits first, got %v", delays[:2])
	}
}

func TestPaginationGlitchExhaustion(t *testing.T) {
	var delays []time.Duration
	p := newTestPolicy(&delays)

	attempts := 0
	err := p.Do("next page", func() error {
		attempts++
		return errs.New(errs.TypePagination, "tweet not found")
	})

	if attempts != MaxPaginationAttempts {
		t.Errorf("expected %d attempts, got %d", MaxPaginationAttempts, attempts)
	}
	if errs.TypeOf(err) != errs.TypePagination {
		t.Errorf("expected pagination classification so caller can treat as end-of-results, got %v", err)
	}
	for _, d := range delays {
		if d != PaginationDelay {
			t.Errorf("expected fixed %v pagination delay, got %v", PaginationDelay, d)
		}
	}
}

func TestAuthExpiredEscalatesWithoutRefreshHook(t *testing.T) {
	var delays []time.Duration
	p := newTestPolicy(&delays)

	notified := ""
	p.OnAuthExpired = func(reason string) { notified = reason }

	attempts := 0
	err := p.Do("authenticate", func() error {
		attempts++
		return errors.New("401 unauthorized")
	})

	if attempts != 1 {
		t.Errorf("auth failures must not auto-retry, got %d attempts", attempts)
	}
	if errs.TypeOf(err) != errs.TypeAuthExpired {
		t.Errorf("expected auth classification, got %v", err)
	}
	if notified == "" {
		t.Error("expected auth-expired notification")
	}
}

func TestAuthExpiredRetriesAfterRefresh(t *testing.T) {
	var delays []time.Duration
	p := newTestPolicy(&delays)

	refreshed := false
	p.AwaitCredentialRefresh = func() error {
		refreshed = true
		return nil
	}

	attempts := 0
	err := p.Do("next page", func() error {
		attempts++
		if attempts == 1 {
			return errors.New("session expired")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected success after refresh, got %v", err)
	}
	if !refreshed {
		t.Error("expected credential refresh to be awaited")
	}
	if attempts != 2 {
		t.Errorf("expected same operation re-attempted once, got %d attempts", attempts)
	}
}

func TestUnknownErrorAborts(t *testing.T) {
	var delays []time.Duration
	p := newTestPolicy(&delays)

	attempts := 0
	err := p.Do("search", func() error {
		attempts++
		return errors.New("something inexplicable")
	})

	if attempts != 1 {
		t.Errorf("unknown errors must abort immediately, got %d attempts", attempts)
	}
	if errs.TypeOf(err) != errs.TypeUnknown {
		t.Errorf("expected unknown classification, got %v", err)
	}
	if len(delays) != 0 {
		t.Errorf("expected no delays, got %v", delays)
	}
}

func TestStopShortCircuits(t *testing.T) {
	var delays []time.Duration
	p := newTestPolicy(&delays)
	p.Stop = func() bool { return true }

	attempts := 0
	err := p.Do("search", func() error {
		attempts++
		return nil
	})

	if !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
	if attempts != 0 {
		t.Errorf("expected no attempts after stop, got %d", attempts)
	}
}

func TestSleepInterruptible(t *testing.T) {
	stopAfter := time.Now().Add(50 * time.Millisecond)
	stop := func() bool { return time.Now().After(stopAfter) }

	start := time.Now()
	err := Sleep(10*time.Second, stop, nil)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
	if elapsed > 3*time.Second {
		t.Errorf("stop observed too slowly: %v", elapsed)
	}
}

func TestSleepCompletes(t *testing.T) {
	if err := Sleep(20*time.Millisecond, nil, nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
