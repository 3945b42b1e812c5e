package ratelimit

import (
	"errors"
	"testing"
	"time"

	"xscraper/pkg/retry"
)

// recordingSleep captures requested durations without sleeping.
type recordingSleep struct {
	delays []time.Duration
	err    error
}

func (r *recordingSleep) fn(d time.Duration, stop retry.StopFunc, tick func(time.Duration)) error {
	r.delays = append(r.delays, d)
	return r.err
}

func TestPacerSkipsFirstFetch(t *testing.T) {
	rec := &recordingSleep{}
	p := NewPacer(3*time.Second, nil)
	p.sleep = rec.fn

	for i := 0; i < 4; i++ {
		if err := p.Wait(); err != nil {
			t.Fatalf("Wait() #%d error = %v", i, err)
		}
	}

	if len(rec.delays) != 3 {
		t.Fatalf("slept %d times, want 3 (first fetch undelayed)", len(rec.delays))
	}
	for i, d := range rec.delays {
		if d != 3*time.Second {
			t.Errorf("delay[%d] = %v, want 3s", i, d)
		}
	}
}

func TestPacerZeroDelayNeverSleeps(t *testing.T) {
	rec := &recordingSleep{}
	p := NewPacer(0, nil)
	p.sleep = rec.fn

	for i := 0; i < 3; i++ {
		if err := p.Wait(); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if len(rec.delays) != 0 {
		t.Errorf("slept %d times, want 0", len(rec.delays))
	}
}

func TestPacerPropagatesStop(t *testing.T) {
	rec := &recordingSleep{err: retry.ErrStopped}
	p := NewPacer(time.Second, func() bool { return true })
	p.sleep = rec.fn

	p.Wait() // first fetch, no sleep
	if err := p.Wait(); !errors.Is(err, retry.ErrStopped) {
		t.Errorf("Wait() error = %v, want ErrStopped", err)
	}
}

func TestBreakPolicyFiresEveryInterval(t *testing.T) {
	rec := &recordingSleep{}
	b := NewBreakPolicy(true, 5, 2, 4, nil)
	b.sleep = rec.fn

	var announced []time.Duration
	b.OnBreak = func(d time.Duration) { announced = append(announced, d) }

	for i := 0; i < 12; i++ {
		if err := b.Record(); err != nil {
			t.Fatalf("Record() #%d error = %v", i, err)
		}
	}

	// Breaks after records 5 and 10.
	if len(rec.delays) != 2 {
		t.Fatalf("took %d breaks over 12 records, want 2", len(rec.delays))
	}
	if len(announced) != 2 {
		t.Fatalf("OnBreak fired %d times, want 2", len(announced))
	}
	for i, d := range rec.delays {
		if d < 2*time.Minute || d >= 4*time.Minute {
			t.Errorf("break[%d] = %v, want within [2m, 4m)", i, d)
		}
		if announced[i] != d {
			t.Errorf("announced[%d] = %v, slept %v", i, announced[i], d)
		}
	}
}

func TestBreakPolicyDisabled(t *testing.T) {
	rec := &recordingSleep{}
	b := NewBreakPolicy(false, 1, 1, 2, nil)
	b.sleep = rec.fn

	for i := 0; i < 10; i++ {
		if err := b.Record(); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if len(rec.delays) != 0 {
		t.Errorf("disabled policy took %d breaks, want 0", len(rec.delays))
	}
}

func TestBreakPolicyEqualRangeUsesMinimum(t *testing.T) {
	rec := &recordingSleep{}
	b := NewBreakPolicy(true, 1, 5, 5, nil)
	b.sleep = rec.fn

	if err := b.Record(); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(rec.delays) != 1 || rec.delays[0] != 5*time.Minute {
		t.Errorf("delays = %v, want one 5m break", rec.delays)
	}
}

func TestBreakPolicyPropagatesStop(t *testing.T) {
	rec := &recordingSleep{err: retry.ErrStopped}
	b := NewBreakPolicy(true, 1, 1, 2, func() bool { return true })
	b.sleep = rec.fn

	if err := b.Record(); !errors.Is(err, retry.ErrStopped) {
		t.Errorf("Record() error = %v, want ErrStopped", err)
	}
}
