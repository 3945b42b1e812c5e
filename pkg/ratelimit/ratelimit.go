// Package ratelimit paces the scrape so it looks like a patient human
// rather than a crawler. Two mechanisms stack: a fixed delay between
// page fetches, and optional longer breaks after every N collected
// records. All waits go through the interruptible sleeper, so a stop
// request takes effect within a second even mid-break.
package ratelimit

import (
	"math/rand"
	"time"

	"xscraper/pkg/retry"
)

// Pacer inserts a fixed delay between consecutive page fetches. The
// first fetch is never delayed.
type Pacer struct {
	delay   time.Duration
	sleep   retry.SleepFunc
	stop    retry.StopFunc
	started bool
}

// NewPacer creates a pacer with the given inter-fetch delay. stop may
// be nil.
func NewPacer(delay time.Duration, stop retry.StopFunc) *Pacer {
	return &Pacer{
		delay: delay,
		sleep: retry.Sleep,
		stop:  stop,
	}
}

// Wait blocks for the configured delay, except before the very first
// fetch. Returns retry.ErrStopped if a stop arrives during the wait.
func (p *Pacer) Wait() error {
	if !p.started {
		p.started = true
		return nil
	}
	if p.delay <= 0 {
		return nil
	}
	return p.sleep(p.delay, p.stop, nil)
}

// BreakPolicy takes a longer cooldown after every interval of accepted
// records, with the duration drawn uniformly from a configured range of
// minutes.
type BreakPolicy struct {
	enabled    bool
	interval   int
	minMinutes int
	maxMinutes int

	sleep retry.SleepFunc
	stop  retry.StopFunc
	rand  *rand.Rand

	// OnBreak is notified when a break starts, with its duration.
	OnBreak func(d time.Duration)
	// OnTick is notified each second during a break with the remaining
	// time, for progress display.
	OnTick func(remaining time.Duration)

	sinceBreak int
}

// NewBreakPolicy creates a break policy. interval is the number of
// accepted records between breaks; a disabled policy never breaks.
func NewBreakPolicy(enabled bool, interval, minMinutes, maxMinutes int, stop retry.StopFunc) *BreakPolicy {
	return &BreakPolicy{
		enabled:    enabled,
		interval:   interval,
		minMinutes: minMinutes,
		maxMinutes: maxMinutes,
		sleep:      retry.Sleep,
		stop:       stop,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Record counts one accepted record and takes a cooldown break when the
// interval is reached. Returns retry.ErrStopped if a stop arrives
// during the break.
func (b *BreakPolicy) Record() error {
	if !b.enabled || b.interval <= 0 {
		return nil
	}

	b.sinceBreak++
	if b.sinceBreak < b.interval {
		return nil
	}
	b.sinceBreak = 0

	d := b.duration()
	if b.OnBreak != nil {
		b.OnBreak(d)
	}
	return b.sleep(d, b.stop, b.OnTick)
}

func (b *BreakPolicy) duration() time.Duration {
	minD := time.Duration(b.minMinutes) * time.Minute
	maxD := time.Duration(b.maxMinutes) * time.Minute
	if maxD <= minD {
		return minD
	}
	return minD + time.Duration(b.rand.Int63n(int64(maxD-minD)))
}
