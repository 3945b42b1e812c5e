package retry

import (
	"fmt"
	"time"

	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
)

// Per-class retry parameters. These mirror the behavior of long manual
// scraping sessions against a throttling upstream: patient on network
// loss, very patient on rate limits, quick to give up on pagination
// hiccups.
var NetworkDelays = []time.Duration{
	30 * time.Second,
	60 * time.Second,
	120 * time.Second,
	300 * time.Second,
	600 * time.Second,
}

const (
	MaxNetworkAttempts    = 5
	RateLimitWait         = 15 * time.Minute
	RateLimitTickInterval = 30 * time.Second
	MaxPaginationAttempts = 3
	PaginationDelay       = 5 * time.Second
)

// DelayFor returns the table entry for a 1-based attempt, holding at
// the last entry once the table is exhausted.
func DelayFor(table []time.Duration, attempt int) time.Duration {
	if len(table) == 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	if attempt > len(table) {
		attempt = len(table)
	}
	return table[attempt-1]
}

// Policy decides, per failure class, whether an operation is retried,
// escalated to the caller, or aborted. One Policy serves a whole
// session; the attempt counters live per Do call.
type Policy struct {
	// Stop is polled before every attempt and once per second during
	// any wait.
	Stop StopFunc

	// Notify receives human-readable status lines (retry countdowns,
	// rate limit waits). Optional.
	Notify func(msg string)

	// OnAuthExpired is the credential-refresh notification channel
	// hookup. Fired once per auth failure with the failure message.
	OnAuthExpired func(reason string)

	// AwaitCredentialRefresh blocks until the caller confirms updated
	// credentials, after which the failed operation is re-attempted.
	// When nil, auth failures escalate immediately.
	AwaitCredentialRefresh func() error

	// OnNetworkTrouble is the network-degradation notification
	// channel hookup, fired when the network attempt budget runs out.
	OnNetworkTrouble func(reason string)

	// Sleep defaults to the interruptible Sleep in this package.
	Sleep SleepFunc

	// MaxNetworkAttempts and NetworkDelays default to the package
	// values above.
	MaxNetworkAttempts int
	NetworkDelays      []time.Duration

	Logger logger.Logger
}

// NewPolicy returns a policy with package defaults.
func NewPolicy(log logger.Logger) *Policy {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Policy{
		Sleep:              Sleep,
		MaxNetworkAttempts: MaxNetworkAttempts,
		NetworkDelays:      NetworkDelays,
		Logger:             log,
	}
}

func (p *Policy) sleep(d time.Duration, tick func(time.Duration)) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	return sleep(d, p.Stop, tick)
}

func (p *Policy) notify(format string, args ...interface{}) {
	if p.Notify != nil {
		p.Notify(fmt.Sprintf(format, args...))
	}
}

func (p *Policy) stopped() bool {
	return p.Stop != nil && p.Stop()
}

// Do executes op under the per-class retry rules. It returns nil on
// success, ErrStopped on cancellation, and a classified error once a
// class's budget is exhausted or the class is terminal. A returned
// pagination_glitch error means the budget ran out and the caller
// should treat the operation as end-of-results.
func (p *Policy) Do(name string, op func() error) error {
	maxNetwork := p.MaxNetworkAttempts
	if maxNetwork <= 0 {
		maxNetwork = MaxNetworkAttempts
	}
	delays := p.NetworkDelays
	if len(delays) == 0 {
		delays = NetworkDelays
	}

	networkAttempts := 0
	paginationAttempts := 0

	for {
		if p.stopped() {
			return ErrStopped
		}

		err := op()
		if err == nil {
			return nil
		}

		class := errs.TypeOf(err)
		p.Logger.DebugWithFields("operation failed", map[string]interface{}{
			"operation": name,
			"class":     string(class),
			"error":     err.Error(),
		})

		switch class {
		case errs.TypeAuthExpired:
			if p.OnAuthExpired != nil {
				p.OnAuthExpired(err.Error())
			}
			if p.AwaitCredentialRefresh == nil {
				return errs.Wrap(errs.TypeAuthExpired, name+" failed", err)
			}
			p.notify("Credentials expired. Waiting for refresh...")
			if refreshErr := p.AwaitCredentialRefresh(); refreshErr != nil {
				return errs.Wrap(errs.TypeAuthExpired, "credential refresh failed", refreshErr)
			}
			p.notify("Credentials updated. Retrying %s...", name)
			// Same operation, attempt budgets untouched.

		case errs.TypeRateLimited:
			logger.LogRateLimit(name, RateLimitWait)
			p.notify("Rate limit hit. Waiting %s...", RateLimitWait)
			tick := func(remaining time.Duration) {
				if int(remaining.Seconds())%int(RateLimitTickInterval.Seconds()) == 0 {
					p.notify("Rate limit: resuming in %s", remaining.Round(time.Second))
				}
			}
			if sleepErr := p.sleep(RateLimitWait, tick); sleepErr != nil {
				return sleepErr
			}
			// Rate limit waits do not consume the attempt budget.

		case errs.TypeNetwork:
			networkAttempts++
			delay := DelayFor(delays, networkAttempts)
			p.notify("Network error. Retrying in %s... (%d/%d)", delay, networkAttempts, maxNetwork)
			p.Logger.WarnWithFields("network error, backing off", map[string]interface{}{
				"operation": name,
				"attempt":   networkAttempts,
				"delay":     delay,
			})
			if sleepErr := p.sleep(delay, nil); sleepErr != nil {
				return sleepErr
			}
			if networkAttempts >= maxNetwork {
				reason := fmt.Sprintf("%s failed after %d network attempts", name, networkAttempts)
				if p.OnNetworkTrouble != nil {
					p.OnNetworkTrouble(reason)
				}
				return errs.Wrap(errs.TypeNetwork, reason, err)
			}

		case errs.TypePagination:
			paginationAttempts++
			if paginationAttempts >= MaxPaginationAttempts {
				return errs.Wrap(errs.TypePagination,
					fmt.Sprintf("%s glitched %d times", name, paginationAttempts), err)
			}
			p.notify("Page fetch glitch. Retrying in %s...", PaginationDelay)
			if sleepErr := p.sleep(PaginationDelay, nil); sleepErr != nil {
				return sleepErr
			}

		default:
			p.Logger.ErrorWithFields("unrecoverable error", map[string]interface{}{
				"operation": name,
				"error":     err.Error(),
			})
			return errs.Wrap(errs.TypeUnknown, name+" failed", err)
		}
	}
}
