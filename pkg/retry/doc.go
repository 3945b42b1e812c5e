// Package retry implements the failure-handling policy for upstream
// operations: classify the failure, then retry, escalate, or abort.
//
// Behavior per failure class:
//   - auth_expired: never retried automatically. The caller is notified
//     through a dedicated hook and, once it confirms refreshed
//     credentials, the same operation is re-attempted.
//   - network: up to 5 attempts with a progressive delay table
//     (30s, 60s, 120s, 300s, 600s), then escalated.
//   - rate_limited: one long 15-minute wait with a progress ping every
//     30 seconds, then the operation resumes. Does not consume the
//     network attempt budget.
//   - pagination_glitch: up to 3 attempts with a short fixed 5s delay;
//     exhaustion is reported so the caller can treat it as
//     end-of-results rather than a hard failure.
//   - unknown: aborted immediately.
//
// Every wait is interruptible: the stop predicate is polled at least
// once per second and a pending wait unwinds with ErrStopped.
//
// Basic usage:
//
//	policy := retry.NewPolicy(log)
//	policy.Stop = session.StopRequested
//	policy.Notify = session.Status
//	err := policy.Do("next page", func() error {
//		return page.Advance()
//	})
package retry
