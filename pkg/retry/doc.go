// Package retry provides the policy resolution, retry-decision and backoff
// machinery behind the fetch client.
//
// A Policy is resolved once per call from environment-derived defaults and
// explicit options, then owned by that call's retry loop until it resolves
// or fails. Resolution validates every field before any network I/O, clamps
// the time budget to an external execution deadline when one is known, and
// keeps the per-attempt socket timeout small enough that at least one retry
// window fits inside the budget.
//
// Basic usage:
//
//	policy, err := retry.Resolve(cfg.Retry,
//		retry.WithMaxDuration(10*time.Second),
//		retry.WithBackoff(3),
//	)
//	if err != nil {
//		return err
//	}
//	for policy.Remaining() > 0 {
//		wait := policy.NextWait()
//		resp, err := doAttempt()
//		if !retry.ShouldRetry(ctx, policy, err, resp, wait) {
//			return ...
//		}
//		retry.Wait(ctx, wait)
//		policy.Advance()
//	}
//
// The default predicates retry responses with status >= 500 and transport
// or timeout errors; both can be replaced per call.
package retry
