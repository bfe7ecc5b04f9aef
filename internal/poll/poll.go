// Package poll retries an operation until its result is acceptable or a
// deadline passes.
package poll

import "time"

// DefaultInterval is the retry interval used when a Spec leaves it unset.
const DefaultInterval = 50 * time.Millisecond

// Spec configures a single Perform call.
type Spec[T any] struct {
	// Timeout bounds the total time spent polling. Zero still allows one
	// attempt.
	Timeout time.Duration
	// Interval is the pause between attempts. Zero selects DefaultInterval.
	// Callers are expected to keep it at or below Timeout.
	Interval time.Duration
	// Matched decides whether a result ends the poll. Nil accepts anything.
	Matched func(T) bool
	// Expired produces the value returned once the deadline passes. Nil
	// yields the zero value.
	Expired func() T
}

// sleep is swapped in tests.
var sleep = time.Sleep

// Perform calls op until Matched accepts its result or Timeout elapses, in
// which case it returns Expired(). Elapsed time is measured on the monotonic
// clock from the start of the call.
//
// An error from op stops polling immediately and is returned as is; errors are
// never retried.
func Perform[T any](op func() (T, error), spec Spec[T]) (T, error) {
	start := time.Now()

	timeout := spec.Timeout
	if timeout < 0 {
		timeout = 0
	}
	interval := spec.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	for {
		v, err := op()
		if err != nil {
			var zero T
			return zero, err
		}
		if spec.Matched == nil || spec.Matched(v) {
			return v, nil
		}

		elapsed := time.Since(start)
		if elapsed >= timeout {
			if spec.Expired == nil {
				var zero T
				return zero, nil
			}
			return spec.Expired(), nil
		}

		wait := interval
		if remaining := timeout - elapsed; remaining < wait {
			wait = remaining
		}
		sleep(wait)
	}
}

// Until polls cond until it reports true or timeout elapses. It returns
// whether the condition was met.
func Until(cond func() (bool, error), timeout, interval time.Duration) (bool, error) {
	return Perform(cond, Spec[bool]{
		Timeout:  timeout,
		Interval: interval,
		Matched:  func(ok bool) bool { return ok },
	})
}
