// Package retry provides the bounded fixed-delay retry wrapper applied to
// every fallible engine call: session start, document open, command send,
// document close.
package retry

import "time"

// SleepFunc waits for the given duration. Production code passes time.Sleep;
// tests substitute a recording no-op so the full lifecycle runs without
// wall-clock waits.
type SleepFunc func(time.Duration)

// Do invokes op up to attempts times, waiting delay between attempts.
// After a failure on any attempt except the last, onRetry (when non-nil) is
// called with the 1-based attempt number and the bound before the wait, so
// callers can surface a transient warning. A failure on the final attempt is
// returned unchanged; no onRetry call precedes it.
func Do(attempts int, delay time.Duration, sleep SleepFunc, onRetry func(attempt, bound int), op func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if onRetry != nil {
			onRetry(attempt, attempts)
		}
		sleep(delay)
	}
	return err
}
