package retry

import (
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	slept := 0
	retries := 0

	err := Do(5, time.Second, func(time.Duration) { slept++ }, func(int, int) { retries++ }, func() error {
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if slept != 0 || retries != 0 {
		t.Fatalf("expected no sleeps or retries on first-attempt success, got %d sleeps %d retries", slept, retries)
	}
}

func TestDoSucceedsOnLastAttempt(t *testing.T) {
	const bound = 5
	calls := 0
	var notified []int
	var delays []time.Duration

	err := Do(bound, 4*time.Second,
		func(d time.Duration) { delays = append(delays, d) },
		func(attempt, b int) {
			if b != bound {
				t.Fatalf("onRetry bound = %d, want %d", b, bound)
			}
			notified = append(notified, attempt)
		},
		func() error {
			calls++
			if calls < bound {
				return errors.New("transient")
			}
			return nil
		})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != bound {
		t.Fatalf("op called %d times, want %d", calls, bound)
	}
	// B-1 warnings for an operation that fails on attempts 1..B-1.
	if len(notified) != bound-1 {
		t.Fatalf("got %d retry notifications, want %d", len(notified), bound-1)
	}
	for i, attempt := range notified {
		if attempt != i+1 {
			t.Fatalf("notification %d carried attempt %d", i, attempt)
		}
	}
	if len(delays) != bound-1 {
		t.Fatalf("slept %d times, want %d", len(delays), bound-1)
	}
	for _, d := range delays {
		if d != 4*time.Second {
			t.Fatalf("unexpected delay %v", d)
		}
	}
}

func TestDoExhaustionPropagatesLastError(t *testing.T) {
	const bound = 3
	boom := errors.New("boom")
	calls := 0
	retries := 0

	err := Do(bound, time.Second, func(time.Duration) {}, func(int, int) { retries++ }, func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected propagated error, got %v", err)
	}
	if calls != bound {
		t.Fatalf("op called %d times, want %d", calls, bound)
	}
	// No warning before the final attempt: B-1, not B.
	if retries != bound-1 {
		t.Fatalf("got %d retry notifications, want %d", retries, bound-1)
	}
}

func TestDoClampsAttemptBound(t *testing.T) {
	calls := 0
	err := Do(0, 0, func(time.Duration) {}, nil, func() error {
		calls++
		return errors.New("nope")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("op called %d times, want 1", calls)
	}
}
