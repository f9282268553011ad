package batch

import (
	"time"

	"github.com/jiraiya78/lispbatch/internal/retry"
)

// Timings bundles every retry bound, retry delay, and settle pause the
// orchestrator uses. The engine gives no completion signal for its commands,
// so settle pauses approximate completion time. Sleep is injectable so tests
// drive the full lifecycle without wall-clock waits.
type Timings struct {
	// Document open: the engine is slowest here, so the bound and delay
	// are larger than for plain commands.
	OpenAttempts int
	OpenDelay    time.Duration

	// Command send, shared by script load, invoke, save, and close.
	CommandAttempts int
	CommandDelay    time.Duration

	// Settle pauses after specific commands.
	ScriptSettle time.Duration
	SavePause    time.Duration
	ClosePause   time.Duration

	Sleep retry.SleepFunc
}

// DefaultTimings returns the production constants.
func DefaultTimings() Timings {
	return Timings{
		OpenAttempts:    5,
		OpenDelay:       4 * time.Second,
		CommandAttempts: 3,
		CommandDelay:    2 * time.Second,
		ScriptSettle:    time.Second,
		SavePause:       2 * time.Second,
		ClosePause:      3 * time.Second,
		Sleep:           time.Sleep,
	}
}

func (t Timings) pause(d time.Duration) {
	if d <= 0 {
		return
	}
	if t.Sleep != nil {
		t.Sleep(d)
		return
	}
	time.Sleep(d)
}
