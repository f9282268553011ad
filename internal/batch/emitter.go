package batch

import (
	"time"

	"github.com/jiraiya78/lispbatch/pkg/schema"
)

// Emitter receives the orchestrator's status log and progress updates. The
// orchestrator calls it from its single worker goroutine, in strictly
// increasing document order; implementations decide how events reach the
// caller (collected in memory, printed, published to the bus).
type Emitter interface {
	Status(message string, severity schema.Severity)
	Progress(current, total int)
}

type noopEmitter struct{}

func (noopEmitter) Status(string, schema.Severity) {}
func (noopEmitter) Progress(int, int)              {}

// Collector is an Emitter that appends everything to in-memory slices. The
// CLI prints from it after the run and the worker attaches the collected log
// to the final summary event.
type Collector struct {
	RunID      string
	Events     []schema.StatusEvent
	Progresses []schema.Progress
}

func (c *Collector) Status(message string, severity schema.Severity) {
	c.Events = append(c.Events, schema.StatusEvent{
		RunID:      c.RunID,
		Message:    message,
		Severity:   severity,
		HappenedAt: time.Now().Unix(),
	})
}

func (c *Collector) Progress(current, total int) {
	c.Progresses = append(c.Progresses, schema.Progress{
		RunID:   c.RunID,
		Current: current,
		Total:   total,
		Percent: ProgressPercent(current, total),
	})
}

// ProgressPercent expresses current/total on a 0-100 scale. An empty batch
// is complete by definition.
func ProgressPercent(current, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(current) / float64(total) * 100
}

type multiEmitter []Emitter

// MultiEmitter fans each event out to every given emitter in order.
func MultiEmitter(ems ...Emitter) Emitter {
	return multiEmitter(ems)
}

func (m multiEmitter) Status(message string, severity schema.Severity) {
	for _, e := range m {
		e.Status(message, severity)
	}
}

func (m multiEmitter) Progress(current, total int) {
	for _, e := range m {
		e.Progress(current, total)
	}
}
