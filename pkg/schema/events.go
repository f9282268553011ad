// pkg/schema/events.go
package schema

// Severity classifies a status event for display and filtering.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// StatusEvent is one line of the batch status log. Events are append-only
// and delivered in the order the orchestrator produced them.
type StatusEvent struct {
	RunID      string   `json:"run_id,omitempty"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	HappenedAt int64    `json:"happened_at"`
}

// Progress reports how far through the document list a run is.
// Percent is expressed 0-100.
type Progress struct {
	RunID   string  `json:"run_id,omitempty"`
	Current int     `json:"current"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// ScriptRef names one automation script and whether it participates in the run.
// Order within the slice is the execution order.
type ScriptRef struct {
	Path    string `json:"path"`
	Enabled bool   `json:"enabled"`
}

// BatchRequest asks a worker to run the given scripts against the given
// documents, in the order listed.
type BatchRequest struct {
	RunID      string      `json:"run_id,omitempty"`
	EnginePath string      `json:"engine_path,omitempty"`
	Documents  []string    `json:"documents"`
	Scripts    []ScriptRef `json:"scripts"`
}

// BatchDone is the final summary published when a run finishes, whether or
// not every document succeeded.
type BatchDone struct {
	RunID      string        `json:"run_id"`
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	DurationMs int64         `json:"duration_ms"`
	StatusLog  []StatusEvent `json:"status_log,omitempty"`
	HappenedAt int64         `json:"happened_at"`
}
