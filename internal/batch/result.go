package batch

// Result is the terminal outcome for one document.
type Result string

const (
	ResultSuccess Result = "success"
	// ResultCloseIncomplete means the scripts ran and the save was issued
	// but the engine never confirmed the document closed. Warning-only: it
	// still counts toward the success tally.
	ResultCloseIncomplete    Result = "close_incomplete"
	ResultOpenFailed         Result = "open_failed"
	ResultCommandFailed      Result = "command_failed"
	ResultEngineDisconnected Result = "engine_disconnected"
)

// Succeeded reports whether the outcome counts toward the success tally.
func (r Result) Succeeded() bool {
	return r == ResultSuccess || r == ResultCloseIncomplete
}

// DocumentResult records the outcome for one processed document.
type DocumentResult struct {
	Path   string
	Result Result
	Err    error
}

// Summary aggregates a batch run. Documents holds per-document outcomes in
// processing order; on a fatal initialization failure it stays empty.
type Summary struct {
	Total     int
	Succeeded int
	Documents []DocumentResult
}

// Failed is the number of documents that did not reach a success outcome.
func (s Summary) Failed() int { return s.Total - s.Succeeded }
