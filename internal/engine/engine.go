// Package engine defines the boundary to the external CAD automation engine.
// Everything behind Session is a coarse synchronous remote-object call that
// can fail at any time; the error kind is decided here, where the raw engine
// signal is received, so callers never have to pattern-match message text.
package engine

import "fmt"

// Kind tags the failure categories an engine call can signal.
type Kind int

const (
	// Unreachable means the engine could not be activated at all: the
	// configured executable is missing or the automation object could not
	// be dispatched. Fatal to a batch run.
	Unreachable Kind = iota
	// Disconnected means an established session dropped mid-call, which in
	// practice means the engine crashed.
	Disconnected
	// OperationFailed covers every other per-operation failure; the detail
	// is preserved in the wrapped error.
	OperationFailed
)

func (k Kind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case Disconnected:
		return "disconnected"
	case OperationFailed:
		return "operation failed"
	default:
		return "unknown"
	}
}

// Operation names used in Error.Op.
const (
	OpStart     = "start"
	OpOpen      = "open"
	OpSend      = "send"
	OpEnumerate = "enumerate"
	OpClose     = "close"
	OpQuit      = "quit"
)

// Error is the tagged error variant every engine operation returns.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Document is a handle to one open document inside a session. It is valid
// from a successful Open until the document is confirmed closed. A session
// holds at most one open document at a time.
type Document interface {
	// FullName reports the absolute path the engine has the document open under.
	FullName() string
	// Close closes the document directly through the handle, optionally
	// saving pending changes. Used as the forced fallback when the close
	// command did not take.
	Close(saveChanges bool) error
}

// Session is a live connection to one running engine instance. All calls are
// synchronous. A session is created once per batch run and is invalid after
// Quit. Every call, Quit included, must come from the goroutine that started
// the session: the Windows implementation pins that goroutine to its OS
// thread because the COM apartment is thread-bound.
type Session interface {
	// Open opens the document at path and returns its handle.
	Open(path string) (Document, error)
	// SendCommand issues a text command to the active document.
	SendCommand(cmd string) error
	// IsOpen reports whether path is still enumerated among the session's
	// open documents, compared case-insensitively by full path.
	IsOpen(path string) (bool, error)
	// Quit terminates the engine instance. Best-effort at every call site.
	Quit() error
}

// Launcher starts engine sessions.
type Launcher interface {
	// Start launches the engine from exePath with its UI suppressed. It
	// fails immediately, without retry, when exePath does not exist.
	Start(exePath string) (Session, error)
}
