//go:build !windows

package engine

import "errors"

type acadLauncher struct{}

// NewAutoCAD returns a Launcher for the AutoCAD automation object. The COM
// surface only exists on Windows; elsewhere Start reports the engine as
// unreachable so callers fail fast before touching any document.
func NewAutoCAD() Launcher { return acadLauncher{} }

func (acadLauncher) Start(exePath string) (Session, error) {
	return nil, &Error{Kind: Unreachable, Op: OpStart, Err: errors.New("engine automation requires windows")}
}
