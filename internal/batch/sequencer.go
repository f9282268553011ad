package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jiraiya78/lispbatch/internal/engine"
	"github.com/jiraiya78/lispbatch/internal/retry"
	"github.com/jiraiya78/lispbatch/internal/scripts"
	"github.com/jiraiya78/lispbatch/pkg/schema"
)

// Engine command strings. The engine's command language wants forward
// slashes in string literals, and every script is expected to register its
// entry point under the fixed name below; that is an external contract the
// sequencer does not validate.
const (
	saveCommand   = "(command \"_.QSAVE\")\n"
	closeCommand  = "(command \"_.CLOSE\")\n"
	invokeCommand = "(c:MyLispFunction)\n"
)

func loadCommand(scriptPath string) string {
	return fmt.Sprintf("(load \"%s\")\n", strings.ReplaceAll(scriptPath, `\`, "/"))
}

// runScripts applies the enabled scripts in order to the document currently
// open in the session. A command failure after retry exhaustion propagates
// and aborts the remaining scripts for this document; scripts that already
// ran are not rolled back.
func (r *Runner) runScripts(em Emitter, sess engine.Session, docPath string, enabled []scripts.Script) error {
	total := len(enabled)
	for i, s := range enabled {
		if err := r.sendCommand(em, sess, docPath, loadCommand(s.Path)); err != nil {
			return fmt.Errorf("load script %s: %w", s.Name(), err)
		}
		r.Timings.pause(r.Timings.ScriptSettle)

		if err := r.sendCommand(em, sess, docPath, invokeCommand); err != nil {
			return fmt.Errorf("invoke script %s: %w", s.Name(), err)
		}
		r.Timings.pause(r.Timings.ScriptSettle)

		em.Status(fmt.Sprintf("%s completed for file %s (Script %d of %d)",
			s.Name(), filepath.Base(docPath), i+1, total), schema.SeveritySuccess)
	}
	return nil
}

// sendCommand issues one engine command under the command retry policy,
// surfacing each non-final failed attempt as a transient warning.
func (r *Runner) sendCommand(em Emitter, sess engine.Session, docPath, cmd string) error {
	return retry.Do(r.Timings.CommandAttempts, r.Timings.CommandDelay, r.Timings.Sleep,
		func(attempt, bound int) {
			em.Status(fmt.Sprintf("Retrying command for %s... (Attempt %d/%d)",
				filepath.Base(docPath), attempt, bound), schema.SeverityWarning)
		},
		func() error { return sess.SendCommand(cmd) })
}
