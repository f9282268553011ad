package batch

import (
	"errors"
	"fmt"

	"github.com/jiraiya78/lispbatch/internal/engine"
	"github.com/jiraiya78/lispbatch/internal/retry"
	"github.com/jiraiya78/lispbatch/internal/scripts"
	"github.com/jiraiya78/lispbatch/pkg/schema"
)

// processDocument drives one document through open, script run, save, and
// close-with-verification. Closing is best confirmed effort: a document the
// engine refuses to confirm closed is recorded as a warning, never as a
// failure, so a stuck document cannot stall the rest of the batch.
func (r *Runner) processDocument(em Emitter, sess engine.Session, docPath string, reg *scripts.Registry) DocumentResult {
	res := DocumentResult{Path: docPath}

	doc, err := r.openDocument(em, sess, docPath)
	if err != nil {
		res.Err = fmt.Errorf("failed to open document after %d attempts: %w", r.Timings.OpenAttempts, err)
		res.Result = resultForError(err, ResultOpenFailed)
		return res
	}

	// The enabled set is evaluated here, once per document, so disabling a
	// script mid-run affects subsequent documents only.
	if err := r.runScripts(em, sess, docPath, reg.Enabled()); err != nil {
		res.Err = err
		res.Result = resultForError(err, ResultCommandFailed)
		return res
	}

	if err := r.sendCommand(em, sess, docPath, saveCommand); err != nil {
		res.Err = fmt.Errorf("save document: %w", err)
		res.Result = resultForError(err, ResultCommandFailed)
		return res
	}
	r.Timings.pause(r.Timings.SavePause)

	if err := r.sendCommand(em, sess, docPath, closeCommand); err != nil {
		res.Err = fmt.Errorf("close document: %w", err)
		res.Result = resultForError(err, ResultCommandFailed)
		return res
	}
	r.Timings.pause(r.Timings.ClosePause)

	if r.stillOpen(sess, docPath) {
		em.Status(fmt.Sprintf("Warning: Document did not close properly on first attempt for %s", docPath), schema.SeverityWarning)
		if err := r.sendCommand(em, sess, docPath, closeCommand); err != nil {
			res.Err = fmt.Errorf("close document: %w", err)
			res.Result = resultForError(err, ResultCommandFailed)
			return res
		}
		r.Timings.pause(r.Timings.ClosePause)
	}

	res.Result = ResultSuccess
	if !r.stillOpen(sess, docPath) {
		// Final safety close on the handle itself, saving changes. The
		// command-driven close can leave the automation object half
		// released; any error from this is suppressed and logged.
		if err := doc.Close(true); err != nil {
			em.Status(fmt.Sprintf("Suppressed final close error for %s: %v", docPath, err), schema.SeverityWarning)
			res.Result = ResultCloseIncomplete
		}
	} else {
		em.Status(fmt.Sprintf("Warning: Document still appears open for %s", docPath), schema.SeverityWarning)
		res.Result = ResultCloseIncomplete
	}
	return res
}

// openDocument opens docPath under the open retry policy, emitting a
// transient warning for each non-final failed attempt.
func (r *Runner) openDocument(em Emitter, sess engine.Session, docPath string) (engine.Document, error) {
	var doc engine.Document
	err := retry.Do(r.Timings.OpenAttempts, r.Timings.OpenDelay, r.Timings.Sleep,
		func(attempt, bound int) {
			em.Status(fmt.Sprintf("Retrying to open file %s... (Attempt %d/%d)", docPath, attempt, bound), schema.SeverityWarning)
		},
		func() error {
			d, openErr := sess.Open(docPath)
			if openErr != nil {
				return openErr
			}
			doc = d
			return nil
		})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// stillOpen asks the session whether the document remains enumerated among
// its open documents. An enumeration failure is treated as closed, matching
// the engine's behavior of dropping the collection when a document is gone.
func (r *Runner) stillOpen(sess engine.Session, docPath string) bool {
	open, err := sess.IsOpen(docPath)
	if err != nil {
		return false
	}
	return open
}

// resultForError tags the per-document outcome from the engine error kind,
// falling back to the stage-specific result.
func resultForError(err error, fallback Result) Result {
	var ee *engine.Error
	if errors.As(err, &ee) && ee.Kind == engine.Disconnected {
		return ResultEngineDisconnected
	}
	return fallback
}
