// Package batch contains the document processing orchestrator: for each
// input document it drives the external engine through open, script run,
// save, and close, with bounded retries at every step, and reports status
// and progress to the caller as it goes.
package batch

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jiraiya78/lispbatch/internal/engine"
	"github.com/jiraiya78/lispbatch/internal/scripts"
	"github.com/jiraiya78/lispbatch/pkg/schema"
)

// Runner executes batch runs. One engine session is created per run and
// terminated at the end regardless of outcome; documents are processed
// strictly in input order on the calling goroutine, because the session is a
// singly-owned, non-reentrant resource.
type Runner struct {
	Launcher engine.Launcher
	Emitter  Emitter
	Timings  Timings
	Logger   *slog.Logger
}

// Run processes documents in order, applying the registry's enabled scripts
// to each. A single document's failure never aborts the batch; only a
// session that cannot be started does, before any document is touched.
// The summary status and final progress update are emitted in every case.
func (r *Runner) Run(enginePath string, documents []string, reg *scripts.Registry) Summary {
	em := r.Emitter
	if em == nil {
		em = noopEmitter{}
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	total := len(documents)
	sum := Summary{Total: total}

	log.Info("batch run starting", "documents", total, "scripts", reg.Len(), "engine_path", enginePath)
	em.Status("Initializing AutoCAD...", schema.SeverityInfo)

	sess, err := r.Launcher.Start(enginePath)
	if err != nil {
		log.Error("engine initialization failed", "err", err)
		em.Status(fmt.Sprintf("Error initializing AutoCAD: %v", err), schema.SeverityError)
		r.finish(em, log, sum)
		return sum
	}

	for i, doc := range documents {
		em.Status(fmt.Sprintf("Processing file: %s (%d/%d)", filepath.Base(doc), i+1, total), schema.SeverityInfo)
		em.Progress(i+1, total)

		res := r.processDocument(em, sess, doc, reg)
		sum.Documents = append(sum.Documents, res)
		if res.Result.Succeeded() {
			sum.Succeeded++
			log.Info("document processed", "document", doc, "result", string(res.Result))
			em.Status(fmt.Sprintf("Process successful for file %s", doc), schema.SeveritySuccess)
		} else {
			log.Warn("document failed", "document", doc, "result", string(res.Result), "err", res.Err)
			em.Status(failureMessage(doc, res.Err), schema.SeverityError)
		}
	}

	if err := sess.Quit(); err != nil {
		// Best-effort: the run must reach completion reporting regardless.
		log.Warn("engine quit failed", "err", err)
		em.Status(fmt.Sprintf("Error quitting AutoCAD: %v", err), schema.SeverityWarning)
	}

	r.finish(em, log, sum)
	return sum
}

func (r *Runner) finish(em Emitter, log *slog.Logger, sum Summary) {
	em.Status(fmt.Sprintf("Processing complete: %d of %d files processed successfully.", sum.Succeeded, sum.Total), schema.SeverityInfo)
	em.Progress(sum.Total, sum.Total)
	log.Info("batch run finished", "total", sum.Total, "succeeded", sum.Succeeded, "failed", sum.Failed())
}

// failureMessage renders the friendlier per-document error text for the two
// error kinds the engine distinguishes, else surfaces the raw message.
func failureMessage(docPath string, err error) string {
	var ee *engine.Error
	if errors.As(err, &ee) {
		switch {
		case ee.Kind == engine.Disconnected:
			return fmt.Sprintf("Error processing file %s: AutoCAD may have crashed.", docPath)
		case ee.Op == engine.OpOpen || ee.Op == engine.OpClose:
			return fmt.Sprintf("Error processing file %s: The file could not be opened or closed.", docPath)
		}
	}
	return fmt.Sprintf("Error processing file %s: %v", docPath, err)
}
