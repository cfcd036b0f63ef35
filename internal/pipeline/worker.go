package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/diccas/internal/metrics"
	"github.com/dgallion1/diccas/internal/writer"
)

// Worker processes a single conversion job.
type Worker struct {
	conv    *Converter
	metrics *metrics.Metrics
	log     *slog.Logger
	outRoot string
}

func NewWorker(conv *Converter, m *metrics.Metrics, log *slog.Logger, outRoot string) *Worker {
	return &Worker{conv: conv, metrics: m, log: log, outRoot: outRoot}
}

// Process runs parse, linearize and write for a job. Outputs land in
// <outRoot>/<job ID>/.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	fail := func(phase string, err error) {
		log.Error("conversion failed", "phase", phase, "error", err)
		job.AddError(fmt.Sprintf("%s: %s", phase, err))
		job.SetStatus(StatusFailed, phase)
		w.observe(StatusFailed, start)
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	doc, err := w.conv.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		fail("parsing", err)
		return
	}
	job.releaseFileData()
	if doc.RecoveredFrom != nil {
		job.AddError(fmt.Sprintf("recovered from malformed XML: %s", doc.RecoveredFrom))
	}

	// Phase 2: Linearize
	job.SetStatus(StatusConverting, "converting")
	res, err := w.conv.Linearize(ctx, doc)
	if err != nil {
		fail("converting", err)
		return
	}
	job.SetStats(res.Stats)
	log.Info("linearized",
		"books", res.Stats.Books,
		"paragraphs", res.Stats.Paragraphs,
		"sentences", res.Stats.Sentences,
		"tokens", res.Stats.Tokens,
	)

	// Phase 3: Write
	job.SetStatus(StatusWriting, "writing")
	dir := filepath.Join(w.outRoot, job.ID)
	files, err := writer.WriteAll(dir, job.Name, res)
	job.SetFiles(dir, files)
	if err != nil {
		fail("writing", err)
		return
	}

	if w.metrics != nil {
		w.metrics.ObserveResult(res.Stats)
	}
	job.SetStatus(StatusCompleted, "done")
	w.observe(StatusCompleted, start)
	log.Info("conversion complete", "dir", dir, "duration_ms", time.Since(start).Milliseconds())
}

func (w *Worker) observe(status JobStatus, start time.Time) {
	if w.metrics != nil {
		w.metrics.ObserveConversion(string(status), time.Since(start))
	}
}
