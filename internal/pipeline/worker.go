package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bmcnabb/qcodex/internal/loader"
	"github.com/bmcnabb/qcodex/internal/qcode"
	"github.com/bmcnabb/qcodex/internal/registry"
	"github.com/bmcnabb/qcodex/internal/sink"
)

// Worker processes a single document job: extract text, parse the coding
// markup, register newly seen codes, export rows downstream.
type Worker struct {
	codes registry.Store
	sink  *sink.Client // nil when no sink is configured
	log   *slog.Logger
	stats *ParseStats

	// exportSem is shared across workers to bound concurrent sink exports.
	exportSem chan struct{}

	pdfFallback bool
}

func NewWorker(codes registry.Store, sk *sink.Client, log *slog.Logger, stats *ParseStats, exportSem chan struct{}, pdfFallback bool) *Worker {
	return &Worker{
		codes:       codes,
		sink:        sk,
		log:         log,
		stats:       stats,
		exportSem:   exportSem,
		pdfFallback: pdfFallback,
	}
}

// Process runs the full extraction pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: extract plain text from the uploaded file.
	job.SetStatus(StatusExtracting, "extracting_text")
	ex, err := loader.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting_text")
		return
	}
	if pdf, ok := ex.(*loader.PDFExtractor); ok {
		pdf.FallbackPdftotext = w.pdfFallback
	}

	text, err := ex.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("text extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting_text")
		return
	}

	// Phase 2: parse the coding markup. Parse never fails; malformed markup
	// comes back as diagnostics.
	job.SetStatus(StatusParsing, "parsing")
	start := time.Now()
	records, diags := qcode.Parse(qcode.Document{ID: job.DocID, Text: text})
	w.stats.Record(time.Since(start))
	job.SetResults(records, diags)
	log.Info("parsed document", "records", len(records), "diagnostics", len(diags))

	for _, d := range diags {
		log.Warn("markup diagnostic", "kind", d.Kind, "detail", d.Detail)
	}

	hadErrors := false

	// Phase 3: register newly observed codes.
	job.SetStatus(StatusRegistering, "registering")
	names := qcode.Codes(records)
	job.SetCodesSeen(len(names))
	if len(names) > 0 {
		if err := w.codes.Add(ctx, names); err != nil {
			log.Error("code registration failed", "error", err)
			job.AddError(fmt.Sprintf("register: %s", err))
			hadErrors = true
		}
	}

	// Phase 4: export to the downstream sink, if configured.
	if w.sink != nil {
		job.SetStatus(StatusExporting, "exporting")
		if err := w.export(ctx, job.DocID, records, diags); err != nil {
			log.Error("export failed", "error", err)
			job.AddError(fmt.Sprintf("export: %s", err))
			hadErrors = true
		} else {
			job.SetExported(len(records))
		}
	}

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// export pushes records then diagnostics, retrying transient sink failures.
// The shared semaphore caps how many exports run at once across workers.
func (w *Worker) export(ctx context.Context, docID string, records []qcode.Record, diags []qcode.Diagnostic) error {
	select {
	case w.exportSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-w.exportSem }()

	if err := w.withRetry(ctx, func() error { return w.sink.PutRecords(ctx, docID, records) }); err != nil {
		return err
	}
	return w.withRetry(ctx, func() error { return w.sink.PutDiagnostics(ctx, docID, diags) })
}

func (w *Worker) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		w.log.Warn("retryable sink error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
