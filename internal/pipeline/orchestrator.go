package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bmcnabb/qcodex/internal/config"
	"github.com/bmcnabb/qcodex/internal/registry"
	"github.com/bmcnabb/qcodex/internal/sink"
)

// Orchestrator manages the document extraction pipeline.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	codes registry.Store
	sink  *sink.Client
	log   *slog.Logger
	cfg   config.Config
	stats *ParseStats

	// exportSem bounds concurrent sink exports across all workers.
	exportSem chan struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. sk may be nil when no downstream
// sink is configured.
func NewOrchestrator(cfg config.Config, codes registry.Store, sk *sink.Client, log *slog.Logger) *Orchestrator {
	exportSlots := cfg.MaxConcurrentExport
	if exportSlots < 1 {
		exportSlots = 1
	}
	return &Orchestrator{
		exportSem: make(chan struct{}, exportSlots),
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		codes: codes,
		sink:  sk,
		log:   log,
		cfg:   cfg,
		stats: NewParseStats(time.Hour),
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.codes, o.sink, o.log, o.stats, o.exportSem, o.cfg.PDFFallbackPdftotext)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Registry returns the code registry for direct use by API handlers.
func (o *Orchestrator) Registry() registry.Store {
	return o.codes
}

// Stats returns the rolling parse latency tracker.
func (o *Orchestrator) Stats() *ParseStats {
	return o.stats
}
