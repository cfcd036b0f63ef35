package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgallion1/diccas/internal/config"
	"github.com/dgallion1/diccas/internal/metrics"
)

// ErrQueueFull is returned by Submit when no worker slot is free.
var ErrQueueFull = errors.New("job queue is full")

// Orchestrator manages the asynchronous conversion pipeline.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	conv    *Converter
	metrics *metrics.Metrics
	log     *slog.Logger
	cfg     config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. m may be nil.
func NewOrchestrator(cfg config.Config, conv *Converter, m *metrics.Metrics, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		conv:    conv,
		metrics: m,
		log:     log,
		cfg:     cfg,
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
			w := NewWorker(o.conv, o.metrics, o.log, o.cfg.Output.Dir)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.reportQueue()
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
			case now := <-ticker.C:
				o.cleanup(now)
			}
		}
	}()
}

// cleanup evicts expired jobs and removes their output directories.
func (o *Orchestrator) cleanup(now time.Time) {
	for _, job := range o.jobs.Cleanup(now) {
		dir := job.OutputDir()
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			o.log.Warn("remove job output failed", "job_id", job.ID, "dir", dir, "error", err)
		}
	}
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
		o.reportQueue()
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		if o.metrics != nil {
			o.metrics.ObserveConversion(string(StatusFailed), 0)
		}
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
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

func (o *Orchestrator) reportQueue() {
	if o.metrics != nil {
		o.metrics.SetQueueDepth(len(o.queue))
	}
}
