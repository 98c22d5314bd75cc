package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"listing_studio/models"
	"listing_studio/render"
	"listing_studio/retry"
	"listing_studio/storage"
)

// Archiver copies a finished job's assets somewhere durable.
type Archiver interface {
	Archive(ctx context.Context, job *models.RenderJob) error
}

// SweepWorker settles render jobs nobody is waiting on: it re-checks every
// stored job still pending and checkpoints the ones that finished.
type SweepWorker struct {
	jobs      *storage.JobStore
	poller    *render.RenderJobPoller
	archiver  Archiver
	batchSize int
	triggerCh chan struct{}
	logFunc   LogFunc
	now       func() time.Time
}

func NewSweepWorker(jobs *storage.JobStore, poller *render.RenderJobPoller, batchSize int) *SweepWorker {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &SweepWorker{
		jobs:      jobs,
		poller:    poller,
		batchSize: batchSize,
		triggerCh: make(chan struct{}, 1),
		logFunc:   NoOpLogger,
		now:       time.Now,
	}
}

func (w *SweepWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

func (w *SweepWorker) SetArchiver(a Archiver) {
	w.archiver = a
}

// Trigger asks the worker to sweep as soon as it is free. Triggers arriving
// during a sweep collapse into one.
func (w *SweepWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run sweeps on every trigger until ctx is done.
func (w *SweepWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("Sweep worker stopping")
			return
		case <-w.triggerCh:
			if _, err := w.Sweep(ctx); err != nil {
				log.Printf("Sweep: %v", err)
			}
		}
	}
}

// Sweep checks one batch of pending jobs and returns how many it settled.
func (w *SweepWorker) Sweep(ctx context.Context) (int, error) {
	pending, err := w.jobs.PendingRenders(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("load pending renders: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	log.Printf("Sweep: checking %d pending renders", len(pending))

	var settled int
	for _, job := range pending {
		if ctx.Err() != nil {
			break
		}
		if w.settle(ctx, job) {
			settled++
		}
	}

	if settled > 0 {
		log.Printf("Sweep: settled %d of %d", settled, len(pending))
	}
	return settled, nil
}

func (w *SweepWorker) settle(ctx context.Context, job *models.RenderJob) bool {
	handle := models.RenderJobHandle{ID: job.ID, RemoteID: job.RemoteID, Kind: job.Kind}
	result, state, err := w.poller.Check(ctx, handle)
	if err != nil {
		log.Printf("Sweep: status check for %s failed: %v", job.ID, err)
		return false
	}

	switch state {
	case retry.StateDone:
		job.Complete(result, w.now())
		if w.archiver != nil {
			if err := w.archiver.Archive(ctx, job); err != nil {
				w.logFunc(models.LogLevelWarn, "sweep", fmt.Sprintf("archive for %s failed: %v", job.ID, err))
			}
		}
		w.logFunc(models.LogLevelInfo, "sweep", fmt.Sprintf("%s render %s completed", job.Kind, job.ID))
	case retry.StateFailed:
		job.Fail(fmt.Sprintf("%s render failed", job.Kind), w.now())
		w.logFunc(models.LogLevelError, "sweep", fmt.Sprintf("%s render %s failed", job.Kind, job.ID))
	default:
		return false
	}

	if err := w.jobs.SaveRender(ctx, job); err != nil {
		log.Printf("Sweep: failed to checkpoint %s: %v", job.ID, err)
		return false
	}
	return true
}
