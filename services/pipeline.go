package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"listing_studio/models"
	"listing_studio/render"
	"listing_studio/retry"
	"listing_studio/scraper"
	"listing_studio/storage"
)

// Archiver copies a finished job's assets somewhere durable and records where
// on the job.
type Archiver interface {
	Archive(ctx context.Context, job *models.RenderJob) error
}

// Pipeline ties extraction, render dispatch and render polling together and
// checkpoints each step into the job store.
type Pipeline struct {
	extractor  *scraper.Extractor
	dispatcher *render.Dispatcher
	poller     *render.RenderJobPoller
	jobs       *storage.JobStore
	captions   CaptionSource
	archiver   Archiver
	now        func() time.Time
}

func NewPipeline(extractor *scraper.Extractor, dispatcher *render.Dispatcher, poller *render.RenderJobPoller, jobs *storage.JobStore) *Pipeline {
	if jobs != nil {
		extractor.SetJobRecorder(jobs)
		dispatcher.SetJobRecorder(jobs)
	}
	return &Pipeline{
		extractor:  extractor,
		dispatcher: dispatcher,
		poller:     poller,
		jobs:       jobs,
		captions:   StaticCaptions{},
		now:        time.Now,
	}
}

func (p *Pipeline) SetCaptions(c CaptionSource) {
	p.captions = c
}

func (p *Pipeline) SetArchiver(a Archiver) {
	p.archiver = a
}

// ProfileForSession resolves a session token to its agent profile. An empty or
// unknown token yields no profile; scraped agent details are used instead.
func (p *Pipeline) ProfileForSession(ctx context.Context, token string) (*models.AgentProfile, error) {
	if token == "" || p.jobs == nil {
		return nil, nil
	}
	profile, err := p.jobs.Profile(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		log.Printf("Pipeline: no profile for session token, using scraped agent details")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session profile: %w", err)
	}
	return profile, nil
}

// Extract runs the listing URL through the extractor, attaches a caption and
// saves the record.
func (p *Pipeline) Extract(ctx context.Context, rawURL, listingType string, profile *models.AgentProfile) (models.PropertyRecord, error) {
	rec, err := p.extractor.Extract(ctx, rawURL, listingType, profile)
	if err != nil {
		return rec, err
	}

	p.attachCaption(ctx, &rec)

	if p.jobs != nil {
		if err := p.jobs.SaveRecord(context.WithoutCancel(ctx), &rec); err != nil {
			log.Printf("Pipeline: failed to save record %s: %v", rec.ID, err)
		}
	}
	return rec, nil
}

// Sources lists the enabled listing sites in classification order.
func (p *Pipeline) Sources() []string {
	kinds := p.extractor.Classifier().Kinds()
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, string(k))
	}
	return out
}

// Record loads a previously extracted record.
func (p *Pipeline) Record(ctx context.Context, id string) (*models.PropertyRecord, error) {
	if p.jobs == nil {
		return nil, storage.ErrNotFound
	}
	return p.jobs.Record(ctx, id)
}

func (p *Pipeline) Dispatch(ctx context.Context, rec models.PropertyRecord, templateID string, profile *models.AgentProfile, listingType string) (models.RenderJobHandle, error) {
	return p.dispatcher.Dispatch(ctx, rec, templateID, profile, listingType)
}

// Await polls the render job to completion and checkpoints the outcome. The
// returned job carries either the result or the failure reason; err is the
// poller's error when the job did not complete.
func (p *Pipeline) Await(ctx context.Context, handle models.RenderJobHandle) (*models.RenderJob, error) {
	job := p.loadJob(ctx, handle)

	result, ticks, err := p.poller.Poll(ctx, handle)
	if err != nil {
		reason := err.Error()
		var re *render.RenderError
		if errors.As(err, &re) && re.Reason != "" {
			reason = re.Reason
		} else if errors.Is(err, retry.ErrJobTimedOut) {
			reason = "timed out waiting for render"
		}
		job.Fail(reason, p.now())
		log.Printf("Pipeline: render %s failed after %d checks: %v", job.ID, ticks, err)
		p.save(ctx, job)
		return job, err
	}

	p.complete(ctx, job, result)
	log.Printf("Pipeline: render %s completed after %d checks", job.ID, ticks)
	return job, nil
}

// Finish settles a job from outside a poll, such as a webhook. A nil result
// marks it failed with reason. Jobs already settled are returned unchanged.
func (p *Pipeline) Finish(ctx context.Context, job *models.RenderJob, result *models.AssetResult, reason string) *models.RenderJob {
	if job.Status != models.RenderPending {
		return job
	}
	if result == nil {
		job.Fail(reason, p.now())
		log.Printf("Pipeline: render %s failed: %s", job.ID, reason)
		p.save(ctx, job)
		return job
	}
	p.complete(ctx, job, result)
	log.Printf("Pipeline: render %s completed", job.ID)
	return job
}

func (p *Pipeline) complete(ctx context.Context, job *models.RenderJob, result *models.AssetResult) {
	job.Complete(result, p.now())
	if job.Caption == "" {
		if rec, err := p.Record(ctx, job.RecordID); err == nil {
			p.attachCaption(ctx, rec)
			job.Caption = rec.Caption
		}
	}
	if p.archiver != nil {
		if err := p.archiver.Archive(ctx, job); err != nil {
			log.Printf("Pipeline: archive for render %s failed: %v", job.ID, err)
		}
	}
	p.save(ctx, job)
}

// Job returns a stored render job by id.
func (p *Pipeline) Job(ctx context.Context, id string) (*models.RenderJob, error) {
	if p.jobs == nil {
		return nil, storage.ErrNotFound
	}
	return p.jobs.Render(ctx, id)
}

// JobByRemote finds a stored render job by the render service's id.
func (p *Pipeline) JobByRemote(ctx context.Context, remoteID string) (*models.RenderJob, error) {
	if p.jobs == nil {
		return nil, storage.ErrNotFound
	}
	return p.jobs.RenderByRemote(ctx, remoteID)
}

func (p *Pipeline) loadJob(ctx context.Context, handle models.RenderJobHandle) *models.RenderJob {
	if p.jobs != nil {
		if job, err := p.jobs.Render(ctx, handle.ID); err == nil {
			return job
		}
	}
	return &models.RenderJob{
		ID:        handle.ID,
		RemoteID:  handle.RemoteID,
		Kind:      handle.Kind,
		Status:    models.RenderPending,
		CreatedAt: p.now(),
	}
}

func (p *Pipeline) attachCaption(ctx context.Context, rec *models.PropertyRecord) {
	if p.captions == nil || rec.Caption != "" {
		return
	}
	caption, err := p.captions.Caption(ctx, *rec)
	if err != nil {
		log.Printf("Pipeline: caption for record %s failed: %v", rec.ID, err)
		return
	}
	rec.Caption = caption
}

func (p *Pipeline) save(ctx context.Context, job *models.RenderJob) {
	if p.jobs == nil {
		return
	}
	if err := p.jobs.SaveRender(context.WithoutCancel(ctx), job); err != nil {
		log.Printf("Pipeline: failed to checkpoint render %s: %v", job.ID, err)
	}
}
