package scraper

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"listing_studio/config"
	"listing_studio/models"
	"listing_studio/retry"
)

// JobRecorder checkpoints extraction jobs once they reach a terminal state.
type JobRecorder interface {
	SaveExtraction(ctx context.Context, job *models.ExtractionJob) error
}

// Extractor runs one listing URL through classification, submission, polling
// and normalization.
type Extractor struct {
	cfg         *config.Config
	classifier  *Classifier
	service     ExtractionService
	poller      *ExtractionJobPoller
	policy      retry.Policy
	maxAttempts int
	jobs        JobRecorder
	now         func() time.Time
}

func NewExtractor(cfg *config.Config, service ExtractionService, sleep retry.Sleeper) *Extractor {
	policy := retry.Policy{
		Base:       cfg.Retry.Base,
		Multiplier: cfg.Retry.Multiplier,
		Jitter:     cfg.Retry.Jitter,
		MaxDelay:   30 * time.Second,
		Sleep:      sleep,
		Name:       "Firecrawl submit",
	}
	if policy.Base <= 0 {
		policy = retry.DefaultPolicy()
		policy.Sleep = sleep
		policy.Name = "Firecrawl submit"
	}

	attempts := cfg.Retry.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}

	return &Extractor{
		cfg:         cfg,
		classifier:  NewClassifier(cfg),
		service:     service,
		poller:      NewExtractionJobPoller(service, cfg.Extraction, sleep),
		policy:      policy,
		maxAttempts: attempts,
		now:         time.Now,
	}
}

func (e *Extractor) SetJobRecorder(jobs JobRecorder) {
	e.jobs = jobs
}

func (e *Extractor) Classifier() *Classifier {
	return e.classifier
}

// Extract returns the normalized record for a listing URL. Invalid and
// unsupported URLs fail before any request is made. listingType is carried on
// the record untouched.
func (e *Extractor) Extract(ctx context.Context, rawURL, listingType string, profile *models.AgentProfile) (models.PropertyRecord, error) {
	if err := checkURL(rawURL); err != nil {
		return models.PropertyRecord{}, err
	}
	kind, err := e.classifier.Classify(rawURL)
	if err != nil {
		return models.PropertyRecord{}, err
	}
	adapter, err := GetAdapter(kind)
	if err != nil {
		return models.PropertyRecord{}, err
	}
	cleanURL, err := adapter.Validate(rawURL)
	if err != nil {
		return models.PropertyRecord{}, err
	}

	req := adapter.Request(cleanURL)
	if src := e.cfg.Source(string(kind)); src != nil && src.Prompt != "" {
		req.Prompt = src.Prompt
	}

	job := &models.ExtractionJob{
		ID:        uuid.NewString(),
		SourceURL: cleanURL,
		Source:    string(kind),
		Status:    models.ExtractionSubmitted,
		StartedAt: e.now(),
	}
	log.Printf("Extract: %s job %s submitting %s", kind, job.ID, cleanURL)

	submitted, err := retry.Do(ctx, e.policy, e.maxAttempts, func(ctx context.Context) (SubmitResult, error) {
		job.Attempts++
		return e.service.Submit(ctx, req)
	})
	if err != nil {
		e.finish(ctx, job, models.ExtractionFailed, err)
		return models.PropertyRecord{}, &ExtractionError{URL: cleanURL, Reason: "submit failed", Err: err}
	}

	data := submitted.Data
	if submitted.JobID != "" {
		job.RemoteID = submitted.JobID
		job.Status = models.ExtractionPolling
		log.Printf("Extract: job %s queued remotely as %s, polling", job.ID, job.RemoteID)

		var ticks int
		data, ticks, err = e.poller.Poll(ctx, submitted.JobID)
		job.Attempts += ticks
		if err != nil {
			status := models.ExtractionFailed
			reason := "service reported failure"
			if errors.Is(err, retry.ErrJobTimedOut) {
				status = models.ExtractionTimedOut
				reason = "timed out waiting for extraction"
			}
			e.finish(ctx, job, status, err)
			return models.PropertyRecord{}, &ExtractionError{URL: cleanURL, JobID: job.RemoteID, Reason: reason, Err: err}
		}
	}

	root := rootData(data)
	rec, scraped := adapter.Normalize(root)
	if root == nil || !rec.HasEssentials() {
		e.finish(ctx, job, models.ExtractionFailed, ErrNoEssentialData)
		return models.PropertyRecord{}, &ExtractionError{URL: cleanURL, JobID: job.RemoteID, Reason: ErrNoEssentialData.Error(), Err: ErrNoEssentialData}
	}

	rec.ID = uuid.NewString()
	rec.Source = string(kind)
	rec.SourceURL = cleanURL
	rec.ListingType = listingType
	rec.ExtractedAt = e.now()
	rec.Agent = models.MergeAgent(scraped, profile)

	job.RecordID = rec.ID
	e.finish(ctx, job, models.ExtractionCompleted, nil)
	log.Printf("Extract: job %s complete: %q, %s, %d images", job.ID, rec.Address, rec.Price, len(rec.Images))

	return rec, nil
}

func (e *Extractor) finish(ctx context.Context, job *models.ExtractionJob, status models.ExtractionStatus, cause error) {
	job.Status = status
	job.UpdatedAt = e.now()
	if cause != nil {
		job.LastError = cause.Error()
		log.Printf("Extract: job %s %s: %v", job.ID, status, cause)
	}
	if e.jobs == nil {
		return
	}
	if err := e.jobs.SaveExtraction(context.WithoutCancel(ctx), job); err != nil {
		log.Printf("Extract: failed to checkpoint job %s: %v", job.ID, err)
	}
}
