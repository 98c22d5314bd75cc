package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"listing_studio/config"
	"listing_studio/retry"
)

// ExtractionJobPoller waits for an asynchronous extraction job to finish.
type ExtractionJobPoller struct {
	service ExtractionService
	cfg     retry.PollConfig
}

func NewExtractionJobPoller(service ExtractionService, cfg config.PollConfig, sleep retry.Sleeper) *ExtractionJobPoller {
	pc := retry.PollConfig{
		Interval:        cfg.Interval,
		MaxAttempts:     cfg.MaxAttempts,
		RequestAttempts: cfg.RequestAttempts,
		RequestBackoff:  cfg.RequestBackoff,
		Sleep:           sleep,
	}
	if pc.Interval <= 0 {
		pc.Interval = 2 * time.Second
	}
	if pc.MaxAttempts <= 0 {
		pc.MaxAttempts = 30
	}
	if pc.RequestAttempts <= 0 {
		pc.RequestAttempts = 3
	}
	if pc.RequestBackoff <= 0 {
		pc.RequestBackoff = time.Second
	}
	return &ExtractionJobPoller{service: service, cfg: pc}
}

// Poll returns the job's data once completed. Errors wrap retry.ErrJobFailed
// or retry.ErrJobTimedOut. The tick count is returned either way.
func (p *ExtractionJobPoller) Poll(ctx context.Context, jobID string) (any, int, error) {
	var failure string

	status, ticks, err := retry.Poll(ctx, p.cfg, func(ctx context.Context) (StatusResult, retry.State, error) {
		res, err := p.service.Status(ctx, jobID)
		if err != nil {
			log.Printf("Firecrawl: status request for %s failed: %v", jobID, err)
			return res, retry.StatePending, err
		}

		switch res.Status {
		case firecrawlCompleted:
			if res.Data == nil {
				return res, retry.StateFailed, nil
			}
			return res, retry.StateDone, nil
		case firecrawlFailed, firecrawlCancelled:
			failure = res.Error
			return res, retry.StateFailed, nil
		}

		log.Printf("Firecrawl: job %s status: %s", jobID, res.Status)
		return res, retry.StatePending, nil
	})
	if err != nil {
		if errors.Is(err, retry.ErrJobFailed) {
			if failure == "" {
				failure = "completed without data"
			}
			return nil, ticks, fmt.Errorf("extraction job %s: %w: %s", jobID, err, failure)
		}
		return nil, ticks, fmt.Errorf("extraction job %s: %w", jobID, err)
	}

	return status.Data, ticks, nil
}
