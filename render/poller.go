package render

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"listing_studio/config"
	"listing_studio/models"
	"listing_studio/retry"
)

// RenderJobPoller waits for a submitted render job to produce its asset.
type RenderJobPoller struct {
	images ImageService
	videos VideoService
	cfg    retry.PollConfig
}

func NewRenderJobPoller(images ImageService, videos VideoService, cfg config.PollConfig, sleep retry.Sleeper) *RenderJobPoller {
	pc := retry.PollConfig{
		Interval:        cfg.Interval,
		MaxAttempts:     cfg.MaxAttempts,
		RequestAttempts: cfg.RequestAttempts,
		RequestBackoff:  cfg.RequestBackoff,
		Sleep:           sleep,
	}
	if pc.Interval <= 0 {
		pc.Interval = 3 * time.Second
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
	return &RenderJobPoller{images: images, videos: videos, cfg: pc}
}

// Poll checks the job until it completes or fails. Failures come back as a
// *RenderError wrapping retry.ErrJobFailed or retry.ErrJobTimedOut; the tick
// count is returned either way.
func (p *RenderJobPoller) Poll(ctx context.Context, handle models.RenderJobHandle) (*models.AssetResult, int, error) {
	var failure string

	result, ticks, err := retry.Poll(ctx, p.cfg, func(ctx context.Context) (*models.AssetResult, retry.State, error) {
		res, state, reason, err := p.check(ctx, handle)
		if err != nil {
			log.Printf("Render: status request for %s %s failed: %v", handle.Kind, handle.RemoteID, err)
			return nil, retry.StatePending, err
		}
		if state == retry.StateFailed {
			failure = reason
		}
		return res, state, nil
	})
	if err != nil {
		re := &RenderError{Provider: providerFor(handle.Kind), JobID: handle.RemoteID, Err: err}
		if errors.Is(err, retry.ErrJobFailed) {
			re.Reason = failure
		}
		return nil, ticks, re
	}
	return result, ticks, nil
}

// Check makes one status request without waiting. It is what the sweep
// worker and webhook handler use to settle jobs outside a live poll.
func (p *RenderJobPoller) Check(ctx context.Context, handle models.RenderJobHandle) (*models.AssetResult, retry.State, error) {
	res, state, _, err := p.check(ctx, handle)
	return res, state, err
}

func (p *RenderJobPoller) check(ctx context.Context, handle models.RenderJobHandle) (*models.AssetResult, retry.State, string, error) {
	switch handle.Kind {
	case models.RenderVideo:
		st, err := p.videos.RenderStatus(ctx, handle.RemoteID)
		if err != nil {
			return nil, retry.StatePending, "", err
		}
		switch st.Status {
		case shotstackReady:
			return &models.AssetResult{Kind: handle.Kind, VideoURL: st.URL}, retry.StateDone, "", nil
		case shotstackFailed:
			return nil, retry.StateFailed, "video render failed", nil
		}
		return nil, retry.StatePending, "", nil

	case models.RenderCollection:
		col, err := p.images.Collection(ctx, handle.RemoteID)
		if err != nil {
			return nil, retry.StatePending, "", err
		}
		switch col.Status {
		case bannerbearCompleted:
			return CollectionResult(col), retry.StateDone, "", nil
		case bannerbearFailed:
			return nil, retry.StateFailed, "collection render failed", nil
		}
		return nil, retry.StatePending, "", nil

	case models.RenderSingleImage:
		img, err := p.images.Image(ctx, handle.RemoteID)
		if err != nil {
			return nil, retry.StatePending, "", err
		}
		switch img.Status {
		case bannerbearCompleted:
			return &models.AssetResult{Kind: handle.Kind, ImageURL: img.ImageURL}, retry.StateDone, "", nil
		case bannerbearFailed:
			return nil, retry.StateFailed, "image render failed", nil
		}
		return nil, retry.StatePending, "", nil
	}

	return nil, retry.StateFailed, fmt.Sprintf("unknown render kind %q", handle.Kind), nil
}

// CollectionResult converts a completed collection into an AssetResult with
// its images split into standard and large buckets.
func CollectionResult(col CollectionStatus) *models.AssetResult {
	standard, large := PartitionImages(col.RenderedImages())
	return &models.AssetResult{
		Kind:     models.RenderCollection,
		Standard: standard,
		Large:    large,
		ZipURL:   col.ZipURL,
	}
}
