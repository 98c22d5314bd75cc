package render

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"listing_studio/config"
	"listing_studio/models"
)

// VideoTemplatePrefix marks a template id as a video template regardless of
// configuration ("video:<shotstack template id>").
const VideoTemplatePrefix = "video:"

// JobRecorder checkpoints render jobs as they are created and finished.
type JobRecorder interface {
	SaveRender(ctx context.Context, job *models.RenderJob) error
}

// Dispatcher turns a property record into a render job and submits it.
type Dispatcher struct {
	cfg     *config.Config
	images  ImageService
	videos  VideoService
	limiter *rate.Limiter
	jobs    JobRecorder
	now     func() time.Time
}

func NewDispatcher(cfg *config.Config, images ImageService, videos VideoService) *Dispatcher {
	limit := rate.Inf
	if cfg.Bannerbear.RatePerSec > 0 {
		limit = rate.Limit(cfg.Bannerbear.RatePerSec)
	}
	return &Dispatcher{
		cfg:     cfg,
		images:  images,
		videos:  videos,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
}

func (d *Dispatcher) SetJobRecorder(jobs JobRecorder) {
	d.jobs = jobs
}

// Kind decides how a template id is rendered and returns the id to send.
// source is the record's source kind, used for per-source template overrides.
func (d *Dispatcher) Kind(templateID, source string) (models.RenderKind, string) {
	if strings.HasPrefix(templateID, VideoTemplatePrefix) {
		return models.RenderVideo, strings.TrimPrefix(templateID, VideoTemplatePrefix)
	}

	src := d.cfg.Source(source)
	if templateID == "" && src != nil {
		switch {
		case src.TemplateSetID != "":
			templateID = src.TemplateSetID
		case src.TemplateID != "":
			templateID = src.TemplateID
		}
	}
	if templateID == "" {
		templateID = d.cfg.Bannerbear.TemplateSetID
	}

	switch {
	case templateID == "":
		return models.RenderSingleImage, ""
	case templateID == d.cfg.Shotstack.TemplateID, src != nil && templateID == src.VideoTemplateID:
		return models.RenderVideo, templateID
	case templateID == d.cfg.Bannerbear.TemplateSetID, src != nil && templateID == src.TemplateSetID:
		return models.RenderCollection, templateID
	default:
		return models.RenderSingleImage, templateID
	}
}

// Dispatch builds the payload for the template's kind and submits it. The
// returned handle's Kind selects the poller.
func (d *Dispatcher) Dispatch(ctx context.Context, rec models.PropertyRecord, templateID string, profile *models.AgentProfile, listingType string) (models.RenderJobHandle, error) {
	kind, template := d.Kind(templateID, rec.Source)
	if template == "" {
		return models.RenderJobHandle{}, &RenderError{Provider: providerFor(kind), Reason: "no template configured"}
	}

	job := &models.RenderJob{
		ID:         uuid.NewString(),
		Kind:       kind,
		Status:     models.RenderPending,
		TemplateID: template,
		RecordID:   rec.ID,
		Caption:    rec.Caption,
		CreatedAt:  d.now(),
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return models.RenderJobHandle{}, &RenderError{Provider: providerFor(kind), Reason: "rate limit wait", Err: err}
	}

	var (
		remoteID string
		err      error
	)
	switch kind {
	case models.RenderVideo:
		payload := BuildVideoJob(rec, profile, listingType)
		payload.ID = template
		job.Merge = payload.Merge
		remoteID, err = d.videos.Render(ctx, payload)
	default:
		payload := BuildImageJob(rec, profile, listingType)
		payload.ProjectID = d.cfg.Bannerbear.ProjectID
		if d.cfg.Bannerbear.WebhookURL != "" {
			payload.WebhookURL = d.cfg.Bannerbear.WebhookURL
			if d.cfg.Bannerbear.WebhookSecret != "" {
				payload.WebhookHeaders = map[string]string{"Authorization": "Bearer " + d.cfg.Bannerbear.WebhookSecret}
			}
		}
		job.Modifications = payload.Modifications
		if kind == models.RenderCollection {
			payload.TemplateSet = template
			remoteID, err = d.images.CreateCollection(ctx, payload)
		} else {
			payload.Template = template
			remoteID, err = d.images.CreateImage(ctx, payload)
		}
	}
	if err != nil {
		log.Printf("Render: %s submission for record %s failed: %v", kind, rec.ID, err)
		return models.RenderJobHandle{}, err
	}

	job.RemoteID = remoteID
	log.Printf("Render: %s job %s submitted as %s (template %s)", kind, job.ID, remoteID, template)
	if d.jobs != nil {
		if err := d.jobs.SaveRender(context.WithoutCancel(ctx), job); err != nil {
			log.Printf("Render: failed to checkpoint job %s: %v", job.ID, err)
		}
	}

	return models.RenderJobHandle{ID: job.ID, RemoteID: remoteID, Kind: kind}, nil
}

func providerFor(kind models.RenderKind) string {
	if kind == models.RenderVideo {
		return shotstackProvider
	}
	return bannerbearProvider
}
