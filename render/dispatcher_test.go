package render

import (
	"context"
	"errors"
	"testing"

	"listing_studio/config"
	"listing_studio/models"
)

func dispatchConfig() *config.Config {
	return &config.Config{
		Bannerbear: config.BannerbearConfig{
			ProjectID:     "proj_1",
			WebhookURL:    "https://studio.example/webhooks/bannerbear",
			WebhookSecret: "s3cret",
			TemplateSetID: "set_default",
		},
		Shotstack: config.ShotstackConfig{TemplateID: "shot_tpl"},
		Sources: map[string]*config.SourceConfig{
			"zoopla": {ID: "zoopla", TemplateSetID: "set_zoopla", VideoTemplateID: "shot_zoopla"},
		},
	}
}

func TestKind(t *testing.T) {
	d := NewDispatcher(dispatchConfig(), &fakeImages{}, &fakeVideos{})

	tests := []struct {
		name       string
		templateID string
		source     string
		wantKind   models.RenderKind
		wantID     string
	}{
		{"video prefix", "video:abc", "rightmove", models.RenderVideo, "abc"},
		{"configured video template", "shot_tpl", "rightmove", models.RenderVideo, "shot_tpl"},
		{"source video template", "shot_zoopla", "zoopla", models.RenderVideo, "shot_zoopla"},
		{"configured template set", "set_default", "rightmove", models.RenderCollection, "set_default"},
		{"empty uses source set", "", "zoopla", models.RenderCollection, "set_zoopla"},
		{"empty uses default set", "", "rightmove", models.RenderCollection, "set_default"},
		{"plain template", "tpl_single", "rightmove", models.RenderSingleImage, "tpl_single"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, id := d.Kind(tt.templateID, tt.source)
			if kind != tt.wantKind || id != tt.wantID {
				t.Fatalf("expected %s/%s, got %s/%s", tt.wantKind, tt.wantID, kind, id)
			}
		})
	}
}

func TestDispatch_SingleImage(t *testing.T) {
	images := &fakeImages{}
	jobs := &renderLog{}
	d := NewDispatcher(dispatchConfig(), images, &fakeVideos{})
	d.SetJobRecorder(jobs)

	handle, err := d.Dispatch(context.Background(), sampleRecord(), "tpl_single", nil, "Just Listed")
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if handle.Kind != models.RenderSingleImage || handle.RemoteID != "img_remote" || handle.ID == "" {
		t.Fatalf("unexpected handle %+v", handle)
	}
	if len(images.created) != 1 {
		t.Fatalf("expected 1 image request, got %d", len(images.created))
	}

	p := images.created[0]
	if p.Template != "tpl_single" || p.TemplateSet != "" {
		t.Fatalf("expected template tpl_single, got %q/%q", p.Template, p.TemplateSet)
	}
	if p.ProjectID != "proj_1" || p.WebhookURL != "https://studio.example/webhooks/bannerbear" {
		t.Fatalf("project or webhook missing: %+v", p)
	}
	if p.WebhookHeaders["Authorization"] != "Bearer s3cret" {
		t.Fatalf("expected webhook bearer header, got %v", p.WebhookHeaders)
	}

	if len(jobs.saved) != 1 {
		t.Fatalf("expected the job to be checkpointed once, got %d", len(jobs.saved))
	}
	saved := jobs.saved[0]
	if saved.ID != handle.ID || saved.Status != models.RenderPending || saved.RecordID != "rec-1" {
		t.Fatalf("unexpected checkpoint %+v", saved)
	}
	if len(saved.Modifications) != len(p.Modifications) {
		t.Fatalf("checkpoint should carry the modifications")
	}
}

func TestDispatch_Collection(t *testing.T) {
	images := &fakeImages{}
	d := NewDispatcher(dispatchConfig(), images, &fakeVideos{})

	handle, err := d.Dispatch(context.Background(), sampleRecord(), "", nil, "")
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if handle.Kind != models.RenderCollection || handle.RemoteID != "col_remote" {
		t.Fatalf("unexpected handle %+v", handle)
	}
	if len(images.collections) != 1 || images.collections[0].TemplateSet != "set_default" {
		t.Fatalf("expected a template-set request, got %+v", images.collections)
	}
}

func TestDispatch_Video(t *testing.T) {
	videos := &fakeVideos{}
	d := NewDispatcher(dispatchConfig(), &fakeImages{}, videos)

	handle, err := d.Dispatch(context.Background(), sampleRecord(), "video:tpl_v", nil, "Just Sold")
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if handle.Kind != models.RenderVideo || handle.RemoteID != "vid_remote" {
		t.Fatalf("unexpected handle %+v", handle)
	}
	if len(videos.rendered) != 1 || videos.rendered[0].ID != "tpl_v" {
		t.Fatalf("expected video render of tpl_v, got %+v", videos.rendered)
	}
}

func TestDispatch_NoTemplate(t *testing.T) {
	cfg := dispatchConfig()
	cfg.Bannerbear.TemplateSetID = ""
	images := &fakeImages{}
	d := NewDispatcher(cfg, images, &fakeVideos{})

	_, err := d.Dispatch(context.Background(), sampleRecord(), "", nil, "")
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if len(images.created)+len(images.collections) != 0 {
		t.Fatalf("nothing should be submitted without a template")
	}
}

func TestDispatch_SubmitErrorNotCheckpointed(t *testing.T) {
	images := &fakeImages{createErr: &RenderError{Provider: bannerbearProvider, StatusCode: 422, Reason: "bad layer"}}
	jobs := &renderLog{}
	d := NewDispatcher(dispatchConfig(), images, &fakeVideos{})
	d.SetJobRecorder(jobs)

	_, err := d.Dispatch(context.Background(), sampleRecord(), "tpl_single", nil, "")
	var re *RenderError
	if !errors.As(err, &re) || re.StatusCode != 422 {
		t.Fatalf("expected RenderError with status 422, got %v", err)
	}
	if len(jobs.saved) != 0 {
		t.Fatalf("failed submission should not be checkpointed")
	}
}

func TestDispatch_CancelledWhileRateLimited(t *testing.T) {
	cfg := dispatchConfig()
	cfg.Bannerbear.RatePerSec = 0.001
	images := &fakeImages{}
	d := NewDispatcher(cfg, images, &fakeVideos{})

	if _, err := d.Dispatch(context.Background(), sampleRecord(), "tpl_single", nil, ""); err != nil {
		t.Fatalf("first dispatch should use the burst token: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Dispatch(ctx, sampleRecord(), "tpl_single", nil, "")
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expected RenderError from the limiter, got %v", err)
	}
	if len(images.created) != 1 {
		t.Fatalf("expected only the first request to be sent, got %d", len(images.created))
	}
}
