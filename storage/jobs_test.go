package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"listing_studio/models"
)

func TestJobStoreRender(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobStore(NewMemoryStore())

	job := &models.RenderJob{
		ID:        "job-1",
		RemoteID:  "bb-uid",
		Kind:      models.RenderCollection,
		Status:    models.RenderPending,
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := jobs.SaveRender(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := jobs.Render(ctx, "job-1")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got.RemoteID != "bb-uid" || got.Kind != models.RenderCollection {
		t.Fatalf("unexpected job: %+v", got)
	}

	byRemote, err := jobs.RenderByRemote(ctx, "bb-uid")
	if err != nil {
		t.Fatalf("render by remote: %v", err)
	}
	if byRemote.ID != "job-1" {
		t.Fatalf("expected job-1, got %s", byRemote.ID)
	}

	if _, err := jobs.Render(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := jobs.RenderByRemote(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJobStorePendingRenders(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobStore(NewMemoryStore())
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	// Later jobs are older so key order and age order disagree.
	for i, st := range []models.RenderStatus{models.RenderPending, models.RenderCompleted, models.RenderPending, models.RenderFailed, models.RenderPending} {
		job := &models.RenderJob{
			ID:        uuid.NewString(),
			RemoteID:  uuid.NewString(),
			Status:    st,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
		if err := jobs.SaveRender(ctx, job); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	pending, err := jobs.PendingRenders(ctx, 0)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending jobs, got %d", len(pending))
	}
	for i := 1; i < len(pending); i++ {
		if pending[i].CreatedAt.Before(pending[i-1].CreatedAt) {
			t.Fatalf("expected oldest first, got %v then %v", pending[i-1].CreatedAt, pending[i].CreatedAt)
		}
	}

	limited, err := jobs.PendingRenders(ctx, 2)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(limited) != 2 || !limited[0].CreatedAt.Equal(base.Add(-4*time.Minute)) {
		t.Fatalf("expected the two oldest jobs, got %d", len(limited))
	}
}

func TestJobStorePendingNeedsLister(t *testing.T) {
	jobs := NewJobStore(struct{ Store }{NewMemoryStore()})
	if _, err := jobs.PendingRenders(context.Background(), 0); err == nil {
		t.Fatal("expected error from a store that cannot list")
	}
}

func TestJobStoreRecordAndProfile(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobStore(NewMemoryStore())

	beds := 3
	rec := &models.PropertyRecord{ID: "rec-1", Source: "rightmove", Address: "1 High St", Bedrooms: &beds, Images: []string{"a.jpg"}}
	if err := jobs.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("save record: %v", err)
	}
	got, err := jobs.Record(ctx, "rec-1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got.Address != "1 High St" || got.Bedrooms == nil || *got.Bedrooms != 3 {
		t.Fatalf("unexpected record: %+v", got)
	}

	token := uuid.NewString()
	if err := jobs.SaveProfile(ctx, token, &models.AgentProfile{Name: "Jane Agent", Phone: "020 7946 0000"}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	profile, err := jobs.Profile(ctx, token)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Name != "Jane Agent" {
		t.Fatalf("expected Jane Agent, got %s", profile.Name)
	}
	if _, err := jobs.Profile(ctx, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJobStoreExtraction(t *testing.T) {
	ctx := context.Background()
	jobs := NewJobStore(NewMemoryStore())
	job := &models.ExtractionJob{ID: "ex-1", Status: models.ExtractionCompleted, Attempts: 2}
	if err := jobs.SaveExtraction(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := jobs.Extraction(ctx, "ex-1")
	if err != nil {
		t.Fatalf("extraction: %v", err)
	}
	if got.Status != models.ExtractionCompleted || got.Attempts != 2 {
		t.Fatalf("unexpected job: %+v", got)
	}
}
