package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"listing_studio/config"
	"listing_studio/models"
	"listing_studio/render"
	"listing_studio/storage"
)

type fakeImages struct {
	images      map[string]render.ImageStatus
	collections map[string]render.CollectionStatus
}

func (f *fakeImages) CreateImage(context.Context, render.ImagePayload) (string, error) {
	return "", errors.New("unexpected create")
}

func (f *fakeImages) CreateCollection(context.Context, render.ImagePayload) (string, error) {
	return "", errors.New("unexpected create")
}

func (f *fakeImages) Image(_ context.Context, uid string) (render.ImageStatus, error) {
	st, ok := f.images[uid]
	if !ok {
		return render.ImageStatus{}, errors.New("connection reset")
	}
	return st, nil
}

func (f *fakeImages) Collection(_ context.Context, uid string) (render.CollectionStatus, error) {
	st, ok := f.collections[uid]
	if !ok {
		return render.CollectionStatus{}, errors.New("connection reset")
	}
	return st, nil
}

type fakeVideos struct {
	statuses map[string]render.VideoStatus
}

func (f *fakeVideos) Render(context.Context, render.VideoPayload) (string, error) {
	return "", errors.New("unexpected render")
}

func (f *fakeVideos) RenderStatus(_ context.Context, id string) (render.VideoStatus, error) {
	return f.statuses[id], nil
}

type archiveLog struct {
	jobs []string
}

func (a *archiveLog) Archive(_ context.Context, job *models.RenderJob) error {
	a.jobs = append(a.jobs, job.ID)
	return nil
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func seed(t *testing.T, jobs *storage.JobStore, list ...models.RenderJob) {
	t.Helper()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := range list {
		job := list[i]
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := jobs.SaveRender(context.Background(), &job); err != nil {
			t.Fatalf("seed %s: %v", job.ID, err)
		}
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	jobs := storage.NewJobStore(storage.NewMemoryStore())
	seed(t, jobs,
		models.RenderJob{ID: "img-done", RemoteID: "img_1", Kind: models.RenderSingleImage, Status: models.RenderPending},
		models.RenderJob{ID: "col-failed", RemoteID: "col_1", Kind: models.RenderCollection, Status: models.RenderPending},
		models.RenderJob{ID: "vid-queued", RemoteID: "vid_1", Kind: models.RenderVideo, Status: models.RenderPending},
		models.RenderJob{ID: "img-flaky", RemoteID: "img_missing", Kind: models.RenderSingleImage, Status: models.RenderPending},
		models.RenderJob{ID: "already-done", RemoteID: "img_2", Kind: models.RenderSingleImage, Status: models.RenderCompleted},
	)

	images := &fakeImages{
		images:      map[string]render.ImageStatus{"img_1": {Status: "completed", ImageURL: "https://cdn/1.png"}},
		collections: map[string]render.CollectionStatus{"col_1": {Status: "failed"}},
	}
	videos := &fakeVideos{statuses: map[string]render.VideoStatus{"vid_1": {Status: "rendering"}}}
	poller := render.NewRenderJobPoller(images, videos, config.PollConfig{}, noSleep)

	archive := &archiveLog{}
	var events []models.LogLevel
	w := NewSweepWorker(jobs, poller, 10)
	w.SetArchiver(archive)
	w.SetLogger(func(level models.LogLevel, source, message string) {
		events = append(events, level)
	})

	settled, err := w.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if settled != 2 {
		t.Fatalf("expected 2 settled, got %d", settled)
	}

	done, _ := jobs.Render(ctx, "img-done")
	if done.Status != models.RenderCompleted || done.Result.ImageURL != "https://cdn/1.png" || done.FinishedAt == nil {
		t.Fatalf("expected completed image job, got %+v", done)
	}
	failed, _ := jobs.Render(ctx, "col-failed")
	if failed.Status != models.RenderFailed || failed.LastError == "" {
		t.Fatalf("expected failed collection job, got %+v", failed)
	}
	for _, id := range []string{"vid-queued", "img-flaky"} {
		job, _ := jobs.Render(ctx, id)
		if job.Status != models.RenderPending {
			t.Fatalf("expected %s still pending, got %s", id, job.Status)
		}
	}
	if len(archive.jobs) != 1 || archive.jobs[0] != "img-done" {
		t.Fatalf("expected only img-done archived, got %v", archive.jobs)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 logged events, got %v", events)
	}

	// Nothing new finished, so a second pass settles nothing.
	settled, err = w.Sweep(ctx)
	if err != nil || settled != 0 {
		t.Fatalf("expected nothing to settle, got %d, %v", settled, err)
	}
}

func TestSweepBatchSize(t *testing.T) {
	ctx := context.Background()
	jobs := storage.NewJobStore(storage.NewMemoryStore())
	seed(t, jobs,
		models.RenderJob{ID: "a", RemoteID: "img_a", Kind: models.RenderSingleImage, Status: models.RenderPending},
		models.RenderJob{ID: "b", RemoteID: "img_b", Kind: models.RenderSingleImage, Status: models.RenderPending},
		models.RenderJob{ID: "c", RemoteID: "img_c", Kind: models.RenderSingleImage, Status: models.RenderPending},
	)
	images := &fakeImages{images: map[string]render.ImageStatus{
		"img_a": {Status: "completed", ImageURL: "https://cdn/a.png"},
		"img_b": {Status: "completed", ImageURL: "https://cdn/b.png"},
		"img_c": {Status: "completed", ImageURL: "https://cdn/c.png"},
	}}
	poller := render.NewRenderJobPoller(images, &fakeVideos{}, config.PollConfig{}, noSleep)

	w := NewSweepWorker(jobs, poller, 2)
	settled, err := w.Sweep(ctx)
	if err != nil || settled != 2 {
		t.Fatalf("expected 2 settled, got %d, %v", settled, err)
	}
	last, _ := jobs.Render(ctx, "c")
	if last.Status != models.RenderPending {
		t.Fatalf("expected the newest job left for the next sweep, got %s", last.Status)
	}
}

func TestSweepRunsOnTrigger(t *testing.T) {
	jobs := storage.NewJobStore(storage.NewMemoryStore())
	seed(t, jobs, models.RenderJob{ID: "a", RemoteID: "img_a", Kind: models.RenderSingleImage, Status: models.RenderPending})
	images := &fakeImages{images: map[string]render.ImageStatus{"img_a": {Status: "completed", ImageURL: "https://cdn/a.png"}}}
	poller := render.NewRenderJobPoller(images, &fakeVideos{}, config.PollConfig{}, noSleep)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewSweepWorker(jobs, poller, 0)
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	w.Trigger()
	w.Trigger()

	deadline := time.Now().Add(2 * time.Second)
	for {
		job, _ := jobs.Render(context.Background(), "a")
		if job.Status == models.RenderCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected triggered sweep to complete the job")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
}
