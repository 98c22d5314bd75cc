package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"listing_studio/models"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

type fakeImages struct {
	created     []ImagePayload
	collections []ImagePayload
	imageCalls  int
	image       func(n int) (ImageStatus, error)
	collection  func(n int) (CollectionStatus, error)
	createErr   error
}

func (f *fakeImages) CreateImage(_ context.Context, p ImagePayload) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, p)
	return "img_remote", nil
}

func (f *fakeImages) CreateCollection(_ context.Context, p ImagePayload) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.collections = append(f.collections, p)
	return "col_remote", nil
}

func (f *fakeImages) Image(_ context.Context, _ string) (ImageStatus, error) {
	f.imageCalls++
	if f.image == nil {
		return ImageStatus{}, errors.New("unexpected image status call")
	}
	return f.image(f.imageCalls)
}

func (f *fakeImages) Collection(_ context.Context, _ string) (CollectionStatus, error) {
	f.imageCalls++
	if f.collection == nil {
		return CollectionStatus{}, errors.New("unexpected collection status call")
	}
	return f.collection(f.imageCalls)
}

type fakeVideos struct {
	rendered []VideoPayload
	calls    int
	status   func(n int) (VideoStatus, error)
}

func (f *fakeVideos) Render(_ context.Context, p VideoPayload) (string, error) {
	f.rendered = append(f.rendered, p)
	return "vid_remote", nil
}

func (f *fakeVideos) RenderStatus(_ context.Context, _ string) (VideoStatus, error) {
	f.calls++
	if f.status == nil {
		return VideoStatus{}, errors.New("unexpected video status call")
	}
	return f.status(f.calls)
}

type sleepLog struct {
	delays []time.Duration
}

func (s *sleepLog) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

type renderLog struct {
	saved []models.RenderJob
}

func (r *renderLog) SaveRender(_ context.Context, job *models.RenderJob) error {
	r.saved = append(r.saved, *job)
	return nil
}
