package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"listing_studio/config"
	"listing_studio/render"
	"listing_studio/scraper"
	"listing_studio/storage"
)

const testListingURL = "https://www.rightmove.co.uk/properties/123"

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

// upstream plays Firecrawl and Bannerbear. collection answers the n-th status
// request for a collection.
type upstream struct {
	mu          sync.Mutex
	extract     []byte
	collection  func(n int) []byte
	checks      int
	collections int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/extract":
		w.Write(u.extract)
	case r.Method == http.MethodPost && r.URL.Path == "/v2/collections":
		u.collections++
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"uid":"col_1","status":"pending"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/v2/collections/col_1":
		u.checks++
		w.Write(u.collection(u.checks))
	default:
		http.NotFound(w, r)
	}
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

type harness struct {
	pipeline *Pipeline
	jobs     *storage.JobStore
	up       *upstream
}

func newHarness(t *testing.T, up *upstream) *harness {
	t.Helper()
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Firecrawl:  config.FirecrawlConfig{APIKey: "fc-key", BaseURL: srv.URL},
		Bannerbear: config.BannerbearConfig{APIKey: "bb-key", BaseURL: srv.URL, TemplateSetID: "set_1"},
		Shotstack:  config.ShotstackConfig{APIKey: "ss-key", BaseURL: srv.URL},
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil

	images := render.NewBannerbearClient(cfg.Bannerbear, rc)
	videos := render.NewShotstackClient(cfg.Shotstack, rc)
	jobs := storage.NewJobStore(storage.NewMemoryStore())

	p := NewPipeline(
		scraper.NewExtractor(cfg, scraper.NewFirecrawlClient(cfg.Firecrawl, srv.Client()), noSleep),
		render.NewDispatcher(cfg, images, videos),
		render.NewRenderJobPoller(images, videos, config.PollConfig{MaxAttempts: 5}, noSleep),
		jobs,
	)
	return &harness{pipeline: p, jobs: jobs, up: up}
}
