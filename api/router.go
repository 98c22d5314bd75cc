package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	chirender "github.com/go-chi/render"
	"listing_studio/config"
	"listing_studio/logging"
	"listing_studio/services"
)

type Deps struct {
	Pipeline      *services.Pipeline
	Health        *services.HealthcheckService
	WebhookSecret string
}

// NewRouter builds the HTTP surface over the pipeline.
func NewRouter(cfg config.ServerConfig, d Deps) http.Handler {
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = 60
	}
	window := cfg.RateWindow
	if window <= 0 {
		window = time.Minute
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logging.New("http"), NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(chirender.SetContentType(chirender.ContentTypeJSON))

	h := &handler{pipeline: d.Pipeline, checker: d.Health, webhookSecret: d.WebhookSecret}

	r.Get("/health", h.health)
	r.Post("/webhooks/bannerbear", h.bannerbearWebhook)

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(rateLimit, window)) // protect render and extraction quota
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		r.Post("/extract", h.extract)
		r.Post("/dispatch", h.dispatch)
		r.Get("/jobs/{jobID}", h.job)
	})

	return r
}
