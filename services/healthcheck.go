package services

import (
	"context"
	"errors"
	"time"

	"listing_studio/config"
	"listing_studio/storage"
)

// HealthReport is what GET /health returns.
type HealthReport struct {
	Status    string          `json:"status"`
	Store     string          `json:"store"`
	Services  map[string]bool `json:"services"`
	Sources   []string        `json:"sources,omitempty"`
	CheckedAt time.Time       `json:"checked_at"`
}

// SourceLister reports which listing sites are accepted for extraction.
type SourceLister interface {
	Sources() []string
}

// HealthcheckService reports whether the store answers and which external
// services have credentials configured.
type HealthcheckService struct {
	cfg     *config.Config
	store   storage.Store
	sources SourceLister
}

func NewHealthcheckService(cfg *config.Config, store storage.Store) *HealthcheckService {
	return &HealthcheckService{cfg: cfg, store: store}
}

func (s *HealthcheckService) SetSources(l SourceLister) {
	s.sources = l
}

func (s *HealthcheckService) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Status: "ok",
		Store:  "ok",
		Services: map[string]bool{
			"firecrawl":  s.cfg.Firecrawl.APIKey != "",
			"bannerbear": s.cfg.Bannerbear.APIKey != "",
			"shotstack":  s.cfg.Shotstack.APIKey != "",
			"s3":         s.cfg.S3.Enabled(),
		},
		CheckedAt: time.Now().UTC(),
	}
	if s.sources != nil {
		report.Sources = s.sources.Sources()
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := s.store.Get(ctx, "health:probe"); err != nil && !errors.Is(err, storage.ErrNotFound) {
		report.Status = "degraded"
		report.Store = err.Error()
	}
	return report
}
