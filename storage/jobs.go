package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"listing_studio/models"
)

const (
	extractionPrefix = "extraction:"
	renderPrefix     = "render:"
	remotePrefix     = "remote:"
	recordPrefix     = "record:"
	sessionPrefix    = "session:"
)

// JobStore checkpoints pipeline state as JSON values in a Store.
type JobStore struct {
	store Store
}

func NewJobStore(store Store) *JobStore {
	return &JobStore{store: store}
}

func (s *JobStore) SaveExtraction(ctx context.Context, job *models.ExtractionJob) error {
	return s.put(ctx, extractionPrefix+job.ID, job)
}

func (s *JobStore) Extraction(ctx context.Context, id string) (*models.ExtractionJob, error) {
	var job models.ExtractionJob
	if err := s.get(ctx, extractionPrefix+id, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// SaveRender writes the job and indexes it by the render service's id so
// webhooks can find it.
func (s *JobStore) SaveRender(ctx context.Context, job *models.RenderJob) error {
	if err := s.put(ctx, renderPrefix+job.ID, job); err != nil {
		return err
	}
	if job.RemoteID == "" {
		return nil
	}
	return s.store.Put(ctx, remotePrefix+job.RemoteID, []byte(job.ID))
}

func (s *JobStore) Render(ctx context.Context, id string) (*models.RenderJob, error) {
	var job models.RenderJob
	if err := s.get(ctx, renderPrefix+id, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobStore) RenderByRemote(ctx context.Context, remoteID string) (*models.RenderJob, error) {
	id, err := s.store.Get(ctx, remotePrefix+remoteID)
	if err != nil {
		return nil, err
	}
	return s.Render(ctx, string(id))
}

// PendingRenders returns up to limit render jobs still pending, oldest first.
// limit <= 0 means no limit.
func (s *JobStore) PendingRenders(ctx context.Context, limit int) ([]*models.RenderJob, error) {
	lister, ok := s.store.(Lister)
	if !ok {
		return nil, fmt.Errorf("store %T cannot list keys", s.store)
	}
	keys, err := lister.Keys(ctx, renderPrefix)
	if err != nil {
		return nil, fmt.Errorf("list render jobs: %w", err)
	}

	var pending []*models.RenderJob
	for _, key := range keys {
		job, err := s.Render(ctx, strings.TrimPrefix(key, renderPrefix))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if job.Status == models.RenderPending {
			pending = append(pending, job)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *JobStore) SaveRecord(ctx context.Context, rec *models.PropertyRecord) error {
	return s.put(ctx, recordPrefix+rec.ID, rec)
}

func (s *JobStore) Record(ctx context.Context, id string) (*models.PropertyRecord, error) {
	var rec models.PropertyRecord
	if err := s.get(ctx, recordPrefix+id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *JobStore) SaveProfile(ctx context.Context, token string, profile *models.AgentProfile) error {
	return s.put(ctx, sessionPrefix+token, profile)
}

// Profile resolves a session token to the agent profile stored for it.
func (s *JobStore) Profile(ctx context.Context, token string) (*models.AgentProfile, error) {
	var profile models.AgentProfile
	if err := s.get(ctx, sessionPrefix+token, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *JobStore) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.store.Put(ctx, key, data)
}

func (s *JobStore) get(ctx context.Context, key string, v any) error {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}
