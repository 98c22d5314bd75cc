package workers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"listing_studio/models"
	"listing_studio/storage"
)

const maxAssetSize = 200 * 1024 * 1024

// Uploader stores a blob under a key and reports where it is served from.
type Uploader interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
	PublicURL(key string) string
}

// ArchiveWorker downloads a finished job's assets and uploads them to the
// archive bucket. Render services only host output for a limited time.
type ArchiveWorker struct {
	uploader   Uploader
	httpClient *http.Client
}

func NewArchiveWorker(uploader Uploader, client *http.Client) *ArchiveWorker {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &ArchiveWorker{uploader: uploader, httpClient: client}
}

// Archive copies every asset of a completed job and records the archived URLs
// on job.Result. Assets that fail are skipped; the first error is returned.
func (w *ArchiveWorker) Archive(ctx context.Context, job *models.RenderJob) error {
	if job.Result == nil || len(job.Result.Archived) > 0 {
		return nil
	}

	var errs []error
	for i, assetURL := range job.Result.URLs() {
		key, err := w.copy(ctx, job.ID, i, assetURL)
		if err != nil {
			log.Printf("Archive: %s asset %d failed: %v", job.ID, i, err)
			errs = append(errs, err)
			continue
		}
		job.Result.Archived = append(job.Result.Archived, w.uploader.PublicURL(key))
	}

	if len(job.Result.Archived) > 0 {
		log.Printf("Archive: %s copied %d assets", job.ID, len(job.Result.Archived))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (w *ArchiveWorker) copy(ctx context.Context, jobID string, n int, assetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	ext := guessExtension(assetURL, contentType)
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}

	key := storage.ArchiveKey(jobID, n, ext)
	if err := w.uploader.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return key, nil
}

// guessExtension determines file extension from URL or content-type
func guessExtension(assetURL, contentType string) string {
	if i := strings.IndexAny(assetURL, "?#"); i >= 0 {
		assetURL = assetURL[:i]
	}
	ext := strings.ToLower(path.Ext(assetURL))
	if isAssetExt(ext) {
		return ext
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "application/zip":
		return ".zip"
	default:
		return ".png"
	}
}

func isAssetExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".mp4", ".mov", ".zip":
		return true
	}
	return false
}
