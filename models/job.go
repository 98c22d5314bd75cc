package models

import "time"

type ExtractionStatus string

const (
	ExtractionSubmitted ExtractionStatus = "submitted"
	ExtractionPolling   ExtractionStatus = "polling"
	ExtractionCompleted ExtractionStatus = "completed"
	ExtractionFailed    ExtractionStatus = "failed"
	ExtractionTimedOut  ExtractionStatus = "timed_out"
)

type ExtractionJob struct {
	ID        string           `json:"id"`
	RemoteID  string           `json:"remote_id,omitempty"`
	SourceURL string           `json:"source_url"`
	Source    string           `json:"source"`
	Status    ExtractionStatus `json:"status"`
	Attempts  int              `json:"attempts"`
	LastError string           `json:"last_error,omitempty"`
	RecordID  string           `json:"record_id,omitempty"`
	StartedAt time.Time        `json:"started_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type RenderKind string

const (
	RenderSingleImage RenderKind = "single_image"
	RenderCollection  RenderKind = "collection"
	RenderVideo       RenderKind = "video"
)

type RenderStatus string

const (
	RenderPending   RenderStatus = "pending"
	RenderCompleted RenderStatus = "completed"
	RenderFailed    RenderStatus = "failed"
)

// Modification is one named template substitution. Exactly one of Text or
// ImageURL is set.
type Modification struct {
	Name     string  `json:"name"`
	Text     *string `json:"text,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

func TextMod(name, text string) Modification {
	return Modification{Name: name, Text: &text}
}

func ImageMod(name, url string) Modification {
	return Modification{Name: name, ImageURL: &url}
}

// MergeField is a find/replace pair for video templates.
type MergeField struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

type RenderJob struct {
	ID            string         `json:"id"`
	RemoteID      string         `json:"remote_id"`
	Kind          RenderKind     `json:"kind"`
	Status        RenderStatus   `json:"status"`
	TemplateID    string         `json:"template_id"`
	RecordID      string         `json:"record_id"`
	Modifications []Modification `json:"modifications,omitempty"`
	Merge         []MergeField   `json:"merge,omitempty"`
	Result        *AssetResult   `json:"result,omitempty"`
	Caption       string         `json:"caption,omitempty"`
	LastError     string         `json:"last_error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	FinishedAt    *time.Time     `json:"finished_at,omitempty"`
}

// RenderJobHandle is what Dispatch hands back; Kind selects the poller.
type RenderJobHandle struct {
	ID       string     `json:"id"`
	RemoteID string     `json:"remote_id"`
	Kind     RenderKind `json:"kind"`
}

type RenderedImage struct {
	URL      string `json:"url"`
	Template string `json:"template,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

type AssetResult struct {
	Kind     RenderKind      `json:"kind"`
	ImageURL string          `json:"image_url,omitempty"`
	Standard []RenderedImage `json:"standard,omitempty"`
	Large    []RenderedImage `json:"large,omitempty"`
	ZipURL   string          `json:"zip_url,omitempty"`
	VideoURL string          `json:"video_url,omitempty"`
	Archived []string        `json:"archived,omitempty"`
}

// URLs flattens the result into every asset URL it carries, standard bucket first.
func (a *AssetResult) URLs() []string {
	var urls []string
	if a.ImageURL != "" {
		urls = append(urls, a.ImageURL)
	}
	for _, img := range a.Standard {
		urls = append(urls, img.URL)
	}
	for _, img := range a.Large {
		urls = append(urls, img.URL)
	}
	if a.VideoURL != "" {
		urls = append(urls, a.VideoURL)
	}
	return urls
}

// Complete marks the job finished with its assets.
func (j *RenderJob) Complete(result *AssetResult, at time.Time) {
	j.Status = RenderCompleted
	j.Result = result
	j.LastError = ""
	j.FinishedAt = &at
}

// Fail marks the job finished without assets.
func (j *RenderJob) Fail(reason string, at time.Time) {
	j.Status = RenderFailed
	j.LastError = reason
	j.FinishedAt = &at
}
