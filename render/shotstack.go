package render

import (
	"context"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"listing_studio/config"
)

const (
	shotstackDefaultBase = "https://api.shotstack.io"
	shotstackProvider    = "shotstack"
)

// VideoStatus is the state of a rendered video asset. URL is set once Status
// is "ready".
type VideoStatus struct {
	Status string
	URL    string
}

// VideoService is the video-composition API.
type VideoService interface {
	Render(ctx context.Context, payload VideoPayload) (string, error)
	RenderStatus(ctx context.Context, id string) (VideoStatus, error)
}

// ShotstackClient renders saved Shotstack templates and reads back the
// hosted asset.
type ShotstackClient struct {
	baseURL string
	apiKey  string
	s3      config.ShotstackConfig
	http    *retryablehttp.Client
}

func NewShotstackClient(cfg config.ShotstackConfig, client *retryablehttp.Client) *ShotstackClient {
	base := cfg.BaseURL
	if base == "" {
		base = shotstackDefaultBase
	}
	if client == nil {
		client = retryablehttp.NewClient()
	}
	return &ShotstackClient{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  cfg.APIKey,
		s3:      cfg,
		http:    client,
	}
}

// Render submits a template render. When an S3 bucket is configured the
// output goes there and Shotstack's own hosting is excluded.
func (c *ShotstackClient) Render(ctx context.Context, payload VideoPayload) (string, error) {
	if c.apiKey == "" {
		return "", &RenderError{Provider: shotstackProvider, Reason: "SHOTSTACK_API_KEY not set"}
	}
	if c.s3.S3Bucket != "" && len(payload.Destinations) == 0 {
		payload.Destinations = []Destination{
			{Provider: "s3", Options: &DestinationOptions{Region: c.s3.S3Region, Bucket: c.s3.S3Bucket, Prefix: c.s3.S3Prefix}},
			{Provider: "shotstack", Exclude: true},
		}
	}

	var queued struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		Response struct {
			ID      string `json:"id"`
			Message string `json:"message"`
		} `json:"response"`
	}
	if err := doJSON(ctx, c.http, shotstackProvider, http.MethodPost, c.baseURL+"/edit/v1/templates/render", c.headers(), payload, &queued); err != nil {
		return "", err
	}
	if queued.Response.ID == "" {
		return "", &RenderError{Provider: shotstackProvider, Reason: "response carried no id: " + queued.Message}
	}
	return queued.Response.ID, nil
}

// RenderStatus looks up the hosted asset for a render id. The serve API
// answers 404 until the asset exists, which reads as still pending.
func (c *ShotstackClient) RenderStatus(ctx context.Context, id string) (VideoStatus, error) {
	var assets struct {
		Data []struct {
			Type       string `json:"type"`
			Attributes struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				URL    string `json:"url"`
			} `json:"attributes"`
		} `json:"data"`
	}
	err := doJSON(ctx, c.http, shotstackProvider, http.MethodGet, c.baseURL+"/serve/v1/assets/render/"+id, c.headers(), nil, &assets)
	if statusIs(err, http.StatusNotFound) {
		return VideoStatus{Status: shotstackQueued}, nil
	}
	if err != nil {
		return VideoStatus{}, err
	}

	status := VideoStatus{Status: shotstackQueued}
	for _, asset := range assets.Data {
		switch asset.Attributes.Status {
		case shotstackReady:
			if asset.Attributes.URL != "" {
				return VideoStatus{Status: shotstackReady, URL: asset.Attributes.URL}, nil
			}
		case shotstackFailed:
			status = VideoStatus{Status: shotstackFailed}
		default:
			if status.Status != shotstackFailed && asset.Attributes.Status != "" {
				status.Status = asset.Attributes.Status
			}
		}
	}
	return status, nil
}

func (c *ShotstackClient) headers() map[string]string {
	return map[string]string{"x-api-key": c.apiKey}
}

// Shotstack asset statuses.
const (
	shotstackQueued = "queued"
	shotstackReady  = "ready"
	shotstackFailed = "failed"
)
