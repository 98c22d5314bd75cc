package render

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"listing_studio/config"
	"listing_studio/models"
)

const (
	bannerbearDefaultBase = "https://api.bannerbear.com"
	bannerbearProvider    = "bannerbear"
)

// Bannerbear job statuses.
const (
	bannerbearPending   = "pending"
	bannerbearCompleted = "completed"
	bannerbearFailed    = "failed"
)

// ImageStatus is a Bannerbear image object, either standalone or one member
// of a collection.
type ImageStatus struct {
	UID          string `json:"uid"`
	Status       string `json:"status"`
	ImageURL     string `json:"image_url"`
	ImageURLJPG  string `json:"image_url_jpg"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Template     string `json:"template"`
	TemplateName string `json:"template_name"`
}

// CollectionStatus is a Bannerbear collection. Images is preferred; ImageURLs
// is the flat "<template>_image_url" map some responses carry instead.
type CollectionStatus struct {
	UID       string        `json:"uid"`
	Status    string        `json:"status"`
	Images    []ImageStatus `json:"images"`
	ImageURLs orderedURLs   `json:"image_urls"`
	ZipURL    string        `json:"zip_url"`
}

// ImageService is the image-composition API.
type ImageService interface {
	CreateImage(ctx context.Context, payload ImagePayload) (string, error)
	CreateCollection(ctx context.Context, payload ImagePayload) (string, error)
	Image(ctx context.Context, uid string) (ImageStatus, error)
	Collection(ctx context.Context, uid string) (CollectionStatus, error)
}

// BannerbearClient talks to the Bannerbear v2 API.
type BannerbearClient struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
}

func NewBannerbearClient(cfg config.BannerbearConfig, client *retryablehttp.Client) *BannerbearClient {
	base := cfg.BaseURL
	if base == "" {
		base = bannerbearDefaultBase
	}
	if client == nil {
		client = retryablehttp.NewClient()
	}
	return &BannerbearClient{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  cfg.APIKey,
		http:    client,
	}
}

func (c *BannerbearClient) CreateImage(ctx context.Context, payload ImagePayload) (string, error) {
	return c.create(ctx, "/v2/images", payload)
}

func (c *BannerbearClient) CreateCollection(ctx context.Context, payload ImagePayload) (string, error) {
	return c.create(ctx, "/v2/collections", payload)
}

func (c *BannerbearClient) create(ctx context.Context, path string, payload ImagePayload) (string, error) {
	if c.apiKey == "" {
		return "", &RenderError{Provider: bannerbearProvider, Reason: "BANNERBEAR_API_KEY not set"}
	}
	var created struct {
		UID    string `json:"uid"`
		Status string `json:"status"`
	}
	if err := doJSON(ctx, c.http, bannerbearProvider, http.MethodPost, c.baseURL+path, c.headers(), payload, &created); err != nil {
		return "", err
	}
	if created.UID == "" {
		return "", &RenderError{Provider: bannerbearProvider, Reason: "response carried no uid"}
	}
	return created.UID, nil
}

func (c *BannerbearClient) Image(ctx context.Context, uid string) (ImageStatus, error) {
	var img ImageStatus
	err := doJSON(ctx, c.http, bannerbearProvider, http.MethodGet, c.baseURL+"/v2/images/"+uid, c.headers(), nil, &img)
	return img, err
}

func (c *BannerbearClient) Collection(ctx context.Context, uid string) (CollectionStatus, error) {
	var col CollectionStatus
	err := doJSON(ctx, c.http, bannerbearProvider, http.MethodGet, c.baseURL+"/v2/collections/"+uid, c.headers(), nil, &col)
	return col, err
}

func (c *BannerbearClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

// RenderedImages returns the collection's images in arrival order, reading the
// images list when present and the image_urls map otherwise.
func (c CollectionStatus) RenderedImages() []models.RenderedImage {
	var out []models.RenderedImage
	if len(c.Images) > 0 {
		for _, img := range c.Images {
			if img.ImageURL == "" {
				continue
			}
			template := img.TemplateName
			if template == "" {
				template = img.Template
			}
			out = append(out, models.RenderedImage{URL: img.ImageURL, Template: template, Width: img.Width, Height: img.Height})
		}
		return out
	}
	for _, kv := range c.ImageURLs {
		if strings.HasSuffix(kv.Key, "_jpg") || kv.Value == "" {
			continue
		}
		out = append(out, models.RenderedImage{URL: kv.Value, Template: strings.TrimSuffix(kv.Key, "_image_url")})
	}
	return out
}

type urlEntry struct {
	Key   string
	Value string
}

// orderedURLs decodes a JSON object of string values keeping key order.
type orderedURLs []urlEntry

func (o *orderedURLs) UnmarshalJSON(data []byte) error {
	*o = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if s, ok := value.(string); ok {
			*o = append(*o, urlEntry{Key: key, Value: s})
		}
	}
	return nil
}
