package httputil

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"listing_studio/config"
	"listing_studio/logging"
)

type Clients struct {
	Extraction *http.Client          // Firecrawl; retries handled by the extractor's policy
	Render     *retryablehttp.Client // Bannerbear/Shotstack; transport-level retries
}

func NewClients(cfg *config.Config) *Clients {
	timeout := cfg.Firecrawl.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Clients{
		Extraction: &http.Client{Timeout: timeout},
		Render:     NewRenderClient(30 * time.Second),
	}
}

// NewRenderClient retries connection errors and 5xx/429 responses up to three
// times before the caller sees the response.
func NewRenderClient(timeout time.Duration) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = timeout
	rc.Logger = logging.New("render-http")
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return rc
}
