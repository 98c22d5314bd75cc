package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"listing_studio/models"
)

// ExtractRequest is the body sent to the extraction service.
type ExtractRequest struct {
	URLs   []string       `json:"urls"`
	Prompt string         `json:"prompt"`
	Schema map[string]any `json:"schema,omitempty"`
}

// SourceAdapter holds the per-site parts of extraction: URL validation, the
// extraction instruction and the mapping from the site's data shape onto
// PropertyRecord.
type SourceAdapter interface {
	Kind() SourceKind
	Currency() string
	// Validate checks the URL against the site's own pattern and returns the
	// cleaned URL to submit.
	Validate(rawURL string) (string, error)
	Request(url string) ExtractRequest
	Normalize(data map[string]any) (models.PropertyRecord, models.AgentDetails)
}

// GetAdapter returns the adapter for a classified source.
func GetAdapter(kind SourceKind) (SourceAdapter, error) {
	switch kind {
	case SourceRightmove:
		return &RightmoveAdapter{}, nil
	case SourceZillow:
		return &ZillowAdapter{}, nil
	case SourceZoopla:
		return &ZooplaAdapter{}, nil
	case SourceOnTheMarket:
		return &OnTheMarketAdapter{}, nil
	case SourceRealtor:
		return &RealtorAdapter{}, nil
	default:
		return nil, fmt.Errorf("unknown source kind: %s", kind)
	}
}

// checkURL rejects anything that is not an absolute http(s) URL.
func checkURL(rawURL string) error {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return &ValidationError{URL: rawURL, Reason: "empty url"}
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return &ValidationError{URL: rawURL, Reason: err.Error()}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{URL: rawURL, Reason: "missing http(s) scheme"}
	}
	if parsed.Host == "" {
		return &ValidationError{URL: rawURL, Reason: "missing host"}
	}
	return nil
}

// validateURL applies a site pattern and strips the query string and fragment
// when stripQuery is set.
func validateURL(kind SourceKind, re *regexp.Regexp, rawURL string, stripQuery bool) (string, error) {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return "", &ValidationError{URL: rawURL, Source: kind, Reason: "empty url"}
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &ValidationError{URL: rawURL, Source: kind, Reason: "not an absolute url"}
	}
	if !re.MatchString(u) {
		return "", &ValidationError{URL: rawURL, Source: kind, Reason: "does not match " + re.String()}
	}
	if stripQuery {
		parsed.RawQuery = ""
		parsed.Fragment = ""
		parsed.RawFragment = ""
		return parsed.String(), nil
	}
	return u, nil
}
