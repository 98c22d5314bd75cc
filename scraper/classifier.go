package scraper

import (
	"regexp"
	"strings"

	"listing_studio/config"
)

type SourceKind string

const (
	SourceRightmove   SourceKind = "rightmove"
	SourceZoopla      SourceKind = "zoopla"
	SourceOnTheMarket SourceKind = "onthemarket"
	SourceRealtor     SourceKind = "realtor"
	SourceZillow      SourceKind = "zillow"
)

type sourcePattern struct {
	kind SourceKind
	re   *regexp.Regexp
}

// Declaration order is precedence order; the first match wins.
var sourcePatterns = []sourcePattern{
	{SourceRightmove, regexp.MustCompile(`^https://(?:www\.)?rightmove\.co\.uk/properties/\d+`)},
	{SourceZoopla, regexp.MustCompile(`^https://(?:www\.)?zoopla\.co\.uk/(?:to-rent|for-sale|new-homes)/details/\d+`)},
	{SourceOnTheMarket, regexp.MustCompile(`^https://(?:www\.)?onthemarket\.com/details/\d+`)},
	{SourceRealtor, regexp.MustCompile(`^https://(?:www\.)?realtor\.com/realestateandhomes-detail/`)},
	{SourceZillow, regexp.MustCompile(`^https://(?:www\.)?zillow\.com/`)},
}

// Classifier maps a listing URL to the source adapter that handles it.
type Classifier struct {
	patterns []sourcePattern
}

// NewClassifier builds a classifier over every source not disabled in cfg.
func NewClassifier(cfg *config.Config) *Classifier {
	c := &Classifier{}
	for _, p := range sourcePatterns {
		if !cfg.Source(string(p.kind)).IsEnabled() {
			continue
		}
		c.patterns = append(c.patterns, p)
	}
	return c
}

func (c *Classifier) Classify(rawURL string) (SourceKind, error) {
	u := strings.TrimSpace(rawURL)
	for _, p := range c.patterns {
		if p.re.MatchString(u) {
			return p.kind, nil
		}
	}

	tested := make([]string, 0, len(c.patterns))
	for _, p := range c.patterns {
		tested = append(tested, p.re.String())
	}
	return "", &UnsupportedSourceError{URL: rawURL, Patterns: tested}
}

// Kinds lists the enabled sources in precedence order.
func (c *Classifier) Kinds() []SourceKind {
	kinds := make([]SourceKind, 0, len(c.patterns))
	for _, p := range c.patterns {
		kinds = append(kinds, p.kind)
	}
	return kinds
}
