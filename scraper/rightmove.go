package scraper

import (
	"regexp"

	"listing_studio/models"
)

var rightmoveURLRegex = regexp.MustCompile(`^https://(?:www\.)?rightmove\.co\.uk/properties/\d+/?(?:[#?].*)?$`)

const rightmovePrompt = `Extract the following property details from this Rightmove listing:
- property: address, price (including any period such as pcm or pw), bedrooms, bathrooms,
  square footage, full description, key features as a list, and every gallery image URL
  in the order shown.
- estate_agent: the marketing agent's name, branch address and logo image URL.
Return null for anything that is not present on the page.`

// RightmoveAdapter handles rightmove.co.uk property pages.
type RightmoveAdapter struct{}

func (a *RightmoveAdapter) Kind() SourceKind { return SourceRightmove }

func (a *RightmoveAdapter) Currency() string { return "£" }

// Validate strips the "#/media" style fragment and any query string the site
// appends when a listing is shared.
func (a *RightmoveAdapter) Validate(rawURL string) (string, error) {
	return validateURL(SourceRightmove, rightmoveURLRegex, rawURL, true)
}

func (a *RightmoveAdapter) Request(url string) ExtractRequest {
	return ExtractRequest{
		URLs:   []string{url},
		Prompt: rightmovePrompt,
	}
}

// Normalize accepts {property, estate_agent}, {property, estateAgent} or a flat
// object with agent_* keys.
func (a *RightmoveAdapter) Normalize(data map[string]any) (models.PropertyRecord, models.AgentDetails) {
	property, agent, nested := sections(data, "estate_agent", "estateAgent", "agent")
	rec := normalizeProperty(property, defaultFieldKeys, a.Currency())
	return rec, resolveAgent(agent, nested)
}
