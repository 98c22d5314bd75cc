package scraper

import (
	"regexp"

	"listing_studio/models"
)

var onTheMarketURLRegex = regexp.MustCompile(`^https://(?:www\.)?onthemarket\.com/details/\d+/?(?:[?#].*)?$`)

const onTheMarketPrompt = `Extract the property address, price, bedrooms, bathrooms, square footage,
description, all gallery image URLs and key features from this OnTheMarket listing, and the
estate agent's name, address and logo URL.`

// OnTheMarketAdapter handles onthemarket.com detail pages.
type OnTheMarketAdapter struct{}

func (a *OnTheMarketAdapter) Kind() SourceKind { return SourceOnTheMarket }

func (a *OnTheMarketAdapter) Currency() string { return "£" }

func (a *OnTheMarketAdapter) Validate(rawURL string) (string, error) {
	return validateURL(SourceOnTheMarket, onTheMarketURLRegex, rawURL, true)
}

func (a *OnTheMarketAdapter) Request(url string) ExtractRequest {
	return ExtractRequest{
		URLs:   []string{url},
		Prompt: onTheMarketPrompt,
		Schema: propertySchema,
	}
}

func (a *OnTheMarketAdapter) Normalize(data map[string]any) (models.PropertyRecord, models.AgentDetails) {
	property, agent, nested := sections(data, "estate_agent", "estateAgent", "agent")
	rec := normalizeProperty(property, defaultFieldKeys, a.Currency())
	return rec, resolveAgent(agent, nested)
}
