package scraper

import (
	"regexp"

	"listing_studio/models"
)

var zooplaURLRegex = regexp.MustCompile(`^https://(?:www\.)?zoopla\.co\.uk/(?:to-rent|for-sale|new-homes)/details/\d+/?(?:[?#].*)?$`)

const zooplaPrompt = `Extract the property address, price, number of bedrooms, number of bathrooms,
square footage, description, every image URL and the key features list, plus the estate
agent's name, address and logo URL from this Zoopla listing.`

// propertySchema is the JSON schema shared by the UK portals that return a
// property block and an estate_agent block.
var propertySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"property": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"address":      map[string]any{"type": "string"},
				"price":        map[string]any{"type": "string"},
				"bedrooms":     map[string]any{"type": "number"},
				"bathrooms":    map[string]any{"type": "number"},
				"square_ft":    map[string]any{"type": "string"},
				"description":  map[string]any{"type": "string"},
				"images":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"key_features": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required": []string{"address", "price"},
		},
		"estate_agent": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":    map[string]any{"type": "string"},
				"address": map[string]any{"type": "string"},
				"logo":    map[string]any{"type": "string"},
			},
		},
	},
	"required": []string{"property"},
}

// ZooplaAdapter handles zoopla.co.uk listing detail pages.
type ZooplaAdapter struct{}

func (a *ZooplaAdapter) Kind() SourceKind { return SourceZoopla }

func (a *ZooplaAdapter) Currency() string { return "£" }

func (a *ZooplaAdapter) Validate(rawURL string) (string, error) {
	return validateURL(SourceZoopla, zooplaURLRegex, rawURL, true)
}

func (a *ZooplaAdapter) Request(url string) ExtractRequest {
	return ExtractRequest{
		URLs:   []string{url},
		Prompt: zooplaPrompt,
		Schema: propertySchema,
	}
}

func (a *ZooplaAdapter) Normalize(data map[string]any) (models.PropertyRecord, models.AgentDetails) {
	property, agent, nested := sections(data, "estate_agent", "estateAgent", "agent")
	rec := normalizeProperty(property, defaultFieldKeys, a.Currency())
	return rec, resolveAgent(agent, nested)
}
