package scraper

import (
	"regexp"

	"listing_studio/models"
	"listing_studio/normalize"
)

var realtorURLRegex = regexp.MustCompile(`^https://(?:www\.)?realtor\.com/realestateandhomes-detail/[^?#\s]+(?:[?#].*)?$`)

const realtorPrompt = `Extract the property location, number of bedrooms, number of bathrooms,
square footage, property price, all property photo gallery image links, property description,
and features.`

var realtorSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"property": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"location":       map[string]any{"type": "string"},
				"bedrooms":       map[string]any{"type": "number"},
				"bathrooms":      map[string]any{"type": "number"},
				"square_footage": map[string]any{"type": "number"},
				"price":          map[string]any{"type": "string"},
				"photo_gallery":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"description":    map[string]any{"type": "string"},
				"features":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required": []string{"location", "price"},
		},
	},
	"required": []string{"property"},
}

var realtorFieldKeys = fieldKeys{
	Address:     append([]string{"location"}, defaultFieldKeys.Address...),
	Price:       defaultFieldKeys.Price,
	Bedrooms:    defaultFieldKeys.Bedrooms,
	Bathrooms:   defaultFieldKeys.Bathrooms,
	SquareFeet:  append([]string{"square_footage"}, defaultFieldKeys.SquareFeet...),
	Images:      append([]string{"photo_gallery", "photos"}, defaultFieldKeys.Images...),
	Features:    append([]string{"features"}, defaultFieldKeys.Features...),
	Description: defaultFieldKeys.Description,
}

// RealtorAdapter handles realtor.com detail pages. The site exposes no agent
// block, so agent details come only from the caller's profile.
type RealtorAdapter struct{}

func (a *RealtorAdapter) Kind() SourceKind { return SourceRealtor }

func (a *RealtorAdapter) Currency() string { return "$" }

// Validate drops tracking query strings and fragments realtor.com share links carry.
func (a *RealtorAdapter) Validate(rawURL string) (string, error) {
	return validateURL(SourceRealtor, realtorURLRegex, rawURL, true)
}

func (a *RealtorAdapter) Request(url string) ExtractRequest {
	return ExtractRequest{
		URLs:   []string{url},
		Prompt: realtorPrompt,
		Schema: realtorSchema,
	}
}

// Normalize resolves price ranges ("$400,000 - $450,000") to the upper bound.
func (a *RealtorAdapter) Normalize(data map[string]any) (models.PropertyRecord, models.AgentDetails) {
	property, _, _ := sections(data)
	if price := normalize.String(property, realtorFieldKeys.Price...); price != "" {
		scoped := make(map[string]any, len(property))
		for k, v := range property {
			scoped[k] = v
		}
		for _, k := range realtorFieldKeys.Price {
			delete(scoped, k)
		}
		scoped["price"] = normalize.MaxOfRange(price)
		property = scoped
	}
	return normalizeProperty(property, realtorFieldKeys, a.Currency()), models.AgentDetails{}
}
