package scraper

import (
	"regexp"

	"listing_studio/models"
	"listing_studio/normalize"
)

var zillowURLRegex = regexp.MustCompile(`^https://(?:www\.)?zillow\.com/(?:[^/]+/)*.*$`)

const zillowPrompt = `Extract comprehensive information about this Zillow listing, focusing on the
management company or listing agent:
- management_company: name, phone_number (often shown as (XXX) XXX-XXXX below the name), logo URL.
- property: full address, price (monthly rent or sale price), bedrooms, bathrooms, square
  footage, description, key features and amenities, and all gallery image URLs.`

// ZillowAdapter handles zillow.com home and rental pages. Zillow rarely exposes
// a structured agent block, so the contact number is recovered from free text.
type ZillowAdapter struct{}

func (a *ZillowAdapter) Kind() SourceKind { return SourceZillow }

func (a *ZillowAdapter) Currency() string { return "$" }

func (a *ZillowAdapter) Validate(rawURL string) (string, error) {
	return validateURL(SourceZillow, zillowURLRegex, rawURL, false)
}

func (a *ZillowAdapter) Request(url string) ExtractRequest {
	return ExtractRequest{
		URLs:   []string{url},
		Prompt: zillowPrompt,
	}
}

func (a *ZillowAdapter) Normalize(data map[string]any) (models.PropertyRecord, models.AgentDetails) {
	property, agent, nested := sections(data,
		"management_company", "managementCompany", "realtor", "agent", "listing_agent", "contact")
	rec := normalizeProperty(property, defaultFieldKeys, a.Currency())

	details := resolveAgent(agent, nested)
	if details.Name == "" {
		details.Name = normalize.String(data, "management_company_name", "company_name", "listed_by")
	}
	if details.Phone == "" {
		details.Phone = zillowPhone(data, property)
	} else if p := normalize.Phone(details.Phone); p != "" {
		details.Phone = p
	}

	return rec, details
}

// zillowPhone searches the whole payload first, then the property block, so a
// number in the top-level description is found even when the agent block is
// missing.
func zillowPhone(data, property map[string]any) string {
	if p := normalize.FindPhone(data); p != "" {
		return p
	}
	return normalize.FindPhone(property)
}
