package models

import "time"

// PropertyRecord is the canonical shape every source adapter produces.
type PropertyRecord struct {
	ID          string       `json:"id"`
	Source      string       `json:"source"`
	SourceURL   string       `json:"source_url"`
	ListingType string       `json:"listing_type,omitempty"`
	Address     string       `json:"address"`
	Price       string       `json:"price"`
	Bedrooms    *int         `json:"bedrooms"`
	Bathrooms   *int         `json:"bathrooms"`
	SquareFeet  *int         `json:"square_feet"`
	MainImage   string       `json:"main_image,omitempty"`
	Images      []string     `json:"images"`
	KeyFeatures []string     `json:"key_features"`
	Description string       `json:"description"`
	Agent       AgentDetails `json:"agent"`
	Caption     string       `json:"caption,omitempty"`
	ExtractedAt time.Time    `json:"extracted_at"`
}

// HasEssentials reports whether at least one of price, address or images resolved.
func (r *PropertyRecord) HasEssentials() bool {
	return r.Price != "" || r.Address != "" || len(r.Images) > 0
}

// SetImages replaces the image list and keeps MainImage pointing at its first entry.
func (r *PropertyRecord) SetImages(images []string) {
	r.Images = images
	r.MainImage = ""
	if len(images) > 0 {
		r.MainImage = images[0]
	}
}

// AgentProfile is supplied by the caller's account and overrides scraped agent fields.
type AgentProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	PhotoURL string `json:"photo_url"`
}

// AgentDetails is the resolved agent/brand block attached to a record.
type AgentDetails struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
	Address  string `json:"address,omitempty"`
	Logo     string `json:"logo,omitempty"`
}

// MergeAgent overlays the profile on the scraped details. Profile fields win;
// scraped values fill whatever the profile leaves empty.
func MergeAgent(scraped AgentDetails, profile *AgentProfile) AgentDetails {
	if profile == nil {
		return scraped
	}
	merged := scraped
	if profile.Name != "" {
		merged.Name = profile.Name
	}
	if profile.Email != "" {
		merged.Email = profile.Email
	}
	if profile.Phone != "" {
		merged.Phone = profile.Phone
	}
	if profile.PhotoURL != "" {
		merged.PhotoURL = profile.PhotoURL
	}
	return merged
}
