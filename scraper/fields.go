package scraper

import (
	"listing_studio/models"
	"listing_studio/normalize"
)

// fieldKeys is a per-field list of candidate keys; the first present key wins.
type fieldKeys struct {
	Address     []string
	Price       []string
	Bedrooms    []string
	Bathrooms   []string
	SquareFeet  []string
	Images      []string
	Features    []string
	Description []string
}

// agentKeys resolves agent/brand fields, either inside a nested agent object
// or as prefixed keys on a flat payload.
type agentKeys struct {
	Name    []string
	Address []string
	Logo    []string
	Phone   []string
	Email   []string
	Photo   []string
}

var defaultFieldKeys = fieldKeys{
	Address:     []string{"address", "property_address", "propertyAddress", "location"},
	Price:       []string{"price", "property_price", "propertyPrice"},
	Bedrooms:    []string{"bedrooms", "bedroom", "bed", "beds"},
	Bathrooms:   []string{"bathrooms", "bathroom", "bath", "baths"},
	SquareFeet:  []string{"square_ft", "squareFt", "squareFeet", "square_footage", "size", "area"},
	Images:      []string{"images", "gallery_images", "galleryImages", "property_images", "image_urls", "photo_gallery", "photos", "allImages"},
	Features:    []string{"key_features", "keyFeatures", "features"},
	Description: []string{"description", "summary"},
}

var nestedAgentKeys = agentKeys{
	Name:    []string{"name", "agent_name", "company_name", "companyName"},
	Address: []string{"address", "agent_address", "office_address"},
	Logo:    []string{"logo", "logo_url", "logoUrl", "agent_logo"},
	Phone:   []string{"phone", "phone_number", "phoneNumber", "telephone", "contact"},
	Email:   []string{"email", "email_address"},
	Photo:   []string{"photo", "photo_url", "photoUrl"},
}

var flatAgentKeys = agentKeys{
	Name:    []string{"agent_name", "agentName", "estate_agent", "estateAgent", "estate_agent_name"},
	Address: []string{"agent_address", "agentAddress", "estate_agent_address"},
	Logo:    []string{"agent_logo", "agentLogo", "estate_agent_logo", "logo"},
	Phone:   []string{"agent_phone", "agentPhone"},
	Email:   []string{"agent_email", "agentEmail"},
	Photo:   []string{"agent_photo", "agentPhoto"},
}

// rootData unwraps the service's data field, which arrives either as an
// object or as a list holding one object per submitted URL.
func rootData(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok && len(m) > 0 {
				return m
			}
		}
	}
	return nil
}

// sections splits a payload into its property block and agent block. Flat
// payloads return themselves for both with nested set to false.
func sections(data map[string]any, agentBlocks ...string) (property, agent map[string]any, nested bool) {
	property = normalize.Object(data, "property", "listing")
	if property == nil {
		property = data
	}
	agent = normalize.Object(data, agentBlocks...)
	if agent == nil {
		return property, data, false
	}
	return property, agent, true
}

// normalizeProperty applies the shared field tables to a property block.
func normalizeProperty(property map[string]any, keys fieldKeys, currency string) models.PropertyRecord {
	rec := models.PropertyRecord{
		Address:     normalize.Address(normalize.String(property, keys.Address...)),
		Description: normalize.Text(normalize.String(property, keys.Description...)),
		KeyFeatures: []string{},
	}

	if v, ok := normalize.FirstPresent(property, keys.Price...); ok {
		rec.Price = normalize.Price(v, currency)
	}
	if v, ok := normalize.FirstPresent(property, keys.Bedrooms...); ok {
		rec.Bedrooms = normalize.Int(v)
	}
	if v, ok := normalize.FirstPresent(property, keys.Bathrooms...); ok {
		rec.Bathrooms = normalize.Int(v)
	}
	if v, ok := normalize.FirstPresent(property, keys.SquareFeet...); ok {
		rec.SquareFeet = normalize.SquareFeet(v)
	}
	if v, ok := normalize.FirstPresent(property, keys.Features...); ok {
		rec.KeyFeatures = normalize.Texts(normalize.Sequence(v))
	}

	images := []string{}
	if v, ok := normalize.FirstPresent(property, keys.Images...); ok {
		images = normalize.Sequence(v)
	}
	rec.SetImages(images)

	return rec
}

func normalizeAgent(agent map[string]any, keys agentKeys) models.AgentDetails {
	return models.AgentDetails{
		Name:     normalize.String(agent, keys.Name...),
		Address:  normalize.Address(normalize.String(agent, keys.Address...)),
		Logo:     normalize.String(agent, keys.Logo...),
		Phone:    normalize.String(agent, keys.Phone...),
		Email:    normalize.String(agent, keys.Email...),
		PhotoURL: normalize.String(agent, keys.Photo...),
	}
}

// resolveAgent picks the nested or flat agent table depending on shape.
func resolveAgent(agent map[string]any, nested bool) models.AgentDetails {
	if nested {
		return normalizeAgent(agent, nestedAgentKeys)
	}
	return normalizeAgent(agent, flatAgentKeys)
}
