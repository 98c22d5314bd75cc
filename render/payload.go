package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"listing_studio/models"
	"listing_studio/normalize"
)

// ImageSlots is the number of property image layers in every image template.
const ImageSlots = 24

// VideoImageSlots is the number of PROPERTY_IMAGE placeholders in the video template.
const VideoImageSlots = 8

const (
	zillowSource     = "zillow"
	transparentLogo  = "https://trofai.s3.us-east-1.amazonaws.com/transparent.png"
	maxFeatureLayers = 5
)

// ImagePayload is the body of a Bannerbear image or collection request.
// Exactly one of Template or TemplateSet is set before submission.
type ImagePayload struct {
	Template       string                `json:"template,omitempty"`
	TemplateSet    string                `json:"template_set,omitempty"`
	Modifications  []models.Modification `json:"modifications"`
	ProjectID      string                `json:"project_id,omitempty"`
	Metadata       map[string]any        `json:"metadata,omitempty"`
	WebhookURL     string                `json:"webhook_url,omitempty"`
	WebhookHeaders map[string]string     `json:"webhook_headers,omitempty"`
}

// VideoPayload is the body of a Shotstack template render request.
type VideoPayload struct {
	ID           string              `json:"id"`
	Merge        []models.MergeField `json:"merge"`
	Destinations []Destination       `json:"destinations,omitempty"`
}

type Destination struct {
	Provider string              `json:"provider"`
	Exclude  bool                `json:"exclude,omitempty"`
	Options  *DestinationOptions `json:"options,omitempty"`
}

type DestinationOptions struct {
	Region string `json:"region"`
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix,omitempty"`
}

// SlotLayer names the i-th image layer: property_image, property_image1, ...
func SlotLayer(i int) string {
	if i == 0 {
		return "property_image"
	}
	return fmt.Sprintf("property_image%d", i)
}

// FillSlots assigns one image per slot. Slot i gets images[i] while images
// last and wraps to images[i % len(images)] after that. Images beyond the slot
// count are never used. No images means no slot modifications.
func FillSlots(images []string, slots int) []models.Modification {
	if len(images) == 0 {
		return nil
	}
	mods := make([]models.Modification, 0, slots)
	for i := 0; i < slots; i++ {
		img := images[i%len(images)]
		if i < len(images) {
			img = images[i]
		}
		mods = append(mods, models.ImageMod(SlotLayer(i), img))
	}
	return mods
}

// BuildImageJob maps a record onto the image template layers. The same payload
// serves single templates and template sets; the dispatcher fills in which.
func BuildImageJob(rec models.PropertyRecord, profile *models.AgentProfile, listingType string) ImagePayload {
	agent := models.MergeAgent(rec.Agent, profile)
	if listingType == "" {
		listingType = rec.ListingType
	}

	mods := []models.Modification{
		models.TextMod("property_price", rec.Price),
		models.TextMod("property_location", rec.Address),
		models.TextMod("bedrooms", countText(rec.Bedrooms, "")),
		models.TextMod("bathrooms", countText(rec.Bathrooms, "")),
		models.TextMod("sq_ft", normalize.SquareFeetLabel(rec.SquareFeet)),
		models.TextMod("listing_type", listingType),
		models.TextMod("property_features", features(rec.KeyFeatures)),
	}

	if rec.Source == zillowSource {
		contact := agent.Name
		if agent.Phone != "" {
			contact = agent.Name + " • " + agent.Phone
		}
		mods = append(mods,
			models.ImageMod("logo", transparentLogo),
			models.TextMod("estate_agent-address", contact),
		)
	} else {
		mods = append(mods, models.TextMod("estate_agent_address", agent.Address))
		if agent.Logo != "" {
			mods = append(mods, models.ImageMod("logo", agent.Logo))
		}
	}

	mods = append(mods,
		models.TextMod("agent_name", agent.Name),
		models.TextMod("agent_email", agent.Email),
		models.TextMod("agent_number", agent.Phone),
	)
	if agent.PhotoURL != "" {
		mods = append(mods, models.ImageMod("agent_photo", agent.PhotoURL))
	}

	mods = append(mods, FillSlots(rec.Images, ImageSlots)...)

	return ImagePayload{
		Modifications: mods,
		Metadata: map[string]any{
			"source":           rec.Source,
			"record_id":        rec.ID,
			"property_address": rec.Address,
			"total_images":     len(rec.Images),
			"scraped_at":       rec.ExtractedAt.UTC().Format(time.RFC3339),
		},
	}
}

// BuildVideoJob maps a record onto the video template's merge fields.
// PROPERTY_IMAGE1..8 are filled positionally and fall back to the main image,
// then the first image; they are left out entirely when there is no image.
func BuildVideoJob(rec models.PropertyRecord, profile *models.AgentProfile, listingType string) VideoPayload {
	agent := models.MergeAgent(rec.Agent, profile)
	if listingType == "" {
		listingType = rec.ListingType
	}

	merge := []models.MergeField{
		{Find: "PROPERTY_PRICE", Replace: rec.Price},
		{Find: "PROPERTY_LOCATION", Replace: rec.Address},
		{Find: "LISTING_TYPE", Replace: listingType},
		{Find: "BEDROOMS", Replace: countText(rec.Bedrooms, "0")},
		{Find: "BATHROOMS", Replace: countText(rec.Bathrooms, "0")},
		{Find: "SQUARE_FT", Replace: normalize.VideoSquareFeetLabel(rec.SquareFeet)},
	}

	for i := 1; i <= VideoImageSlots; i++ {
		if img := videoImage(rec, i-1); img != "" {
			merge = append(merge, models.MergeField{Find: fmt.Sprintf("PROPERTY_IMAGE%d", i), Replace: img})
		}
	}

	merge = append(merge,
		models.MergeField{Find: "AGENT_NAME", Replace: agent.Name},
		models.MergeField{Find: "AGENT_EMAIL", Replace: agent.Email},
		models.MergeField{Find: "AGENT_PHONE", Replace: agent.Phone},
	)
	if agent.PhotoURL != "" {
		merge = append(merge, models.MergeField{Find: "AGENT_PHOTO", Replace: agent.PhotoURL})
	}

	return VideoPayload{Merge: merge}
}

func videoImage(rec models.PropertyRecord, i int) string {
	if i < len(rec.Images) {
		return rec.Images[i]
	}
	if rec.MainImage != "" {
		return rec.MainImage
	}
	if len(rec.Images) > 0 {
		return rec.Images[0]
	}
	return ""
}

func countText(n *int, fallback string) string {
	if n == nil {
		return fallback
	}
	return strconv.Itoa(*n)
}

func features(list []string) string {
	if len(list) > maxFeatureLayers {
		list = list[:maxFeatureLayers]
	}
	return strings.Join(list, ", ")
}
