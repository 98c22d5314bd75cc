package services

import (
	"context"
	"fmt"
	"strings"

	"listing_studio/models"
)

// CaptionSource writes the social caption attached to a finished render.
// The text is passed through as-is.
type CaptionSource interface {
	Caption(ctx context.Context, rec models.PropertyRecord) (string, error)
}

// StaticCaptions builds a plain one-line caption from the record, for when no
// text-generation service is configured.
type StaticCaptions struct{}

func (StaticCaptions) Caption(_ context.Context, rec models.PropertyRecord) (string, error) {
	var parts []string
	if rec.Bedrooms != nil {
		parts = append(parts, fmt.Sprintf("%d bedroom", *rec.Bedrooms))
	}
	if rec.Bathrooms != nil {
		parts = append(parts, fmt.Sprintf("%d bathroom", *rec.Bathrooms))
	}

	caption := "Property"
	if len(parts) > 0 {
		caption = strings.Join(parts, ", ") + " property"
	}
	if rec.Address != "" {
		caption += " in " + rec.Address
	}
	if rec.Price != "" {
		caption += ", " + rec.Price
	}
	if rec.ListingType != "" {
		caption = rec.ListingType + ": " + caption
	}
	return caption, nil
}
