package render

import (
	"strings"

	"listing_studio/models"
)

// LargeImageHeight is the pixel height from which a render counts as a
// story/large format.
const LargeImageHeight = 1900

var largeHints = []string{"1920", "large", "horizontal"}

// IsLarge reports whether an image belongs in the large bucket, by height or
// by a size hint in its template name or URL.
func IsLarge(img models.RenderedImage) bool {
	if img.Height >= LargeImageHeight {
		return true
	}
	template := strings.ToLower(img.Template)
	url := strings.ToLower(img.URL)
	for _, hint := range largeHints {
		if strings.Contains(template, hint) || strings.Contains(url, hint) {
			return true
		}
	}
	return false
}

// PartitionImages splits images into standard and large buckets. Each bucket
// keeps arrival order; callers display standard before large.
func PartitionImages(images []models.RenderedImage) (standard, large []models.RenderedImage) {
	for _, img := range images {
		if IsLarge(img) {
			large = append(large, img)
		} else {
			standard = append(standard, img)
		}
	}
	return standard, large
}
