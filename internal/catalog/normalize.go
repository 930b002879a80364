package catalog

import (
	"strings"

	"github.com/shirtso/shirtso/internal/domain"
)

// ImagePayload is the wire shape of image associations on import payloads.
// Older feeds send "images", newer ones "imageMappings", some send neither.
// NormalizeImages resolves the union once at the boundary; nothing below it
// ever looks at both names.
type ImagePayload struct {
	Images        []ImageRef `json:"images"`
	ImageMappings []ImageRef `json:"imageMappings"`
}

type ImageRef struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Primary bool   `json:"primary"`
}

// NormalizeImages picks whichever field is populated ("images" wins when both
// are), drops blank URLs and duplicates, and returns canonical domain images.
func NormalizeImages(p ImagePayload) []domain.Image {
	refs := p.Images
	if len(refs) == 0 {
		refs = p.ImageMappings
	}
	out := []domain.Image{}
	seen := map[string]struct{}{}
	for _, r := range refs {
		u := strings.TrimSpace(r.URL)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, domain.Image{URL: u, Alt: r.Alt, Primary: r.Primary})
	}
	return out
}
