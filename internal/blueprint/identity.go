package blueprint

import (
	"fmt"
	"strings"

	"productshots/internal/domain"
	"productshots/internal/intent"
)

// MaxMustKeep caps the feature list in the anchor.
const MaxMustKeep = 6

const (
	policyIdentity = "Identity lock: every image must show this exact product at 80-90% visual similarity to the reference photo; only the camera framing may change."
	policyConflict = "Scene conflict rule: when the requested scene conflicts with the background of the reference photo, follow the requested scene and take only the product from the reference."
)

// BuildIdentityAnchor turns product attributes into the identity-lock block.
func BuildIdentityAnchor(attrs domain.ProductAttributes) domain.IdentityAnchor {
	lines := []string{"PRODUCT IDENTITY"}

	product := intent.CollapseSpace(attrs.ProductType)
	if product == "" {
		product = "the product shown in the reference photo"
	}
	if c := intent.CollapseSpace(attrs.Category); c != "" && !strings.EqualFold(c, product) {
		product = fmt.Sprintf("%s (%s)", product, c)
	}
	lines = append(lines, "Product: "+product)

	if v := intent.CollapseSpace(attrs.Shape); v != "" {
		lines = append(lines, "Shape: "+v)
	}
	if v := joinNonEmpty(" / ", attrs.Material, attrs.Texture); v != "" {
		lines = append(lines, "Material and texture: "+v)
	}
	if colors := cleanList(attrs.Colors, 0); len(colors) > 0 {
		lines = append(lines, "Colors: "+strings.Join(colors, ", "))
	}
	if v := intent.CollapseSpace(attrs.Patterns); v != "" {
		lines = append(lines, "Patterns and marks: "+v)
	}
	if v := intent.CollapseSpace(attrs.BrandElements); v != "" {
		lines = append(lines, "Brand elements: "+v)
	}
	if features := cleanList(attrs.Features, MaxMustKeep); len(features) > 0 {
		lines = append(lines, "Must keep:")
		for _, f := range features {
			lines = append(lines, "- "+f)
		}
	}

	lines = append(lines, policyIdentity, policyConflict)
	return domain.IdentityAnchor(strings.Join(lines, "\n"))
}

func cleanList(items []string, limit int) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, item := range items {
		item = intent.CollapseSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func joinNonEmpty(sep string, values ...string) string {
	var parts []string
	for _, v := range values {
		if v = intent.CollapseSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
