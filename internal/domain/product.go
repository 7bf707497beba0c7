package domain

import "strings"

// ProductAttributes is the structured description produced once per session by
// the vision analysis call.
type ProductAttributes struct {
	ProductType   string   `json:"productType"`
	Category      string   `json:"category"`
	Material      string   `json:"material"`
	Texture       string   `json:"texture"`
	Shape         string   `json:"shape"`
	Patterns      string   `json:"patterns"`
	Colors        []string `json:"colors"`
	Features      []string `json:"features"`
	BrandElements string   `json:"brandElements"`
	Summary       string   `json:"summary"`
}

// IsZero reports whether no attribute carries information.
func (p ProductAttributes) IsZero() bool {
	return strings.TrimSpace(p.ProductType) == "" &&
		strings.TrimSpace(p.Category) == "" &&
		strings.TrimSpace(p.Material) == "" &&
		strings.TrimSpace(p.Texture) == "" &&
		strings.TrimSpace(p.Shape) == "" &&
		strings.TrimSpace(p.Patterns) == "" &&
		len(p.Colors) == 0 &&
		len(p.Features) == 0 &&
		strings.TrimSpace(p.BrandElements) == "" &&
		strings.TrimSpace(p.Summary) == ""
}

// Describe returns a short label such as "ceramic coffee mug".
func (p ProductAttributes) Describe() string {
	var parts []string
	if m := strings.TrimSpace(p.Material); m != "" {
		parts = append(parts, m)
	}
	if t := strings.TrimSpace(p.ProductType); t != "" {
		parts = append(parts, t)
	} else if c := strings.TrimSpace(p.Category); c != "" {
		parts = append(parts, c)
	}
	if len(parts) == 0 {
		return "the product"
	}
	return strings.Join(parts, " ")
}

// Text flattens every attribute into one string, used for vocabulary checks.
func (p ProductAttributes) Text() string {
	fields := []string{p.ProductType, p.Category, p.Material, p.Texture, p.Shape, p.Patterns, p.BrandElements, p.Summary}
	fields = append(fields, p.Colors...)
	fields = append(fields, p.Features...)
	return strings.Join(fields, " ")
}
