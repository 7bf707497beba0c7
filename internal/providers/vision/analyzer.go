package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"productshots/internal/domain"
	"productshots/internal/providers/genai"
)

type textClient interface {
	GenerateText(ctx context.Context, req genai.TextRequest) (string, error)
}

// Analyzer extracts product attributes from the reference photo with one
// vision call per session.
type Analyzer struct {
	client textClient
}

func NewAnalyzer(client textClient) *Analyzer {
	return &Analyzer{client: client}
}

const analysisSchema = `{"productType":string,"category":string,"material":string,"texture":string,"shape":string,"patterns":string,"colors":string[],"features":string[],"brandElements":string,"summary":string}`

func analysisInstruction() string {
	lines := []string{
		"You are a product photographer's assistant cataloguing a single product photo.",
		"Describe only the main product. Ignore the background, hands, and props.",
		"List the features that make this exact item recognizable: silhouette, proportions, labels, printed marks, closures, stitching.",
		"Colors should be short names or hex codes in order of coverage.",
		"Keep brandElements to what is physically printed or embossed on the product.",
		"Respond strictly with JSON matching this schema: " + analysisSchema,
	}
	return strings.Join(lines, "\n")
}

// Analyze returns the attributes for img. A reply that is not valid JSON is
// kept as the summary; an empty reply is an error.
func (a *Analyzer) Analyze(ctx context.Context, img domain.ImageRef) (domain.ProductAttributes, error) {
	if len(img.Data) == 0 {
		return domain.ProductAttributes{}, fmt.Errorf("%w: reference image has no bytes", domain.ErrAnalysisFailed)
	}
	mime := img.MIMEType
	if mime == "" {
		mime = http.DetectContentType(img.Data)
	}

	raw, err := a.client.GenerateText(ctx, genai.TextRequest{
		Instruction: analysisInstruction(),
		Images:      []genai.InlineImage{{MIMEType: mime, Data: img.Data}},
		JSON:        true,
		RequestID:   img.Key,
	})
	if err != nil {
		return domain.ProductAttributes{}, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}

	attrs := parseAttributes(raw)
	if attrs.IsZero() {
		return domain.ProductAttributes{}, fmt.Errorf("%w: empty analysis", domain.ErrAnalysisFailed)
	}
	return attrs, nil
}

func parseAttributes(raw string) domain.ProductAttributes {
	var attrs domain.ProductAttributes
	fragment := extractJSONFragment(raw)
	if fragment != "" && json.Unmarshal([]byte(fragment), &attrs) == nil {
		attrs.Colors = cleanList(attrs.Colors)
		attrs.Features = cleanList(attrs.Features)
		return attrs
	}
	return domain.ProductAttributes{Summary: strings.TrimSpace(trimCodeFence(raw))}
}

func cleanList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
