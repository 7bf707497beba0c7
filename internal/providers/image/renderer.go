package image

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"productshots/internal/domain"
	"productshots/internal/providers/genai"
)

// RenderRequest is one render attempt for one angle. References are sent in
// order, so the original photo must come first.
type RenderRequest struct {
	Instruction string
	References  []domain.ImageRef
	Size        domain.OutputSize
	SessionID   string
	Angle       domain.Angle
	Attempt     int
}

// RequestID identifies the attempt in provider logs.
func (r RenderRequest) RequestID() string {
	return fmt.Sprintf("%s/%s/%d", r.SessionID, r.Angle, r.Attempt)
}

// Renderer produces exactly one image per call. The returned reference carries
// the bytes and MIME type; storage assigns the key.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (domain.ImageRef, error)
}

type imageClient interface {
	GenerateImage(ctx context.Context, req genai.ImageRequest) (genai.ImageAsset, error)
}

// GeminiRenderer renders through the REST client.
type GeminiRenderer struct {
	client imageClient
}

func NewGeminiRenderer(client imageClient) *GeminiRenderer {
	return &GeminiRenderer{client: client}
}

func (g *GeminiRenderer) Render(ctx context.Context, req RenderRequest) (domain.ImageRef, error) {
	refs := make([]genai.InlineImage, 0, len(req.References))
	for _, ref := range req.References {
		if len(ref.Data) == 0 {
			return domain.ImageRef{}, fmt.Errorf("%w: reference %q has no bytes", domain.ErrRenderFailed, ref.Key)
		}
		refs = append(refs, genai.InlineImage{MIMEType: mimeOrSniff(ref), Data: ref.Data})
	}

	asset, err := g.client.GenerateImage(ctx, genai.ImageRequest{
		Prompt:      req.Instruction,
		References:  refs,
		AspectRatio: req.Size.AspectRatio,
		Width:       req.Size.Width,
		Height:      req.Size.Height,
		RequestID:   req.RequestID(),
	})
	if err != nil {
		if errors.Is(err, genai.ErrNoContent) {
			return domain.ImageRef{}, domain.ErrEmptyRender
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ImageRef{}, ctxErr
		}
		return domain.ImageRef{}, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	if len(asset.Data) == 0 {
		return domain.ImageRef{}, domain.ErrEmptyRender
	}
	return domain.ImageRef{URL: asset.URL, MIMEType: asset.Format, Data: asset.Data}, nil
}

func mimeOrSniff(ref domain.ImageRef) string {
	if ref.MIMEType != "" {
		return ref.MIMEType
	}
	return http.DetectContentType(ref.Data)
}

var _ Renderer = (*GeminiRenderer)(nil)
