package image

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	gsdk "google.golang.org/genai"

	"productshots/internal/domain"
	"productshots/internal/infra"
)

const defaultSDKModel = "gemini-2.5-flash-image"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*gsdk.Content, config *gsdk.GenerateContentConfig) (*gsdk.GenerateContentResponse, error)
}

// SDKRenderer renders through the official Go SDK.
type SDKRenderer struct {
	models      contentGenerator
	model       string
	temperature float32
	logger      *infra.Logger
}

// SDKOptions configures NewSDKRenderer.
type SDKOptions struct {
	APIKey string
	Model  string
	Logger *infra.Logger
}

func NewSDKRenderer(ctx context.Context, opts SDKOptions) (*SDKRenderer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("genai sdk: api key required")
	}
	client, err := gsdk.NewClient(ctx, &gsdk.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: gsdk.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai sdk client: %w", err)
	}
	return newSDKRenderer(client.Models, opts.Model, opts.Logger), nil
}

func newSDKRenderer(models contentGenerator, model string, logger *infra.Logger) *SDKRenderer {
	if model == "" {
		model = defaultSDKModel
	}
	if logger == nil {
		discard := infra.Logger(zerolog.New(io.Discard))
		logger = &discard
	}
	return &SDKRenderer{models: models, model: model, temperature: 0.4, logger: logger}
}

func (s *SDKRenderer) Render(ctx context.Context, req RenderRequest) (domain.ImageRef, error) {
	parts := make([]*gsdk.Part, 0, len(req.References)+1)
	for _, ref := range req.References {
		if len(ref.Data) == 0 {
			return domain.ImageRef{}, fmt.Errorf("%w: reference %q has no bytes", domain.ErrRenderFailed, ref.Key)
		}
		parts = append(parts, gsdk.NewPartFromBytes(ref.Data, mimeOrSniff(ref)))
	}
	parts = append(parts, gsdk.NewPartFromText(req.Instruction))

	temperature := s.temperature
	result, err := s.models.GenerateContent(ctx, s.model,
		[]*gsdk.Content{{Role: "user", Parts: parts}},
		&gsdk.GenerateContentConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			ImageConfig:        &gsdk.ImageConfig{AspectRatio: req.Size.AspectRatio},
			Temperature:        &temperature,
		},
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ImageRef{}, ctxErr
		}
		return domain.ImageRef{}, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			s.logger.Debug().
				Str("request_id", req.RequestID()).
				Str("model", s.model).
				Int("bytes", len(part.InlineData.Data)).
				Msg("genai sdk: image generated")
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return domain.ImageRef{MIMEType: mime, Data: part.InlineData.Data}, nil
		}
	}
	return domain.ImageRef{}, domain.ErrEmptyRender
}

var _ Renderer = (*SDKRenderer)(nil)
