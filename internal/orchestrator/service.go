package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"productshots/internal/blueprint"
	"productshots/internal/brandctx"
	"productshots/internal/domain"
	"productshots/internal/infra"
	"productshots/internal/intent"
	"productshots/internal/promptcompose"
	"productshots/internal/providers/image"
	"productshots/internal/storage"
)

// Options wires a Service. Analyzer, Renderer and Store are required.
type Options struct {
	Analyzer    Analyzer
	Renderer    image.Renderer
	Compositor  Compositor
	Store       ImageStore
	Brands      BrandSource
	Sink        ResultSink
	Resolver    *intent.Resolver
	Sanitizer   *brandctx.Sanitizer
	Guardrails  *blueprint.Registry
	Logger      *infra.Logger
	MaxAttempts int
}

// Service runs complete generation sessions.
type Service struct {
	analyzer    Analyzer
	renderer    image.Renderer
	compositor  Compositor
	store       ImageStore
	brands      BrandSource
	sink        ResultSink
	resolver    *intent.Resolver
	sanitizer   *brandctx.Sanitizer
	guardrails  *blueprint.Registry
	logger      *infra.Logger
	maxAttempts int
}

func NewService(opts Options) (*Service, error) {
	if opts.Analyzer == nil || opts.Renderer == nil || opts.Store == nil {
		return nil, errors.New("orchestrator: analyzer, renderer and store are required")
	}
	s := &Service{
		analyzer:    opts.Analyzer,
		renderer:    opts.Renderer,
		compositor:  opts.Compositor,
		store:       opts.Store,
		brands:      opts.Brands,
		sink:        opts.Sink,
		resolver:    opts.Resolver,
		sanitizer:   opts.Sanitizer,
		guardrails:  opts.Guardrails,
		logger:      opts.Logger,
		maxAttempts: opts.MaxAttempts,
	}
	if s.resolver == nil {
		s.resolver = intent.NewResolver(intent.DefaultVocabulary())
	}
	if s.sanitizer == nil {
		s.sanitizer = brandctx.NewSanitizer(intent.DefaultNoisyStyles)
	}
	if s.guardrails == nil {
		s.guardrails = blueprint.DefaultRegistry()
	}
	if s.logger == nil {
		discard := infra.Logger(zerolog.New(io.Discard))
		s.logger = &discard
	}
	return s, nil
}

// Generate runs one session end to end. Invalid requests and analysis
// failures return a nil session. When every angle fails the session is still
// returned alongside ErrAllAnglesFailed.
func (s *Service) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationSession, error) {
	profile, err := s.loadBrand(ctx, req.UserID, req.BrandID)
	if err != nil {
		return nil, err
	}
	if req.Logo.Enabled {
		if strings.TrimSpace(req.Logo.Key) == "" {
			req.Logo.Key = profile.LogoKey
		}
		if req.Logo.Position == "" {
			req.Logo.Position = profile.LogoPosition
		}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	original, err := s.readImage(ctx, req.SourceKey)
	if err != nil {
		return nil, err
	}
	var logo *domain.ImageRef
	if req.Logo.Enabled && s.compositor != nil {
		ref, err := s.readImage(ctx, req.Logo.Key)
		if err != nil {
			return nil, err
		}
		logo = &ref
	}

	attrs, err := s.analyzer.Analyze(ctx, original)
	if err != nil {
		if !errors.Is(err, domain.ErrAnalysisFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
		}
		return nil, err
	}
	if attrs.IsZero() {
		return nil, fmt.Errorf("%w: empty analysis", domain.ErrAnalysisFailed)
	}

	fields := intent.FieldsFromRequest(req)
	signals := s.resolver.Resolve(fields)

	brand := s.sanitizer.Sanitize(profile.Context, req.VisualStyle, req.AdditionalNotes)
	if len(brand.Removed) > 0 {
		s.logger.Debug().
			Str("session_id", req.SessionID).
			Strs("removed", brand.Removed).
			Msg("orchestrator: brand style tokens removed")
	}

	scene := blueprint.BuildScene(blueprint.SceneInput{
		Attributes:       attrs,
		BackgroundType:   req.BackgroundType,
		CustomBackground: req.CustomBackground,
		UsagePurpose:     req.UsagePurpose,
		DisplayInfo:      req.DisplayInfo,
		AdditionalNotes:  req.AdditionalNotes,
		Intent:           signals,
		BrandContext:     brand.Text,
		Avoid:            profile.Avoid,
		Resolver:         s.resolver,
	})
	anchor := blueprint.BuildIdentityAnchor(attrs)
	guardrails, applied := s.guardrails.Collect(blueprint.GuardrailContext(req, attrs, brand.Text), signals)

	s.logger.Info().
		Str("session_id", req.SessionID).
		Int("angles", len(req.Angles)).
		Bool("outdoor", signals.WantsOutdoor).
		Bool("human", signals.WantsHumanPresence).
		Str("action", string(signals.ActionType)).
		Strs("injectors", applied).
		Msg("orchestrator: session planned")

	runner := NewRunner(Plan{
		SessionID:       req.SessionID,
		Original:        original,
		Anchor:          anchor,
		Blueprint:       scene,
		Intent:          signals,
		BrandContext:    brand.Text,
		CreativeContext: promptcompose.CreativeContext(req.VisualStyle, req.TargetAudience, req.UsagePurpose),
		Guardrails:      guardrails,
		BaseNotes:       req.AdditionalNotes,
		Size:            req.Size,
		Logo:            logo,
		LogoPosition:    req.Logo.Position,
	}, RunnerDeps{
		Renderer:    s.renderer,
		Compositor:  s.compositor,
		Store:       s.store,
		Logger:      s.logger,
		MaxAttempts: s.maxAttempts,
	})
	state, runErr := runner.Run(ctx, req.Angles)

	session := &domain.GenerationSession{
		ID:         req.SessionID,
		Attributes: attrs,
		Intent:     signals,
		Blueprint:  scene,
		Anchor:     anchor,
		Tasks:      state.Tasks,
		Original:   stripData(original),
		Canonical:  stripPtr(state.Canonical),
		Previous:   stripPtr(state.Previous),
	}

	if s.sink != nil {
		if err := s.sink.SaveResults(ctx, req.SessionID, state.Tasks); err != nil {
			s.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("orchestrator: save results failed")
		}
	}
	return session, runErr
}

func (s *Service) loadBrand(ctx context.Context, userID, brandID string) (BrandProfile, error) {
	if strings.TrimSpace(brandID) == "" || s.brands == nil {
		return BrandProfile{}, nil
	}
	profile, err := s.brands.Profile(ctx, brandID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return BrandProfile{}, fmt.Errorf("%w: brand %s not found", domain.ErrInvalidRequest, brandID)
		}
		return BrandProfile{}, fmt.Errorf("load brand: %w", err)
	}
	// Brands belong to one user; an empty owner marks a shared brand.
	if profile.OwnerID != "" && userID != "" && profile.OwnerID != userID {
		return BrandProfile{}, fmt.Errorf("%w: brand %s not found", domain.ErrInvalidRequest, brandID)
	}
	return profile, nil
}

func (s *Service) readImage(ctx context.Context, key string) (domain.ImageRef, error) {
	data, err := s.store.Read(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ImageRef{}, fmt.Errorf("%w: %s does not exist", domain.ErrInvalidReferencePath, key)
		}
		return domain.ImageRef{}, err
	}
	return domain.ImageRef{
		Key:      key,
		URL:      s.store.URL(key),
		MIMEType: storage.MIMEForKey(key),
		Data:     data,
	}, nil
}

func stripData(ref domain.ImageRef) domain.ImageRef {
	ref.Data = nil
	return ref
}

func stripPtr(ref *domain.ImageRef) *domain.ImageRef {
	if ref == nil {
		return nil
	}
	out := stripData(*ref)
	return &out
}
