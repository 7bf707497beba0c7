package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"productshots/internal/domain"
	"productshots/internal/providers/image"
)

type memStore struct {
	mu     sync.Mutex
	files  map[string][]byte
	writes []string
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{
		"uploads/u1/mug.jpg": []byte("original-bytes"),
		"brand/logo.png":     []byte("logo-bytes"),
	}}
}

func (m *memStore) Read(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return nil, domain.ErrInvalidReferencePath
	}
	data, ok := m.files[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (m *memStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = data
	m.writes = append(m.writes, key)
	return key, nil
}

func (m *memStore) URL(key string) string { return "https://cdn.test/" + key }

type renderCall struct {
	angle       domain.Angle
	attempt     int
	instruction string
	refKeys     []string
}

// scriptedRenderer fails the first failures[angle] attempts of each angle.
// A negative count fails every attempt.
type scriptedRenderer struct {
	failures map[domain.Angle]int
	calls    []renderCall
	seen     map[domain.Angle]int
}

func (s *scriptedRenderer) Render(ctx context.Context, req image.RenderRequest) (domain.ImageRef, error) {
	if s.seen == nil {
		s.seen = map[domain.Angle]int{}
	}
	keys := make([]string, len(req.References))
	for i, ref := range req.References {
		keys[i] = ref.Key
	}
	s.calls = append(s.calls, renderCall{angle: req.Angle, attempt: req.Attempt, instruction: req.Instruction, refKeys: keys})
	s.seen[req.Angle]++

	n := s.failures[req.Angle]
	if n < 0 || s.seen[req.Angle] <= n {
		return domain.ImageRef{}, fmt.Errorf("%s attempt %d: %w", req.Angle, req.Attempt, domain.ErrRenderFailed)
	}
	return domain.ImageRef{MIMEType: "image/png", Data: []byte("render-" + string(req.Angle))}, nil
}

func (s *scriptedRenderer) callsFor(angle domain.Angle) []renderCall {
	var out []renderCall
	for _, c := range s.calls {
		if c.angle == angle {
			out = append(out, c)
		}
	}
	return out
}

type fakeAnalyzer struct {
	attrs domain.ProductAttributes
	err   error
	calls int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, img domain.ImageRef) (domain.ProductAttributes, error) {
	f.calls++
	if f.err != nil {
		return domain.ProductAttributes{}, f.err
	}
	return f.attrs, nil
}

type fakeCompositor struct {
	err   error
	calls int
}

func (f *fakeCompositor) Apply(ctx context.Context, img, logo domain.ImageRef, pos domain.LogoPosition, size domain.OutputSize) (domain.ImageRef, error) {
	f.calls++
	if f.err != nil {
		return domain.ImageRef{}, f.err
	}
	return domain.ImageRef{MIMEType: "image/png", Data: append(append([]byte{}, img.Data...), []byte("+logo")...)}, nil
}

type fakeBrands struct {
	profile BrandProfile
	err     error
}

func (f fakeBrands) Profile(ctx context.Context, brandID string) (BrandProfile, error) {
	return f.profile, f.err
}

type fakeSink struct {
	sessionID string
	tasks     []domain.AngleTask
}

func (f *fakeSink) SaveResults(ctx context.Context, sessionID string, tasks []domain.AngleTask) error {
	f.sessionID = sessionID
	f.tasks = tasks
	return nil
}

var errBoom = errors.New("boom")

func mugAttributes() domain.ProductAttributes {
	return domain.ProductAttributes{
		ProductType: "mug",
		Material:    "ceramic",
		Colors:      []string{"white", "navy"},
		Features:    []string{"navy rim", "round handle"},
	}
}

func baseRequest(angles ...domain.Angle) domain.GenerationRequest {
	return domain.GenerationRequest{
		SessionID:      "s1",
		UserID:         "u1",
		SourceKey:      "uploads/u1/mug.jpg",
		Angles:         angles,
		Size:           domain.OutputSize{AspectRatio: "1:1", Width: 1024, Height: 1024},
		BackgroundType: domain.BackgroundStudio,
	}
}

type harness struct {
	store      *memStore
	renderer   *scriptedRenderer
	analyzer   *fakeAnalyzer
	compositor *fakeCompositor
	sink       *fakeSink
	brands     BrandSource
}

func newHarness() *harness {
	return &harness{
		store:      newMemStore(),
		renderer:   &scriptedRenderer{failures: map[domain.Angle]int{}},
		analyzer:   &fakeAnalyzer{attrs: mugAttributes()},
		compositor: &fakeCompositor{},
		sink:       &fakeSink{},
	}
}

func (h *harness) service() *Service {
	svc, err := NewService(Options{
		Analyzer:   h.analyzer,
		Renderer:   h.renderer,
		Compositor: h.compositor,
		Store:      h.store,
		Brands:     h.brands,
		Sink:       h.sink,
	})
	if err != nil {
		panic(err)
	}
	return svc
}
