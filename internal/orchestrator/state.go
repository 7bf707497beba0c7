package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"productshots/internal/domain"
	"productshots/internal/infra"
	"productshots/internal/promptcompose"
	"productshots/internal/providers/image"
	"productshots/internal/storage"
)

// MaxAttempts is the default attempt budget per angle.
const MaxAttempts = 3

// SessionState is the value threaded through the angle fold. Step never
// mutates its input; it returns the next state.
type SessionState struct {
	Tasks     []domain.AngleTask
	Canonical *domain.ImageRef
	Previous  *domain.ImageRef
}

// NewSessionState returns pending tasks for angles in the given order.
func NewSessionState(angles []domain.Angle) SessionState {
	tasks := make([]domain.AngleTask, len(angles))
	for i, a := range angles {
		tasks[i] = domain.NewAngleTask(a)
	}
	return SessionState{Tasks: tasks}
}

func (s SessionState) withTask(index int, task domain.AngleTask) SessionState {
	tasks := make([]domain.AngleTask, len(s.Tasks))
	copy(tasks, s.Tasks)
	tasks[index] = task
	s.Tasks = tasks
	return s
}

// AllFailed reports whether every task settled as failed.
func (s SessionState) AllFailed() bool {
	if len(s.Tasks) == 0 {
		return false
	}
	for _, t := range s.Tasks {
		if t.Status != domain.TaskFailed {
			return false
		}
	}
	return true
}

// Plan holds everything that stays fixed for the whole session.
type Plan struct {
	SessionID       string
	Original        domain.ImageRef
	Anchor          domain.IdentityAnchor
	Blueprint       domain.SceneBlueprint
	Intent          domain.IntentSignals
	BrandContext    string
	CreativeContext string
	Guardrails      []string
	BaseNotes       string
	Size            domain.OutputSize
	Logo            *domain.ImageRef
	LogoPosition    domain.LogoPosition
}

// Runner executes one session plan angle by angle.
type Runner struct {
	plan        Plan
	renderer    image.Renderer
	compositor  Compositor
	store       ImageStore
	logger      *infra.Logger
	maxAttempts int
}

// RunnerDeps are the collaborators a Runner calls.
type RunnerDeps struct {
	Renderer    image.Renderer
	Compositor  Compositor
	Store       ImageStore
	Logger      *infra.Logger
	MaxAttempts int
}

func NewRunner(plan Plan, deps RunnerDeps) *Runner {
	logger := deps.Logger
	if logger == nil {
		discard := infra.Logger(zerolog.New(io.Discard))
		logger = &discard
	}
	attempts := deps.MaxAttempts
	if attempts <= 0 {
		attempts = MaxAttempts
	}
	return &Runner{
		plan:        plan,
		renderer:    deps.Renderer,
		compositor:  deps.Compositor,
		store:       deps.Store,
		logger:      logger,
		maxAttempts: attempts,
	}
}

// Run generates every angle sequentially in preferred order. The returned
// state is always populated; the error is ErrAllAnglesFailed when no angle
// completed.
func (r *Runner) Run(ctx context.Context, angles []domain.Angle) (SessionState, error) {
	state := NewSessionState(OrderAngles(angles))
	for i := range state.Tasks {
		state = r.Step(ctx, state, i)
	}
	if state.AllFailed() {
		return state, fmt.Errorf("%w: %s", domain.ErrAllAnglesFailed, state.Tasks[0].ErrorMessage)
	}
	return state, nil
}

// Step settles the task at index. On success the canonical reference is set if
// still empty and the previous reference moves to the new image; on failure
// both references are left untouched.
func (r *Runner) Step(ctx context.Context, state SessionState, index int) SessionState {
	task, err := state.Tasks[index].Start()
	if err != nil {
		r.logger.Warn().Err(err).Str("session_id", r.plan.SessionID).Int("index", index).Msg("orchestrator: skip task")
		return state
	}

	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		raw, url, err := r.attempt(ctx, state, index, task.Angle, attempt)
		if err != nil {
			lastErr = err
			task, _ = task.RecordFailure(err.Error())
			r.logger.Warn().Err(err).
				Str("session_id", r.plan.SessionID).
				Str("angle", string(task.Angle)).
				Int("attempt", attempt+1).
				Msg("orchestrator: angle attempt failed")
			continue
		}

		task, _ = task.Complete(url)
		next := state.withTask(index, task)
		if next.Canonical == nil {
			canonical := raw
			next.Canonical = &canonical
		}
		previous := raw
		next.Previous = &previous
		r.logger.Info().
			Str("session_id", r.plan.SessionID).
			Str("angle", string(task.Angle)).
			Int("attempt", attempt+1).
			Msg("orchestrator: angle completed")
		return next
	}

	msg := "render failed"
	if lastErr != nil {
		msg = lastErr.Error()
	}
	task, _ = task.Fail(msg)
	r.logger.Error().
		Str("session_id", r.plan.SessionID).
		Str("angle", string(task.Angle)).
		Int("retries", task.RetryCount).
		Str("error", msg).
		Msg("orchestrator: angle failed")
	return state.withTask(index, task)
}

// attempt renders, optionally brands and stores one image. The returned
// reference holds the unbranded render so logos never feed back into later
// calls.
func (r *Runner) attempt(ctx context.Context, state SessionState, index int, angle domain.Angle, attempt int) (domain.ImageRef, string, error) {
	refs, flags := r.references(state)
	instruction := promptcompose.Compose(promptcompose.Input{
		Anchor:          r.plan.Anchor,
		Blueprint:       r.plan.Blueprint,
		Angle:           angle,
		Size:            r.plan.Size,
		Intent:          r.plan.Intent,
		BrandContext:    r.plan.BrandContext,
		CreativeContext: r.plan.CreativeContext,
		Guardrails:      r.plan.Guardrails,
		AngleNotes:      promptcompose.AngleNotes(r.plan.BaseNotes, angle),
		IsAnchor:        index == 0,
		RetryLevel:      attempt,
		References:      flags,
	})

	rendered, err := r.renderer.Render(ctx, image.RenderRequest{
		Instruction: instruction,
		References:  refs,
		Size:        r.plan.Size,
		SessionID:   r.plan.SessionID,
		Angle:       angle,
		Attempt:     attempt + 1,
	})
	if err != nil {
		return domain.ImageRef{}, "", err
	}
	if len(rendered.Data) == 0 {
		return domain.ImageRef{}, "", domain.ErrEmptyRender
	}
	if rendered.MIMEType == "" {
		rendered.MIMEType = "image/png"
	}

	final := r.brand(ctx, rendered, angle)
	key, err := r.store.Write(ctx, storage.GeneratedKey(r.plan.SessionID, index, angle, final.MIMEType), final.Data)
	if err != nil {
		return domain.ImageRef{}, "", fmt.Errorf("store %s: %w", angle, err)
	}
	rendered.Key = key
	rendered.URL = r.store.URL(key)
	return rendered, rendered.URL, nil
}

func (r *Runner) brand(ctx context.Context, rendered domain.ImageRef, angle domain.Angle) domain.ImageRef {
	if r.plan.Logo == nil || r.compositor == nil {
		return rendered
	}
	out, err := r.compositor.Apply(ctx, rendered, *r.plan.Logo, r.plan.LogoPosition, r.plan.Size)
	if err != nil || len(out.Data) == 0 {
		if err == nil {
			err = domain.ErrCompositeFailed
		}
		r.logger.Warn().Err(err).
			Str("session_id", r.plan.SessionID).
			Str("angle", string(angle)).
			Msg("orchestrator: logo composite failed, keeping unbranded image")
		return rendered
	}
	if out.MIMEType == "" {
		out.MIMEType = "image/png"
	}
	return out
}

// references orders the images sent with a render call: original first, then
// the canonical anchor, then the previous angle when it differs from the
// anchor.
func (r *Runner) references(state SessionState) ([]domain.ImageRef, promptcompose.References) {
	refs := []domain.ImageRef{r.plan.Original}
	var flags promptcompose.References
	if state.Canonical != nil {
		refs = append(refs, *state.Canonical)
		flags.Canonical = true
	}
	if state.Previous != nil && !state.Previous.SameAs(state.Canonical) {
		refs = append(refs, *state.Previous)
		flags.Previous = true
	}
	return refs, flags
}

// IsFatal reports whether err ends a session before or instead of per-angle
// results.
func IsFatal(err error) bool {
	return errors.Is(err, domain.ErrAnalysisFailed) ||
		errors.Is(err, domain.ErrInvalidRequest) ||
		errors.Is(err, domain.ErrMissingCustomScene) ||
		errors.Is(err, domain.ErrInvalidReferencePath) ||
		errors.Is(err, domain.ErrAllAnglesFailed)
}
