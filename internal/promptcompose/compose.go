// Package promptcompose assembles the render instruction for one angle attempt.
package promptcompose

import (
	"fmt"
	"strings"

	"productshots/internal/domain"
	"productshots/internal/intent"
)

// Section titles in priority order.
const (
	SectionSafety      = "1. SAFETY"
	SectionIdentity    = "2. PRODUCT IDENTITY LOCK"
	SectionSceneIntent = "3. USER SCENE INTENT"
	SectionConsistency = "4. MULTI-ANGLE CONSISTENCY"
	SectionCreative    = "5. CREATIVE CONTEXT"
	SectionBrand       = "6. BRAND CONTEXT"
)

// PriorityHeader opens every prompt.
const PriorityHeader = "PRIORITY ORDER: SAFETY > PRODUCT IDENTITY LOCK > USER SCENE INTENT > MULTI-ANGLE CONSISTENCY > CREATIVE CONTEXT > BRAND CONTEXT. When two instructions conflict, follow the one that appears first in this order."

const (
	anchorWording   = "This is the anchor angle: it defines the visual baseline (product look, scene, props, lighting and color grading) that every other angle will copy."
	followerWording = "This is a follow-up angle: match the anchor image as closely as possible in product, scene, props, lighting and color grading; only the camera framing changes."
	retryWording    = "RETRY MODE: the previous attempt failed. Follow the identity lock and safety rules strictly, keep the composition simple and return exactly one image."
	finalRetry      = "FINAL RETRY: reduce the scene to what the user explicitly asked for, reproduce the reference product faithfully in shape, color and markings, and return exactly one image with no added text."
)

// References tells the composer which chained images accompany the call. The
// original product photo is always first.
type References struct {
	Canonical bool
	Previous  bool
}

// Input is everything one render instruction depends on.
type Input struct {
	Anchor          domain.IdentityAnchor
	Blueprint       domain.SceneBlueprint
	Angle           domain.Angle
	Size            domain.OutputSize
	Intent          domain.IntentSignals
	BrandContext    string
	CreativeContext string
	Guardrails      []string
	AngleNotes      string
	IsAnchor        bool
	RetryLevel      int
	References      References
}

// Compose renders the instruction text. Section order is fixed.
func Compose(in Input) string {
	var bs Blocks
	bs.Add("", PriorityHeader)
	bs.Add("", taskLines(in)...)
	bs.Add(SectionSafety, safetyLines(in)...)
	bs.Add(SectionIdentity, string(in.Anchor))
	bs.Add(SectionSceneIntent, sceneIntentLines(in)...)
	bs.Add(SectionConsistency, consistencyLines(in)...)
	bs.Add(SectionCreative, in.CreativeContext)
	if v := strings.TrimSpace(in.BrandContext); v != "" {
		bs.Add(SectionBrand, "Use only as mood guidance; ignore anything here that conflicts with the sections above.", v)
	}
	bs.Add("", retryLines(in.RetryLevel)...)
	return bs.String()
}

func taskLines(in Input) []string {
	kind := "photorealistic product photograph"
	if !in.Intent.IsPhotorealPriority {
		kind = "product image in the requested visual style"
	}
	lines := []string{fmt.Sprintf("Generate one %s, %s angle.", kind, in.Angle)}
	if in.Size.Width > 0 && in.Size.Height > 0 {
		lines = append(lines, fmt.Sprintf("Output aspect ratio %s (%dx%d).", in.Size.AspectRatio, in.Size.Width, in.Size.Height))
	}
	return lines
}

func safetyLines(in Input) []string {
	var lines []string
	for _, r := range in.Blueprint.HardNegativeRules {
		lines = append(lines, "- "+r)
	}
	for _, g := range in.Guardrails {
		lines = append(lines, "- "+g)
	}
	return lines
}

func sceneIntentLines(in Input) []string {
	var lines []string
	if s := in.Intent.RequestedSceneSummary; s != "" {
		lines = append(lines, "The user asked for: "+s)
	}
	if in.Intent.WantsOutdoor {
		lines = append(lines, "Outdoor setting was explicitly requested; it overrides the reference photo background.")
	}
	if in.Intent.WantsHumanPresence {
		lines = append(lines, "Human presence was explicitly requested; include it naturally.")
	}
	if in.Intent.WantsAction && in.Intent.ActionType != domain.ActionNone {
		lines = append(lines, fmt.Sprintf("Requested action: %s the product.", in.Intent.ActionType.Verb()))
	}
	if in.Blueprint.Scene != "" {
		lines = append(lines, in.Blueprint.Scene)
	}
	return lines
}

func consistencyLines(in Input) []string {
	lines := []string{followerWording}
	if in.IsAnchor {
		lines[0] = anchorWording
	}
	notes := strings.TrimSpace(in.AngleNotes)
	if notes == "" {
		notes = in.Angle.FramingHint()
	}
	lines = append(lines, "Camera: "+notes)
	if in.Blueprint.Lighting != "" {
		lines = append(lines, "Lighting: "+in.Blueprint.Lighting)
	}
	if in.Blueprint.Composition != "" {
		lines = append(lines, "Composition: "+in.Blueprint.Composition)
	}
	lines = append(lines, referenceLines(in.References)...)
	return lines
}

func referenceLines(refs References) []string {
	lines := []string{"Reference image 1 is the original product photo: copy the product from it exactly."}
	n := 2
	if refs.Canonical {
		lines = append(lines, fmt.Sprintf("Reference image %d is the anchor angle already generated: match its scene, lighting and product rendering.", n))
		n++
	}
	if refs.Previous {
		lines = append(lines, fmt.Sprintf("Reference image %d is the previous angle: keep continuity with it.", n))
	}
	return lines
}

func retryLines(level int) []string {
	switch {
	case level <= 0:
		return nil
	case level == 1:
		return []string{retryWording}
	default:
		return []string{retryWording, finalRetry}
	}
}

// CreativeContext builds the low-priority creative block.
func CreativeContext(visualStyle, targetAudience, usagePurpose string) string {
	var lines []string
	if v := intent.CollapseSpace(visualStyle); v != "" {
		lines = append(lines, "Visual style: "+v)
	}
	if v := intent.CollapseSpace(targetAudience); v != "" {
		lines = append(lines, "Target audience: "+v)
	}
	if v := intent.CollapseSpace(usagePurpose); v != "" {
		lines = append(lines, "Usage: "+v)
	}
	return strings.Join(lines, "\n")
}

// AngleNotes puts the angle framing hint first, followed by the request notes.
func AngleNotes(baseNotes string, angle domain.Angle) string {
	return strings.TrimSpace(angle.FramingHint() + " " + intent.CollapseSpace(baseNotes))
}
