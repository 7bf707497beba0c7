package domain

import (
	"fmt"
	"strings"
)

// LogoOptions controls the optional overlay applied to each successful angle.
type LogoOptions struct {
	Enabled  bool
	Key      string
	Position LogoPosition
}

// GenerationRequest is the validated input of one multi-angle session.
type GenerationRequest struct {
	SessionID        string
	UserID           string
	SourceKey        string
	Angles           []Angle
	Size             OutputSize
	BackgroundType   BackgroundType
	CustomBackground string
	AdditionalNotes  string
	UsagePurpose     string
	DisplayInfo      string
	VisualStyle      string
	TargetAudience   string
	BrandID          string
	Logo             LogoOptions
}

// Validate rejects requests that cannot produce a session. It runs before any
// external call.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.SourceKey) == "" {
		return fmt.Errorf("%w: source image is required", ErrInvalidRequest)
	}
	if len(r.Angles) == 0 {
		return fmt.Errorf("%w: at least one angle is required", ErrInvalidRequest)
	}
	for _, a := range r.Angles {
		if !a.Valid() {
			return fmt.Errorf("%w: unknown angle %q", ErrInvalidRequest, a)
		}
	}
	if _, ok := backgroundDescriptions[r.BackgroundType]; !ok {
		return fmt.Errorf("%w: unknown background type %q", ErrInvalidRequest, r.BackgroundType)
	}
	if r.BackgroundType == BackgroundCustom && strings.TrimSpace(r.CustomBackground) == "" {
		return ErrMissingCustomScene
	}
	if r.Size.Width <= 0 || r.Size.Height <= 0 {
		return fmt.Errorf("%w: output size is required", ErrInvalidRequest)
	}
	if r.Logo.Enabled && strings.TrimSpace(r.Logo.Key) == "" {
		return fmt.Errorf("%w: logo is enabled but no logo image is configured", ErrInvalidRequest)
	}
	return nil
}
