package jsoncfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"productshots/internal/domain"
)

type LogoConfig struct {
	Enabled  bool   `json:"enabled"`
	Key      string `json:"key"`
	Position string `json:"position"`
}

// SessionRequest is the JSON contract accepted by the API and persisted with
// each queued session.
type SessionRequest struct {
	Version          string     `json:"version"`
	SourceKey        string     `json:"source_key"`
	Angles           []string   `json:"angles"`
	AspectRatio      string     `json:"aspect_ratio"`
	BackgroundType   string     `json:"background_type"`
	CustomBackground string     `json:"custom_background"`
	AdditionalNotes  string     `json:"additional_notes"`
	UsagePurpose     string     `json:"usage_purpose"`
	DisplayInfo      string     `json:"display_info"`
	VisualStyle      string     `json:"visual_style"`
	TargetAudience   string     `json:"target_audience"`
	BrandID          string     `json:"brand_id"`
	Logo             LogoConfig `json:"logo"`
}

const (
	// DefaultSessionVersion represents the schema version persisted for requests.
	DefaultSessionVersion = "2025-01"
	// DefaultBackgroundType is applied when the request omits the background.
	DefaultBackgroundType = string(domain.BackgroundStudio)
	// MaxFreeTextRunes caps every free-text field.
	MaxFreeTextRunes = 1000
)

// Normalize applies server defaults. Explicit values are kept.
func (r *SessionRequest) Normalize() {
	if r == nil {
		return
	}
	if r.Version == "" {
		r.Version = DefaultSessionVersion
	}
	r.SourceKey = strings.TrimSpace(r.SourceKey)
	if len(r.Angles) == 0 {
		r.Angles = make([]string, 0, len(domain.AllAngles))
		for _, a := range domain.AllAngles {
			r.Angles = append(r.Angles, string(a))
		}
	}
	if strings.TrimSpace(r.AspectRatio) == "" {
		r.AspectRatio = domain.DefaultAspectRatio
	}
	if strings.TrimSpace(r.BackgroundType) == "" {
		r.BackgroundType = DefaultBackgroundType
	}
	r.BackgroundType = strings.ToLower(strings.TrimSpace(r.BackgroundType))
	if r.Logo.Enabled && strings.TrimSpace(r.Logo.Position) == "" {
		r.Logo.Position = string(domain.LogoBottomRight)
	}
}

// Validate checks the contract before the request is queued or run.
func (r SessionRequest) Validate() error {
	if r.SourceKey == "" {
		return fmt.Errorf("%w: source_key is required", domain.ErrInvalidRequest)
	}
	for _, raw := range r.Angles {
		if _, err := domain.ParseAngle(raw); err != nil {
			return err
		}
	}
	if _, err := domain.ParseOutputSize(r.AspectRatio); err != nil {
		return err
	}
	bg, err := domain.ParseBackgroundType(r.BackgroundType)
	if err != nil {
		return err
	}
	if bg == domain.BackgroundCustom && strings.TrimSpace(r.CustomBackground) == "" {
		return domain.ErrMissingCustomScene
	}
	if r.Logo.Enabled {
		if _, err := domain.ParseLogoPosition(r.Logo.Position); err != nil {
			return err
		}
	}
	fields := map[string]string{
		"custom_background": r.CustomBackground,
		"additional_notes":  r.AdditionalNotes,
		"usage_purpose":     r.UsagePurpose,
		"display_info":      r.DisplayInfo,
		"visual_style":      r.VisualStyle,
		"target_audience":   r.TargetAudience,
	}
	for name, value := range fields {
		if len([]rune(value)) > MaxFreeTextRunes {
			return fmt.Errorf("%w: %s exceeds %d characters", domain.ErrInvalidRequest, name, MaxFreeTextRunes)
		}
	}
	return nil
}

// ToDomain converts a validated request. Duplicate angles are kept once.
func (r SessionRequest) ToDomain(sessionID, userID string) (domain.GenerationRequest, error) {
	if err := r.Validate(); err != nil {
		return domain.GenerationRequest{}, err
	}
	size, _ := domain.ParseOutputSize(r.AspectRatio)
	bg, _ := domain.ParseBackgroundType(r.BackgroundType)

	seen := make(map[domain.Angle]struct{}, len(r.Angles))
	angles := make([]domain.Angle, 0, len(r.Angles))
	for _, raw := range r.Angles {
		a, _ := domain.ParseAngle(raw)
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		angles = append(angles, a)
	}

	req := domain.GenerationRequest{
		SessionID:        sessionID,
		UserID:           userID,
		SourceKey:        r.SourceKey,
		Angles:           angles,
		Size:             size,
		BackgroundType:   bg,
		CustomBackground: strings.TrimSpace(r.CustomBackground),
		AdditionalNotes:  strings.TrimSpace(r.AdditionalNotes),
		UsagePurpose:     strings.TrimSpace(r.UsagePurpose),
		DisplayInfo:      strings.TrimSpace(r.DisplayInfo),
		VisualStyle:      strings.TrimSpace(r.VisualStyle),
		TargetAudience:   strings.TrimSpace(r.TargetAudience),
		BrandID:          strings.TrimSpace(r.BrandID),
	}
	if r.Logo.Enabled {
		pos, _ := domain.ParseLogoPosition(r.Logo.Position)
		req.Logo = domain.LogoOptions{Enabled: true, Key: strings.TrimSpace(r.Logo.Key), Position: pos}
	}
	return req, nil
}

// Decode parses and normalizes a stored request.
func Decode(raw []byte) (SessionRequest, error) {
	var req SessionRequest
	if len(raw) == 0 {
		return req, errors.New("empty session request")
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("decode session request: %w", err)
	}
	req.Normalize()
	return req, nil
}

func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json marshal: %w", err))
	}
	return b
}
