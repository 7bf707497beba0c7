package domain

import (
	"fmt"
	"strings"
)

// SceneBlueprint is built once per session and shared read-only by every angle.
type SceneBlueprint struct {
	Scene             string   `json:"sceneBlueprint"`
	Lighting          string   `json:"lightingBlueprint"`
	Composition       string   `json:"compositionBlueprint"`
	HardNegativeRules []string `json:"hardNegativeRules"`
}

// IdentityAnchor is the identity-lock text block re-stated in every render call.
type IdentityAnchor string

// BackgroundType enumerates the scene presets offered to users.
type BackgroundType string

const (
	BackgroundStudio     BackgroundType = "studio"
	BackgroundLifestyle  BackgroundType = "lifestyle"
	BackgroundKitchen    BackgroundType = "kitchen"
	BackgroundRestaurant BackgroundType = "restaurant"
	BackgroundOutdoor    BackgroundType = "outdoor"
	BackgroundMinimal    BackgroundType = "minimal"
	BackgroundCustom     BackgroundType = "custom"
)

var backgroundDescriptions = map[BackgroundType]string{
	BackgroundStudio:     "a clean professional studio set with a seamless neutral backdrop",
	BackgroundLifestyle:  "a natural lived-in lifestyle setting that shows the product in everyday use",
	BackgroundKitchen:    "a tidy home kitchen counter with subtle cooking props",
	BackgroundRestaurant: "a warm restaurant table setting with tasteful tableware",
	BackgroundOutdoor:    "an open-air outdoor setting",
	BackgroundMinimal:    "a minimal surface with a single soft-toned backdrop and no props",
	BackgroundCustom:     "the custom scene described by the user",
}

// ParseBackgroundType converts user input; empty input yields studio.
func ParseBackgroundType(raw string) (BackgroundType, error) {
	value := BackgroundType(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return BackgroundStudio, nil
	}
	if _, ok := backgroundDescriptions[value]; !ok {
		return "", fmt.Errorf("%w: unknown background type %q", ErrInvalidRequest, raw)
	}
	return value, nil
}

// Description returns the scene wording for the preset.
func (b BackgroundType) Description() string {
	if d, ok := backgroundDescriptions[b]; ok {
		return d
	}
	return backgroundDescriptions[BackgroundStudio]
}

// OutputSize is the pixel size for an aspect ratio token.
type OutputSize struct {
	AspectRatio string
	Width       int
	Height      int
}

var outputSizes = map[string]OutputSize{
	"1:1":  {AspectRatio: "1:1", Width: 1024, Height: 1024},
	"4:5":  {AspectRatio: "4:5", Width: 1024, Height: 1280},
	"9:16": {AspectRatio: "9:16", Width: 1080, Height: 1920},
	"16:9": {AspectRatio: "16:9", Width: 1920, Height: 1080},
	"3:4":  {AspectRatio: "3:4", Width: 960, Height: 1280},
}

// DefaultAspectRatio is applied when the request omits one.
const DefaultAspectRatio = "1:1"

// ParseOutputSize resolves an aspect ratio token; empty input yields 1:1.
func ParseOutputSize(raw string) (OutputSize, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		key = DefaultAspectRatio
	}
	size, ok := outputSizes[key]
	if !ok {
		return OutputSize{}, fmt.Errorf("%w: aspect_ratio must be one of 1:1, 4:5, 9:16, 16:9, 3:4", ErrInvalidRequest)
	}
	return size, nil
}

// LogoPosition enumerates the overlay anchors.
type LogoPosition string

const (
	LogoTopLeft     LogoPosition = "top-left"
	LogoTopRight    LogoPosition = "top-right"
	LogoBottomLeft  LogoPosition = "bottom-left"
	LogoBottomRight LogoPosition = "bottom-right"
	LogoCenter      LogoPosition = "center"
)

// ParseLogoPosition converts user input; empty input yields bottom-right.
func ParseLogoPosition(raw string) (LogoPosition, error) {
	switch p := LogoPosition(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return LogoBottomRight, nil
	case LogoTopLeft, LogoTopRight, LogoBottomLeft, LogoBottomRight, LogoCenter:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown logo position %q", ErrInvalidRequest, raw)
	}
}
