package domain

import (
	"fmt"
	"strings"
)

// Angle enumerates the supported camera framings. The set is fixed.
type Angle string

const (
	AngleWide    Angle = "wide"
	AngleMedium  Angle = "medium"
	AngleCloseup Angle = "closeup"
	AngleTopdown Angle = "topdown"
	AngleDetail  Angle = "detail"
)

// AllAngles lists every angle in declaration order.
var AllAngles = []Angle{AngleWide, AngleMedium, AngleCloseup, AngleTopdown, AngleDetail}

// PreferredOrder is the generation order. Framings that usually produce the
// most recognizable product image come first so the canonical anchor is strong.
var PreferredOrder = []Angle{AngleMedium, AngleWide, AngleCloseup, AngleDetail, AngleTopdown}

var angleFraming = map[Angle]string{
	AngleWide:    "Wide establishing shot: show the full product inside the whole scene, product occupies about 30-40% of the frame.",
	AngleMedium:  "Medium shot at eye level: product fills about 50-60% of the frame with some scene context visible.",
	AngleCloseup: "Close-up shot: product fills about 75-85% of the frame, scene reduced to a soft background.",
	AngleTopdown: "Top-down flat lay: camera directly above at 90 degrees, product centered, scene props arranged around it.",
	AngleDetail:  "Macro detail shot: focus on the most distinctive surface, texture, or mark of the product with shallow depth of field.",
}

// ParseAngle converts user input into an Angle.
func ParseAngle(raw string) (Angle, error) {
	value := Angle(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case "close-up", "close_up":
		value = AngleCloseup
	case "top-down", "top_down", "flatlay", "flat-lay":
		value = AngleTopdown
	}
	if _, ok := angleFraming[value]; !ok {
		return "", fmt.Errorf("%w: unknown angle %q", ErrInvalidRequest, raw)
	}
	return value, nil
}

// Valid reports whether a is one of the fixed angles.
func (a Angle) Valid() bool {
	_, ok := angleFraming[a]
	return ok
}

// FramingHint returns the camera instruction for the angle.
func (a Angle) FramingHint() string {
	return angleFraming[a]
}
