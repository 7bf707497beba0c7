package compositor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"productshots/internal/domain"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestApplyPlacesLogoAtAnchor(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	red := color.RGBA{255, 0, 0, 255}
	base := domain.ImageRef{Data: solidPNG(t, 400, 400, white)}
	logo := domain.ImageRef{Data: solidPNG(t, 100, 50, red)}
	size := domain.OutputSize{AspectRatio: "1:1", Width: 400, Height: 400}

	cases := []struct {
		pos        domain.LogoPosition
		inside     image.Point
		outsideRed image.Point
	}{
		{domain.LogoTopLeft, image.Point{X: 30, Y: 25}, image.Point{X: 380, Y: 380}},
		{domain.LogoBottomRight, image.Point{X: 370, Y: 375}, image.Point{X: 20, Y: 20}},
		{domain.LogoCenter, image.Point{X: 200, Y: 200}, image.Point{X: 5, Y: 5}},
	}
	for _, tc := range cases {
		t.Run(string(tc.pos), func(t *testing.T) {
			out, err := New().Apply(context.Background(), base, logo, tc.pos, size)
			if err != nil {
				t.Fatalf("Apply error: %v", err)
			}
			if out.MIMEType != "image/png" {
				t.Fatalf("mime = %q", out.MIMEType)
			}
			img, err := png.Decode(bytes.NewReader(out.Data))
			if err != nil {
				t.Fatalf("decode output: %v", err)
			}
			if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 400 {
				t.Fatalf("bounds = %v", img.Bounds())
			}
			if r, g, _, _ := img.At(tc.inside.X, tc.inside.Y).RGBA(); r>>8 < 200 || g>>8 > 60 {
				t.Fatalf("pixel %v should be logo red", tc.inside)
			}
			if _, g, _, _ := img.At(tc.outsideRed.X, tc.outsideRed.Y).RGBA(); g>>8 < 200 {
				t.Fatalf("pixel %v should stay white", tc.outsideRed)
			}
		})
	}
}

func TestApplyScalesToRequestedSize(t *testing.T) {
	base := domain.ImageRef{Data: solidPNG(t, 200, 250, color.White)}
	logo := domain.ImageRef{Data: solidPNG(t, 10, 10, color.Black)}
	out, err := New().Apply(context.Background(), base, logo, domain.LogoBottomLeft, domain.OutputSize{AspectRatio: "4:5", Width: 400, Height: 500})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(out.Data))
	if err != nil || cfg.Width != 400 || cfg.Height != 500 {
		t.Fatalf("config = %+v, err = %v", cfg, err)
	}
}

func TestApplyRejectsUndecodableInput(t *testing.T) {
	logo := domain.ImageRef{Data: solidPNG(t, 10, 10, color.Black)}
	_, err := New().Apply(context.Background(), domain.ImageRef{Data: []byte("nope")}, logo, domain.LogoCenter, domain.OutputSize{})
	if !errors.Is(err, domain.ErrCompositeFailed) {
		t.Fatalf("error = %v, want ErrCompositeFailed", err)
	}
}
