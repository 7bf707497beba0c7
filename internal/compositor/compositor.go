// Package compositor stamps brand logos onto generated images.
package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"productshots/internal/domain"
)

const (
	// LogoWidthRatio is the logo width relative to the image width.
	LogoWidthRatio = 0.18

	// MarginRatio is the edge margin relative to the shorter image side.
	MarginRatio = 0.04

	minLogoWidth = 48
)

// Compositor overlays a logo at one of the fixed anchors and encodes PNG.
type Compositor struct {
	widthRatio float64
}

func New() *Compositor {
	return &Compositor{widthRatio: LogoWidthRatio}
}

// Apply returns img with logo drawn at pos. When size has the same aspect
// ratio as img but different pixels, img is first scaled to size.
func (c *Compositor) Apply(ctx context.Context, img, logo domain.ImageRef, pos domain.LogoPosition, size domain.OutputSize) (domain.ImageRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.ImageRef{}, err
	}
	base, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return domain.ImageRef{}, fmt.Errorf("%w: decode image: %v", domain.ErrCompositeFailed, err)
	}
	mark, _, err := image.Decode(bytes.NewReader(logo.Data))
	if err != nil {
		return domain.ImageRef{}, fmt.Errorf("%w: decode logo: %v", domain.ErrCompositeFailed, err)
	}

	base = fitToSize(base, size)
	bw, bh := base.Bounds().Dx(), base.Bounds().Dy()

	lw := max(minLogoWidth, int(math.Round(float64(bw)*c.widthRatio)))
	lw = min(lw, bw)
	mb := mark.Bounds()
	lh := max(1, int(math.Round(float64(lw)*float64(mb.Dy())/float64(mb.Dx()))))
	scaled := image.NewRGBA(image.Rect(0, 0, lw, lh))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), mark, mb, draw.Over, nil)

	x, y := anchor(pos, bw, bh, lw, lh)

	dc := gg.NewContextForImage(base)
	dc.DrawImage(scaled, x, y)

	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return domain.ImageRef{}, fmt.Errorf("%w: encode png: %v", domain.ErrCompositeFailed, err)
	}
	return domain.ImageRef{MIMEType: "image/png", Data: out.Bytes()}, nil
}

func fitToSize(img image.Image, size domain.OutputSize) image.Image {
	b := img.Bounds()
	if size.Width <= 0 || size.Height <= 0 || (b.Dx() == size.Width && b.Dy() == size.Height) {
		return img
	}
	have := float64(b.Dx()) / float64(b.Dy())
	want := float64(size.Width) / float64(size.Height)
	if math.Abs(have-want)/want > 0.01 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func anchor(pos domain.LogoPosition, bw, bh, lw, lh int) (int, int) {
	margin := int(math.Round(float64(min(bw, bh)) * MarginRatio))
	left, top := margin, margin
	right, bottom := bw-lw-margin, bh-lh-margin
	switch pos {
	case domain.LogoTopLeft:
		return left, top
	case domain.LogoTopRight:
		return right, top
	case domain.LogoBottomLeft:
		return left, bottom
	case domain.LogoCenter:
		return (bw - lw) / 2, (bh - lh) / 2
	default:
		return right, bottom
	}
}
