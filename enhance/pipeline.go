package enhance

import (
	"errors"
	"image"

	"gocv.io/x/gocv"

	"github.com/SANATANIxAPI/pic/types"
)

// ErrNoEngine is returned when the 4k tier is requested but no
// super-resolution engine was wired in.
var ErrNoEngine = errors.New("super-resolution engine unavailable")

// Upscaler is the super-resolution port. The process-wide engine implements
// it; tests substitute a cheap resize.
type Upscaler interface {
	Upscale(src gocv.Mat) (gocv.Mat, error)
}

// Pipeline maps (image, tier) to an enhanced image. It is pure: no disk or
// network I/O, only transient mats. Safe for concurrent use as long as the
// Upscaler is.
type Pipeline struct {
	upscaler    Upscaler
	jpegQuality int
}

func NewPipeline(upscaler Upscaler, jpegQuality int) *Pipeline {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 95
	}
	return &Pipeline{upscaler: upscaler, jpegQuality: jpegQuality}
}

// Apply runs the transform chain for the tier and returns a new mat the
// caller owns. src is left untouched. Every enumerated tier maps to a fixed
// chain; unknown tiers pass the image through unchanged.
func (p *Pipeline) Apply(src gocv.Mat, tier types.Tier) (gocv.Mat, error) {
	switch tier {
	case types.TierLow:
		// Halve both dimensions; this tier trades detail for size.
		w := max(src.Cols()/2, 1)
		h := max(src.Rows()/2, 1)
		dst := gocv.NewMat()
		gocv.Resize(src, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
		return dst, nil

	case types.TierMedium:
		dst := gocv.NewMat()
		gocv.DetailEnhance(src, &dst, 5, 0.15)
		return dst, nil

	case types.TierHigh:
		tmp := gocv.NewMat()
		defer tmp.Close()
		gocv.DetailEnhance(src, &tmp, 10, 0.15)
		dst := gocv.NewMat()
		gocv.EdgePreservingFilter(tmp, &dst, gocv.RecursFilter, 64, 0.2)
		return dst, nil

	case types.TierUltra:
		tmp := gocv.NewMat()
		defer tmp.Close()
		gocv.FastNlMeansDenoisingColoredWithParams(src, &tmp, 10, 10, 7, 21)
		dst := gocv.NewMat()
		gocv.DetailEnhance(tmp, &dst, 15, 0.2)
		return dst, nil

	case types.Tier4K:
		if p.upscaler == nil {
			return gocv.NewMat(), ErrNoEngine
		}
		return p.upscaler.Upscale(src)

	default:
		return src.Clone(), nil
	}
}

// Process is the byte-level entry point shared by the HTTP API and the bot:
// decode, apply the tier, encode in the requested format.
func (p *Pipeline) Process(data []byte, tier types.Tier, format string) ([]byte, error) {
	src, err := Decode(data)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	out, err := p.Apply(src, tier)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	return Encode(out, format, p.jpegQuality)
}
