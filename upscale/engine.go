package upscale

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/SANATANIxAPI/pic/tool"
)

// Config holds the engine parameters. Zero values fall back to the defaults
// the x4plus model was exported with.
type Config struct {
	ModelPath string
	Scale     int
	TileSize  int
	TilePad   int
}

// Engine wraps a fixed-scale super-resolution network. Images larger than the
// tile size are partitioned so working memory stays bounded regardless of
// input size. One Engine is shared process-wide; concurrent callers are
// serialized at the inference step because the network's internal buffers are
// not safe for concurrent forward passes.
type Engine struct {
	net      gocv.Net
	scale    int
	tileSize int
	tilePad  int

	mu    sync.Mutex
	infer func(tile gocv.Mat) (gocv.Mat, error)
}

// New loads the model weights and returns a ready engine. A missing or broken
// model is returned as an error; the caller is expected to treat it as fatal
// rather than serve without the 4k tier.
func New(cfg Config) (*Engine, error) {
	if cfg.Scale <= 0 {
		cfg.Scale = 4
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = 400
	}
	if cfg.TilePad < 0 {
		cfg.TilePad = 0
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("super-resolution model weights not found at %s: %v", cfg.ModelPath, err)
	}
	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load super-resolution model from %s", cfg.ModelPath)
	}
	e := &Engine{
		net:      net,
		scale:    cfg.Scale,
		tileSize: cfg.TileSize,
		tilePad:  cfg.TilePad,
	}
	e.infer = e.runModel
	tool.DefaultLogger.Infof("Loaded super-resolution model %s (scale x%d, tile %d, pad %d)",
		cfg.ModelPath, e.scale, e.tileSize, e.tilePad)
	return e, nil
}

// Close releases the network.
func (e *Engine) Close() error {
	return e.net.Close()
}

// Scale returns the fixed output scale factor.
func (e *Engine) Scale() int {
	return e.scale
}

// Upscale returns a new image with both dimensions multiplied by the engine
// scale. Inputs within the tile size run through the model in one pass;
// larger inputs are tiled, upscaled per tile and reassembled with the
// overlap bands averaged so tile seams stay invisible.
func (e *Engine) Upscale(src gocv.Mat) (gocv.Mat, error) {
	w, h := src.Cols(), src.Rows()
	if w == 0 || h == 0 {
		return gocv.NewMat(), errors.New("empty image")
	}
	if w <= e.tileSize && h <= e.tileSize {
		return e.infer(src)
	}

	canvas := gocv.NewMatWithSize(h*e.scale, w*e.scale, gocv.MatTypeCV8UC3)
	for _, ts := range tileGrid(w, h, e.tileSize, e.tilePad) {
		if err := e.upscaleTile(&canvas, src, ts); err != nil {
			canvas.Close()
			return gocv.NewMat(), err
		}
	}
	return canvas, nil
}

func (e *Engine) upscaleTile(canvas *gocv.Mat, src gocv.Mat, ts tileSpec) error {
	region := src.Region(ts.in)
	up, err := e.infer(region)
	region.Close()
	if err != nil {
		return fmt.Errorf("tile at %v: %v", ts.in.Min, err)
	}
	defer up.Close()

	// Crop the padding back out: keep only the out region, scaled.
	s := e.scale
	crop := up.Region(image.Rect(
		(ts.out.Min.X-ts.in.Min.X)*s, (ts.out.Min.Y-ts.in.Min.Y)*s,
		(ts.out.Max.X-ts.in.Min.X)*s, (ts.out.Max.Y-ts.in.Min.Y)*s,
	))
	defer crop.Close()

	e.paste(canvas, crop, ts)
	return nil
}

// paste writes a cropped, upscaled tile into the canvas. Bands shared with
// the left and top neighbors are averaged with what those tiles already
// wrote; the remainder is copied directly.
func (e *Engine) paste(canvas *gocv.Mat, tile gocv.Mat, ts tileSpec) {
	s := e.scale
	dst := image.Rect(ts.out.Min.X*s, ts.out.Min.Y*s, ts.out.Max.X*s, ts.out.Max.Y*s)
	tw, th := tile.Cols(), tile.Rows()
	bl := ts.blendLeft * s
	bt := ts.blendTop * s

	if bl > 0 {
		blendInto(canvas,
			image.Rect(dst.Min.X, dst.Min.Y, dst.Min.X+bl, dst.Max.Y),
			tile, image.Rect(0, 0, bl, th))
	}
	if bt > 0 {
		blendInto(canvas,
			image.Rect(dst.Min.X+bl, dst.Min.Y, dst.Max.X, dst.Min.Y+bt),
			tile, image.Rect(bl, 0, tw, bt))
	}

	rest := tile.Region(image.Rect(bl, bt, tw, th))
	defer rest.Close()
	dstRest := canvas.Region(image.Rect(dst.Min.X+bl, dst.Min.Y+bt, dst.Max.X, dst.Max.Y))
	defer dstRest.Close()
	rest.CopyTo(&dstRest)
}

func blendInto(canvas *gocv.Mat, dstRect image.Rectangle, tile gocv.Mat, srcRect image.Rectangle) {
	dstBand := canvas.Region(dstRect)
	defer dstBand.Close()
	srcBand := tile.Region(srcRect)
	defer srcBand.Close()
	blended := gocv.NewMat()
	defer blended.Close()
	gocv.AddWeighted(dstBand, 0.5, srcBand, 0.5, 0, &blended)
	blended.CopyTo(&dstBand)
}

// runModel performs one forward pass. The blob is fed at 1/255 scale with
// channels swapped to RGB, matching the x4plus export; the float output comes
// back in [0,1] and is requantized to 8-bit BGR.
func (e *Engine) runModel(tile gocv.Mat) (gocv.Mat, error) {
	blob := gocv.BlobFromImage(tile, 1.0/255.0, image.Pt(tile.Cols(), tile.Rows()),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	e.mu.Lock()
	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	e.mu.Unlock()
	defer out.Close()
	if out.Empty() {
		return gocv.NewMat(), errors.New("inference returned no output")
	}

	imgs := []gocv.Mat{gocv.NewMat()}
	gocv.ImagesFromBlob(out, imgs)
	rgb := imgs[0]
	defer rgb.Close()

	quantized := gocv.NewMat()
	defer quantized.Close()
	rgb.ConvertToWithParams(&quantized, gocv.MatTypeCV8UC3, 255, 0)

	bgr := gocv.NewMat()
	gocv.CvtColor(quantized, &bgr, gocv.ColorBGRToRGB)

	if bgr.Cols() != tile.Cols()*e.scale || bgr.Rows() != tile.Rows()*e.scale {
		got := fmt.Sprintf("%dx%d", bgr.Cols(), bgr.Rows())
		bgr.Close()
		return gocv.NewMat(), fmt.Errorf("model produced %s for a %dx%d tile, want scale x%d",
			got, tile.Cols(), tile.Rows(), e.scale)
	}
	return bgr, nil
}
