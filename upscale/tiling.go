package upscale

import "image"

// tileSpec describes one tile of the partition grid, in source-image pixels.
//
// in is the padded region fed to the model: the tile interior extended by the
// configured padding on every side that has image content, so the model sees
// real neighboring pixels instead of a hard border.
//
// out is the region this tile contributes to the output canvas: the interior
// extended by half the padding toward interior neighbors, so adjacent tiles
// overlap and the seam can be averaged away. in always contains out.
type tileSpec struct {
	in  image.Rectangle
	out image.Rectangle
	// blendLeft/blendTop are the widths (source pixels) of the bands shared
	// with the already-pasted left/top neighbor; zero on grid edges.
	blendLeft int
	blendTop  int
}

// tileGrid partitions a w x h image into tiles of at most tile x tile pixels.
// Every source pixel belongs to exactly one tile interior; the padded and
// overlapping regions are derived from the interiors and clamped to the image.
func tileGrid(w, h, tile, pad int) []tileSpec {
	nx := (w + tile - 1) / tile
	ny := (h + tile - 1) / tile
	ov := pad / 2

	specs := make([]tileSpec, 0, nx*ny)
	for j := 0; j < ny; j++ {
		y0 := j * tile
		y1 := min(y0+tile, h)
		for i := 0; i < nx; i++ {
			x0 := i * tile
			x1 := min(x0+tile, w)

			out := image.Rect(x0, y0, x1, y1)
			if i > 0 {
				out.Min.X = x0 - ov
			}
			if i < nx-1 {
				out.Max.X = min(x1+ov, w)
			}
			if j > 0 {
				out.Min.Y = y0 - ov
			}
			if j < ny-1 {
				out.Max.Y = min(y1+ov, h)
			}

			in := image.Rect(
				max(x0-pad, 0), max(y0-pad, 0),
				min(x1+pad, w), min(y1+pad, h),
			)

			ts := tileSpec{in: in, out: out}
			if i > 0 {
				// The left neighbor's out reaches x0+ov, ours starts at x0-ov.
				ts.blendLeft = min(x0+ov, w) - (x0 - ov)
			}
			if j > 0 {
				ts.blendTop = min(y0+ov, h) - (y0 - ov)
			}
			specs = append(specs, ts)
		}
	}
	return specs
}
