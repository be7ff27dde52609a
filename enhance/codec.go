package enhance

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// The pipeline works on 8-bit 3-channel BGR mats. Conversion happens exactly
// twice: RGB to BGR here on ingress, BGR back to RGB on egress. Nothing
// between Decode and Encode may reorder channels.

// Decode parses encoded image bytes into a BGR mat.
func Decode(data []byte) (gocv.Mat, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to decode image: %v", err)
	}
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	if w == 0 || h == 0 {
		return gocv.NewMat(), fmt.Errorf("decoded image is empty")
	}
	buf := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+3]
			o := (y*w + x) * 3
			buf[o+0] = p[2]
			buf[o+1] = p[1]
			buf[o+2] = p[0]
		}
	}
	return gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, buf)
}

// Encode serializes a BGR mat into the named format ("jpg", "png", "bmp",
// "tif", "gif"). quality applies to JPEG only.
func Encode(m gocv.Mat, format string, quality int) ([]byte, error) {
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	if m.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("expected 8-bit 3-channel image, got mat type %d", m.Type())
	}

	src := m
	if !m.IsContinuous() {
		src = m.Clone()
		defer src.Close()
	}
	w, h := src.Cols(), src.Rows()
	data := src.ToBytes()

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 3
			d := y*nrgba.Stride + x*4
			nrgba.Pix[d+0] = data[o+2]
			nrgba.Pix[d+1] = data[o+1]
			nrgba.Pix[d+2] = data[o+0]
			nrgba.Pix[d+3] = 0xff
		}
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, nrgba, f, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image as %s: %v", format, err)
	}
	return out.Bytes(), nil
}

// ContentType returns the MIME type for an output format name.
func ContentType(format string) string {
	switch format {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "image/" + format
	}
}
