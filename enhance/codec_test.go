package enhance

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := imaging.New(w, h, c)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeDimensions(t *testing.T) {
	data := pngBytes(t, 120, 80, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	m, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	defer m.Close()

	if m.Cols() != 120 || m.Rows() != 80 {
		t.Errorf("Expected 120x80 mat, got %dx%d", m.Cols(), m.Rows())
	}
}

func TestDecodeChannelOrder(t *testing.T) {
	// Pure red in, so after ingress conversion the first channel (blue)
	// must be zero and the third (red) full.
	data := pngBytes(t, 8, 8, color.NRGBA{R: 255, A: 255})

	m, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	defer m.Close()

	if b := m.GetUCharAt(0, 0); b != 0 {
		t.Errorf("Blue channel should be 0, got %d", b)
	}
	if r := m.GetUCharAt(0, 2); r != 255 {
		t.Errorf("Red channel should be 255, got %d", r)
	}
}

func TestDecodeGarbage(t *testing.T) {
	m, err := Decode([]byte("certainly not an image"))
	if err == nil {
		m.Close()
		t.Fatal("Expected an error for a corrupt byte stream")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []string{"jpg", "png", "bmp"} {
		t.Run(format, func(t *testing.T) {
			data := pngBytes(t, 60, 40, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
			m, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			defer m.Close()

			out, err := Encode(m, format, 95)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			// No silent re-scaling may sneak in through the codec.
			round, err := imaging.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("Re-decode failed: %v", err)
			}
			b := round.Bounds()
			if b.Dx() != 60 || b.Dy() != 40 {
				t.Errorf("Expected 60x40 after round trip, got %dx%d", b.Dx(), b.Dy())
			}
		})
	}
}

func TestEncodePreservesColor(t *testing.T) {
	data := pngBytes(t, 16, 16, color.NRGBA{R: 255, A: 255})
	m, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	defer m.Close()

	out, err := Encode(m, "png", 95)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	round, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Re-decode failed: %v", err)
	}
	r, g, b, _ := round.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("Red pixel came back as r=%d g=%d b=%d; channel order got scrambled", r>>8, g>>8, b>>8)
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	data := pngBytes(t, 8, 8, color.NRGBA{A: 255})
	m, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	defer m.Close()

	if _, err := Encode(m, "webp-or-something", 95); err == nil {
		t.Fatal("Expected an error for an unsupported format")
	}
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"png":  "image/png",
		"tif":  "image/tiff",
	}
	for format, want := range cases {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", format, got, want)
		}
	}
}
