package render

import (
	"bytes"
	"image/color"
	"image/png"
	"os/exec"
	"testing"

	"github.com/matzehuels/polytree/pkg/errors"
)

const square = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 20" width="10" height="20">
  <rect x="0" y="0" width="10" height="20" fill="#ff0000"/>
</svg>
`

func TestToPNG(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		w, h  int
	}{
		{"native", 1, 10, 20},
		{"double", 2, 20, 40},
		{"half", 0.5, 5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ToPNG([]byte(square), tt.scale)
			if err != nil {
				t.Fatalf("ToPNG() error: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
		})
	}
}

func TestRasterizeFills(t *testing.T) {
	img, err := Rasterize([]byte(square), 1)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	r, g, b, _ := img.At(5, 10).RGBA()
	if r>>8 < 200 || g>>8 > 50 || b>>8 > 50 {
		t.Errorf("center pixel = %v, want red", img.At(5, 10))
	}
}

func TestRasterizeClamps(t *testing.T) {
	huge := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 20000 100"></svg>`
	img, err := Rasterize([]byte(huge), 1)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if got := img.Bounds().Dx(); got != maxRasterDim {
		t.Errorf("width = %d, want %d", got, maxRasterDim)
	}
	if img.RGBAAt(0, 0) != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background = %v, want white", img.At(0, 0))
	}
}

func TestRasterizeInvalid(t *testing.T) {
	for _, scale := range []float64{0, -1} {
		if _, err := ToPNG([]byte(square), scale); err == nil {
			t.Errorf("ToPNG(scale=%v) should fail", scale)
		}
	}
	if _, err := ToPNG([]byte("<svg"), 1); err == nil {
		t.Error("ToPNG() should fail on truncated SVG")
	}
}

func TestToPDF(t *testing.T) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		t.Skip("rsvg-convert not installed")
	}
	pdf, err := ToPDF([]byte(square))
	if err != nil {
		t.Fatalf("ToPDF() error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("ToPDF() output does not look like a PDF")
	}
}

func TestToPDFWithoutRsvg(t *testing.T) {
	if _, err := exec.LookPath("rsvg-convert"); err == nil {
		t.Skip("rsvg-convert is installed")
	}
	_, err := ToPDF([]byte(square))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPDF() error = %v, want UNSUPPORTED", err)
	}
}
