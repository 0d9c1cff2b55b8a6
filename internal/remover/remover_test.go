package remover

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"destaple/internal/zone"
)

func page(w, h int, bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

func TestBackgroundColor(t *testing.T) {
	img := page(300, 300, color.RGBA{200, 210, 220, 255})
	// Dark content in a corner must not shift the estimate: the sample
	// band sits away from the margins.
	fill(img, image.Rect(0, 0, 40, 40), black)

	r, g, b := BackgroundColor(img)
	if r != 200 || g != 210 || b != 220 {
		t.Errorf("Expected background (200,210,220), got (%d,%d,%d)", r, g, b)
	}
}

func TestRemoveArtifactsRepaintsDarkBlob(t *testing.T) {
	img := page(300, 300, white)
	fill(img, image.Rect(10, 10, 30, 30), color.RGBA{100, 100, 100, 255})

	rv := NewRemover(zone.BaseDPI)
	rv.RemoveArtifacts(img, image.Rect(0, 0, 120, 120), nil, 5, true, true)

	if got := img.RGBAAt(15, 15); got != white {
		t.Errorf("Expected blob repainted white, got %v", got)
	}
	// Pixels outside the region are never touched.
	if got := img.RGBAAt(200, 200); got != white {
		t.Errorf("Pixel outside region changed: %v", got)
	}
}

func TestRemoveArtifactsRepaintsCornerBlob(t *testing.T) {
	// A mark flush against the page corner must vanish completely; the
	// close step must not erode the mask from outside the region.
	img := page(300, 300, white)
	fill(img, image.Rect(0, 0, 20, 20), color.RGBA{100, 100, 100, 255})

	rv := NewRemover(zone.BaseDPI)
	rv.RemoveArtifacts(img, image.Rect(0, 0, 120, 120), nil, 5, true, true)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if got := img.RGBAAt(x, y); got != white {
				t.Fatalf("Pixel (%d,%d) kept its mark: %v", x, y, got)
			}
		}
	}
}

func TestRemoveArtifactsProtectsInk(t *testing.T) {
	// Near-black pixels read as print and survive while text protection
	// is on; with protection off they repaint like any other artifact.
	tests := []struct {
		name        string
		protectText bool
		wantWhite   bool
	}{
		{"protected", true, false},
		{"unprotected", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := page(300, 300, white)
			fill(img, image.Rect(10, 10, 30, 30), black)

			rv := NewRemover(zone.BaseDPI)
			rv.RemoveArtifacts(img, image.Rect(0, 0, 120, 120), nil, 5, true, tt.protectText)

			gotWhite := img.RGBAAt(15, 15) == white
			if gotWhite != tt.wantWhite {
				t.Errorf("Blob repainted = %v, want %v", gotWhite, tt.wantWhite)
			}
		})
	}
}

func TestRemoveArtifactsHueProtection(t *testing.T) {
	// Red stamp ink is light enough to pass the luminance guard, so only
	// the hue bands can save it.
	red := color.RGBA{200, 30, 30, 255}
	tests := []struct {
		name       string
		protectHue bool
		wantWhite  bool
	}{
		{"hue bands on", true, false},
		{"hue bands off", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := page(300, 300, white)
			fill(img, image.Rect(10, 10, 30, 30), red)

			rv := NewRemover(zone.BaseDPI)
			rv.ProtectHueBands = tt.protectHue
			rv.RemoveArtifacts(img, image.Rect(0, 0, 120, 120), nil, 5, true, true)

			gotWhite := img.RGBAAt(15, 15) == white
			if gotWhite != tt.wantWhite {
				t.Errorf("Blob repainted = %v, want %v", gotWhite, tt.wantWhite)
			}
		})
	}
}

func TestRemoveArtifactsBelowThreshold(t *testing.T) {
	// A blob barely darker than the background stays when the threshold
	// exceeds the difference.
	img := page(300, 300, white)
	faint := color.RGBA{250, 250, 250, 255}
	fill(img, image.Rect(10, 10, 30, 30), faint)

	rv := NewRemover(zone.BaseDPI)
	rv.RemoveArtifacts(img, image.Rect(0, 0, 120, 120), nil, 8, true, true)

	if got := img.RGBAAt(15, 15); got != faint {
		t.Errorf("Expected faint blob untouched, got %v", got)
	}
}

func TestRemoveArtifactsMaskRestriction(t *testing.T) {
	gray := color.RGBA{100, 100, 100, 255}
	img := page(300, 300, white)
	fill(img, image.Rect(10, 10, 30, 30), gray)
	fill(img, image.Rect(60, 60, 80, 80), gray)

	// Mask admits only the first blob's surroundings.
	mask := image.NewAlpha(image.Rect(0, 0, 300, 300))
	for y := 0; y < 45; y++ {
		for x := 0; x < 45; x++ {
			mask.SetAlpha(x, y, color.Alpha{A: 0xff})
		}
	}

	rv := NewRemover(zone.BaseDPI)
	rv.RemoveArtifacts(img, image.Rect(0, 0, 120, 120), mask, 5, true, true)

	if got := img.RGBAAt(15, 15); got != white {
		t.Errorf("Expected masked-in blob repainted, got %v", got)
	}
	if got := img.RGBAAt(70, 70); got != gray {
		t.Errorf("Expected masked-out blob untouched, got %v", got)
	}
}

func TestKernelScalesWithDPI(t *testing.T) {
	base := NewRemover(zone.BaseDPI)
	doubled := NewRemover(2 * zone.BaseDPI)
	if len(doubled.kernelOffsets()) <= len(base.kernelOffsets()) {
		t.Errorf("Expected a larger kernel at higher DPI: %d vs %d",
			len(doubled.kernelOffsets()), len(base.kernelOffsets()))
	}
}

func TestIsRedOrBlue(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{"red ink", 200, 30, 30, true},
		{"blue ink", 40, 60, 220, true},
		{"gray mark", 120, 120, 120, false},
		{"near black", 10, 10, 10, false},
		{"green", 30, 200, 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRedOrBlue(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("isRedOrBlue(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}
