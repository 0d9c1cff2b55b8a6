// Package remover detects staple-mark artifacts inside a region and
// repaints them with the page's background color.
package remover

import (
	"image"

	"destaple/internal/zone"
)

// Remover holds the pixel classification settings.
type Remover struct {
	// ProtectTextLuminance is the luminance below which a pixel counts
	// as ink and is never repainted. EdgeTextLuminance replaces it for
	// corner/edge zones, where stray print is rarer and staple marks
	// darker.
	ProtectTextLuminance int
	EdgeTextLuminance    int

	// ProtectHueBands additionally preserves red/blue ink such as
	// stamps and signatures.
	ProtectHueBands bool

	// BaseKernel is the morphology kernel diameter at zone.BaseDPI; it
	// scales with RenderDPI so blobs consolidate the same physical size
	// at any resolution.
	BaseKernel int
	RenderDPI  int
}

// NewRemover creates a remover with the stock thresholds for the given
// render DPI.
func NewRemover(renderDPI int) *Remover {
	if renderDPI <= 0 {
		renderDPI = zone.BaseDPI
	}
	return &Remover{
		ProtectTextLuminance: 80,
		EdgeTextLuminance:    50,
		BaseKernel:           5,
		RenderDPI:            renderDPI,
	}
}

// BackgroundColor estimates the page background as the per-channel
// median of a band away from the margins: middle third vertically,
// right-of-center horizontally, where staple marks never sit.
func BackgroundColor(img *image.RGBA) (r, g, b uint8) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	y1, y2 := bounds.Min.Y+h/3, bounds.Min.Y+2*h/3
	x1, x2 := bounds.Min.X+w/2, bounds.Min.X+3*w/4
	if x2 <= x1 {
		x2 = x1 + 1
	}
	if y2 <= y1 {
		y2 = y1 + 1
	}

	var hist [3][256]int
	count := 0
	for y := y1; y < y2; y++ {
		off := img.PixOffset(x1, y)
		for x := x1; x < x2; x++ {
			hist[0][img.Pix[off]]++
			hist[1][img.Pix[off+1]]++
			hist[2][img.Pix[off+2]]++
			off += 4
			count++
		}
	}
	return median(hist[0], count), median(hist[1], count), median(hist[2], count)
}

func median(hist [256]int, count int) uint8 {
	target := count / 2
	seen := 0
	for v := 0; v < 256; v++ {
		seen += hist[v]
		if seen > target {
			return uint8(v)
		}
	}
	return 255
}

// luminance is the standard BT.601 weighting, matching the grayscale
// conversion used for classification.
func luminance(r, g, b uint8) int {
	return (299*int(r) + 587*int(g) + 114*int(b)) / 1000
}

// RemoveArtifacts classifies and repaints artifact pixels in region,
// restricted to mask (nil means the whole region). The image is
// modified in place; applying zones sequentially on the same image is
// the intended compounding behavior.
//
// protectText applies the dark-ink luminance guard. It tracks the
// page-level protection switch: with protection off the caller asked
// for unconditional removal and even solid black marks repaint.
func (rv *Remover) RemoveArtifacts(img *image.RGBA, region image.Rectangle, mask *image.Alpha, threshold int, edgeZone, protectText bool) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return
	}
	bgR, bgG, bgB := BackgroundColor(img)
	bgLum := luminance(bgR, bgG, bgB)

	textLum := rv.ProtectTextLuminance
	if edgeZone {
		textLum = rv.EdgeTextLuminance
	}

	w, h := region.Dx(), region.Dy()
	artifact := make([]bool, w*h)
	inMask := make([]bool, w*h)

	for y := 0; y < h; y++ {
		off := img.PixOffset(region.Min.X, region.Min.Y+y)
		for x := 0; x < w; x++ {
			idx := y*w + x
			if mask != nil && mask.AlphaAt(region.Min.X+x, region.Min.Y+y).A < 128 {
				off += 4
				continue
			}
			inMask[idx] = true

			r, g, b := img.Pix[off], img.Pix[off+1], img.Pix[off+2]
			lum := luminance(r, g, b)
			if bgLum-lum <= threshold {
				off += 4
				continue
			}
			// Ink is dark and must never be treated as removable, even
			// against a light background.
			if protectText && lum < textLum {
				off += 4
				continue
			}
			if rv.ProtectHueBands && isRedOrBlue(r, g, b) {
				off += 4
				continue
			}
			artifact[idx] = true
			off += 4
		}
	}

	// Consolidate speckles into solid blobs and grow slightly so the
	// repaint leaves no fringe.
	kernel := rv.kernelOffsets()
	artifact = closeMask(artifact, w, h, kernel, 2)
	artifact = dilateMask(artifact, w, h, kernel, 3)

	for y := 0; y < h; y++ {
		off := img.PixOffset(region.Min.X, region.Min.Y+y)
		for x := 0; x < w; x++ {
			idx := y*w + x
			if artifact[idx] && inMask[idx] {
				img.Pix[off] = bgR
				img.Pix[off+1] = bgG
				img.Pix[off+2] = bgB
			}
			off += 4
		}
	}
}

// kernelOffsets builds an elliptical structuring element sized for the
// render DPI, forced odd.
func (rv *Remover) kernelOffsets() []image.Point {
	size := rv.BaseKernel * rv.RenderDPI / zone.BaseDPI
	if size < rv.BaseKernel {
		size = rv.BaseKernel
	}
	if size%2 == 0 {
		size++
	}
	radius := size / 2
	r2 := radius * radius
	var offsets []image.Point
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				offsets = append(offsets, image.Point{X: dx, Y: dy})
			}
		}
	}
	return offsets
}

// dilateMask sets a pixel when any kernel neighbor is set.
func dilateMask(mask []bool, w, h int, kernel []image.Point, iterations int) []bool {
	cur := mask
	for iter := 0; iter < iterations; iter++ {
		next := make([]bool, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if !cur[y*w+x] {
					continue
				}
				for _, o := range kernel {
					nx, ny := x+o.X, y+o.Y
					if nx >= 0 && nx < w && ny >= 0 && ny < h {
						next[ny*w+nx] = true
					}
				}
			}
		}
		cur = next
	}
	return cur
}

// erodeMask keeps a pixel only when every kernel neighbor is set.
// Out-of-bounds neighbors count as set, so blobs touching the region
// border are not eaten from the outside; marks sit exactly there.
func erodeMask(mask []bool, w, h int, kernel []image.Point, iterations int) []bool {
	cur := mask
	for iter := 0; iter < iterations; iter++ {
		next := make([]bool, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				keep := true
				for _, o := range kernel {
					nx, ny := x+o.X, y+o.Y
					if nx >= 0 && nx < w && ny >= 0 && ny < h && !cur[ny*w+nx] {
						keep = false
						break
					}
				}
				next[y*w+x] = keep
			}
		}
		cur = next
	}
	return cur
}

// closeMask fills small gaps: dilate then erode, n iterations each.
func closeMask(mask []bool, w, h int, kernel []image.Point, iterations int) []bool {
	out := dilateMask(mask, w, h, kernel, iterations)
	return erodeMask(out, w, h, kernel, iterations)
}

// isRedOrBlue reports whether a pixel falls in the reserved hue bands
// for stamp/signature ink: red below 20° or above 340°, blue 200°-260°,
// with enough saturation and value to be actual color.
func isRedOrBlue(r, g, b uint8) bool {
	hue, sat, val := rgbToHSV(r, g, b)
	if sat < 0.2 || val < 0.2 {
		return false
	}
	if hue < 20 || hue > 340 {
		return true
	}
	return hue >= 200 && hue <= 260
}

func rgbToHSV(r, g, b uint8) (hue, sat, val float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	max := rf
	if gf > max {
		max = gf
	}
	if bf > max {
		max = bf
	}
	min := rf
	if gf < min {
		min = gf
	}
	if bf < min {
		min = bf
	}
	val = max
	delta := max - min
	if max > 0 {
		sat = delta / max
	}
	if delta == 0 {
		return 0, sat, val
	}
	switch max {
	case rf:
		hue = 60 * ((gf - bf) / delta)
	case gf:
		hue = 60 * (2 + (bf-rf)/delta)
	default:
		hue = 60 * (4 + (rf-gf)/delta)
	}
	if hue < 0 {
		hue += 360
	}
	return hue, sat, val
}
