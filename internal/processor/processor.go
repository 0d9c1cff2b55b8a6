// Package processor orchestrates zone resolution, safe-zone
// optimization and artifact removal for a page.
package processor

import (
	"fmt"
	"image"
	"image/draw"

	"destaple/internal/detect"
	"destaple/internal/remover"
	"destaple/internal/safezone"
	"destaple/internal/zone"
)

// DefaultEdgePadding extends corner/edge zones past the page border so
// marks hugging the scan edge are caught.
const DefaultEdgePadding = 10

// Processor is a pure per-page transform: same inputs, same output.
// It holds no mutable state across calls.
type Processor struct {
	Remover     *remover.Remover
	Optimizer   *safezone.Optimizer
	EdgePadding int
}

// New creates a processor for pages rendered at the given DPI, with the
// given protection margin.
func New(renderDPI, margin int) *Processor {
	return &Processor{
		Remover:     remover.NewRemover(renderDPI),
		Optimizer:   safezone.NewOptimizer(margin),
		EdgePadding: DefaultEdgePadding,
	}
}

// Process applies every zone matching the page, in declaration order.
//
// Protect-type zones become protected regions rather than removal
// targets. Removal zones intersected by protected regions are narrowed
// through the optimizer; the rest process their full padded rectangle.
// Processing never fails per-zone: bad zones are skipped and missing
// detection means no protection. The only error is a malformed input
// image, which is a caller contract violation.
func (p *Processor) Process(img *image.RGBA, pageIndex int, store *zone.Store, protectionEnabled bool, cached []detect.ProtectedRegion) (*image.RGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("nil input image")
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty input image %dx%d", w, h)
	}

	resolved := store.ResolveZonesForPage(pageIndex, w, h)
	if len(resolved) == 0 {
		return img, nil
	}

	var removal []zone.ResolvedZone
	var protected []detect.ProtectedRegion
	if protectionEnabled {
		protected = append(protected, cached...)
	}
	for _, rz := range resolved {
		if rz.Zone.Type == zone.TypeProtect {
			// User-drawn protection outranks any detector output.
			protected = append(protected, detect.ProtectedRegion{
				Bbox:       rz.Rect,
				Label:      "custom_protect",
				Confidence: 1.0,
			})
			continue
		}
		removal = append(removal, rz)
	}
	if len(removal) == 0 {
		return img, nil
	}

	result := cloneRGBA(img)
	for _, rz := range removal {
		rect := rz.PaddedRect(p.EdgePadding, w, h)
		if rect.Empty() {
			continue
		}
		edge := rz.Zone.IsEdgeOrCorner()

		if len(protected) == 0 {
			p.Remover.RemoveArtifacts(result, rect, nil, rz.Zone.Threshold, edge, protectionEnabled)
			continue
		}
		for _, sz := range p.Optimizer.Optimize(rect, protected) {
			if sz.Coverage >= 1.0 {
				p.Remover.RemoveArtifacts(result, rect, nil, rz.Zone.Threshold, edge, protectionEnabled)
				continue
			}
			mask := sz.Mask(w, h)
			p.Remover.RemoveArtifacts(result, sz.Bbox(), mask, rz.Zone.Threshold, edge, protectionEnabled)
		}
	}
	return result, nil
}

// ToRGBA normalizes any decoded page image into a zero-origin RGBA
// buffer.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func cloneRGBA(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}
