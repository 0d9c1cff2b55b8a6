package detect

import "image"

// ProtectedRegion is a rectangle believed to hold real page content
// (text, table, figure) that removal must not touch. Immutable once
// produced; coordinates are in the pixel space of the image it was
// detected on.
type ProtectedRegion struct {
	Bbox       image.Rectangle
	Label      string
	Confidence float64 // 0.0-1.0
}

// Detector finds protected regions in a page image. Detection may be
// backed by a local heuristic or a remote model server; either way an
// unavailable detector means "no protected regions", never a failed page.
type Detector interface {
	Detect(img image.Image) ([]ProtectedRegion, error)
	IsAvailable() bool
}

// DefaultProtectedLabels are the region labels protected out of the box.
var DefaultProtectedLabels = map[string]bool{
	"title":           true,
	"plain_text":      true,
	"table":           true,
	"table_footnote":  true,
	"figure_caption":  true,
	"isolate_formula": true,
}

// CopyLabels returns a copy of a label set, or the default set when nil.
func CopyLabels(labels map[string]bool) map[string]bool {
	src := labels
	if src == nil {
		src = DefaultProtectedLabels
	}
	out := make(map[string]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
