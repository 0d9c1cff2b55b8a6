package zone

import (
	"fmt"
	"image"
)

// BaseDPI is the resolution fixed-pixel geometry is authored at. Pixel
// fields scale by renderDPI/BaseDPI when a page is rendered at a
// different resolution.
const BaseDPI = 120

// Kind discriminates the geometry variant a zone stores.
type Kind string

const (
	KindCorner Kind = "corner"
	KindEdge   Kind = "edge"
	KindRect   Kind = "rect"
)

// Corner names the page corner a corner zone is anchored to.
type Corner string

const (
	TopLeft     Corner = "top-left"
	TopRight    Corner = "top-right"
	BottomLeft  Corner = "bottom-left"
	BottomRight Corner = "bottom-right"
)

// Edge names the page edge an edge zone runs along.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
)

// ZoneType says whether a zone removes artifacts or protects content.
type ZoneType string

const (
	TypeRemove  ZoneType = "remove"
	TypeProtect ZoneType = "protect"
)

// Scope controls which pages a zone applies to.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeOdd      Scope = "odd"
	ScopeEven     Scope = "even"
	ScopeFreePage Scope = "page" // single page, identified by TargetPage
)

// CornerGeometry is a fixed-pixel rectangle anchored at a page corner.
// Staple marks are a physical size, so corners must not scale with the page.
type CornerGeometry struct {
	Corner   Corner `yaml:"corner"`
	WidthPx  int    `yaml:"width_px"`
	HeightPx int    `yaml:"height_px"`
}

// EdgeGeometry runs LengthPct of the edge's axis and penetrates DepthPx
// into the page.
type EdgeGeometry struct {
	Edge      Edge    `yaml:"edge"`
	LengthPct float64 `yaml:"length_pct"`
	DepthPx   int     `yaml:"depth_px"`
}

// RectGeometry is a fully page-relative rectangle, used for user-drawn
// custom zones.
type RectGeometry struct {
	XPct float64 `yaml:"x_pct"`
	YPct float64 `yaml:"y_pct"`
	WPct float64 `yaml:"w_pct"`
	HPct float64 `yaml:"h_pct"`
}

// Geometry is a tagged union over the three variants. Exactly one of
// Corner/Edge/Rect is set, selected by Kind.
type Geometry struct {
	Kind   Kind
	Corner *CornerGeometry
	Edge   *EdgeGeometry
	Rect   *RectGeometry
}

// DataError reports stored geometry whose shape does not match its
// declared kind. Zones carrying one are skipped, never fatal.
type DataError struct {
	ZoneID string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("zone %q: %s", e.ZoneID, e.Reason)
}

// Validate checks that the variant matching Kind is present and its
// fields are in range.
func (g Geometry) Validate(zoneID string) error {
	switch g.Kind {
	case KindCorner:
		if g.Corner == nil {
			return &DataError{ZoneID: zoneID, Reason: "corner kind without corner geometry"}
		}
		if g.Corner.WidthPx < 0 || g.Corner.HeightPx < 0 {
			return &DataError{ZoneID: zoneID, Reason: "negative corner size"}
		}
	case KindEdge:
		if g.Edge == nil {
			return &DataError{ZoneID: zoneID, Reason: "edge kind without edge geometry"}
		}
		if g.Edge.LengthPct < 0 || g.Edge.LengthPct > 1 {
			return &DataError{ZoneID: zoneID, Reason: fmt.Sprintf("edge length %.3f outside [0,1]", g.Edge.LengthPct)}
		}
		if g.Edge.DepthPx < 0 {
			return &DataError{ZoneID: zoneID, Reason: "negative edge depth"}
		}
	case KindRect:
		if g.Rect == nil {
			return &DataError{ZoneID: zoneID, Reason: "rect kind without rect geometry"}
		}
		for _, v := range []float64{g.Rect.XPct, g.Rect.YPct, g.Rect.WPct, g.Rect.HPct} {
			if v < 0 || v > 1 {
				return &DataError{ZoneID: zoneID, Reason: fmt.Sprintf("rect field %.3f outside [0,1]", v)}
			}
		}
	default:
		return &DataError{ZoneID: zoneID, Reason: fmt.Sprintf("unknown geometry kind %q", g.Kind)}
	}
	return nil
}

// Zone is a named region where artifact removal (or protection) applies.
type Zone struct {
	ID         string
	Name       string
	Type       ZoneType
	Threshold  int
	Enabled    bool
	Scope      Scope
	TargetPage int // meaningful only for ScopeFreePage
	Geometry   Geometry
}

// AppliesTo reports whether the zone's scope matches a 0-based page index.
// Odd/even parity is 1-based, matching how people number pages.
func (z *Zone) AppliesTo(pageIndex int) bool {
	switch z.Scope {
	case ScopeAll:
		return true
	case ScopeOdd:
		return (pageIndex+1)%2 == 1
	case ScopeEven:
		return (pageIndex+1)%2 == 0
	case ScopeFreePage:
		return z.TargetPage == pageIndex
	}
	return false
}

// IsEdgeOrCorner reports whether the zone hugs the page border. Such
// zones get outward padding and a tighter ink-protection threshold.
func (z *Zone) IsEdgeOrCorner() bool {
	return z.Geometry.Kind == KindCorner || z.Geometry.Kind == KindEdge
}

// ResolvedZone pairs a zone with its absolute pixel rectangle on a page.
type ResolvedZone struct {
	Zone Zone
	Rect image.Rectangle
}

// PaddedRect extends the rectangle outward past the page border: corners
// on their two outer sides, edges on their one outer side. Custom rect
// zones are returned unchanged. The result is clipped to the page.
func (r ResolvedZone) PaddedRect(pad, pageW, pageH int) image.Rectangle {
	rect := r.Rect
	switch r.Zone.Geometry.Kind {
	case KindCorner:
		switch r.Zone.Geometry.Corner.Corner {
		case TopLeft:
			rect.Min.X -= pad
			rect.Min.Y -= pad
		case TopRight:
			rect.Max.X += pad
			rect.Min.Y -= pad
		case BottomLeft:
			rect.Min.X -= pad
			rect.Max.Y += pad
		case BottomRight:
			rect.Max.X += pad
			rect.Max.Y += pad
		}
	case KindEdge:
		switch r.Zone.Geometry.Edge.Edge {
		case EdgeTop:
			rect.Min.Y -= pad
		case EdgeBottom:
			rect.Max.Y += pad
		case EdgeLeft:
			rect.Min.X -= pad
		case EdgeRight:
			rect.Max.X += pad
		}
	}
	return rect.Intersect(image.Rect(0, 0, pageW, pageH))
}

// resolve converts the geometry to an absolute pixel rectangle on a page
// of the given size. dpiScale multiplies fixed-pixel fields.
func (g Geometry) resolve(pageW, pageH int, dpiScale float64) image.Rectangle {
	switch g.Kind {
	case KindCorner:
		w := scalePx(g.Corner.WidthPx, dpiScale)
		h := scalePx(g.Corner.HeightPx, dpiScale)
		var x, y int
		switch g.Corner.Corner {
		case TopLeft:
			x, y = 0, 0
		case TopRight:
			x, y = pageW-w, 0
		case BottomLeft:
			x, y = 0, pageH-h
		case BottomRight:
			x, y = pageW-w, pageH-h
		}
		return clipRect(x, y, w, h, pageW, pageH)
	case KindEdge:
		depth := scalePx(g.Edge.DepthPx, dpiScale)
		switch g.Edge.Edge {
		case EdgeTop:
			return clipRect(0, 0, int(g.Edge.LengthPct*float64(pageW)), depth, pageW, pageH)
		case EdgeBottom:
			return clipRect(0, pageH-depth, int(g.Edge.LengthPct*float64(pageW)), depth, pageW, pageH)
		case EdgeLeft:
			return clipRect(0, 0, depth, int(g.Edge.LengthPct*float64(pageH)), pageW, pageH)
		case EdgeRight:
			return clipRect(pageW-depth, 0, depth, int(g.Edge.LengthPct*float64(pageH)), pageW, pageH)
		}
	case KindRect:
		return clipRect(
			int(g.Rect.XPct*float64(pageW)),
			int(g.Rect.YPct*float64(pageH)),
			int(g.Rect.WPct*float64(pageW)),
			int(g.Rect.HPct*float64(pageH)),
			pageW, pageH,
		)
	}
	return image.Rectangle{}
}

// updateFromRect writes a pixel rectangle back into the geometry's own
// variant: corners keep only size, edges keep length percentage and
// depth, rects keep all four percentages.
func (g *Geometry) updateFromRect(rect image.Rectangle, pageW, pageH int, dpiScale float64) {
	switch g.Kind {
	case KindCorner:
		g.Corner.WidthPx = unscalePx(rect.Dx(), dpiScale)
		g.Corner.HeightPx = unscalePx(rect.Dy(), dpiScale)
	case KindEdge:
		switch g.Edge.Edge {
		case EdgeTop, EdgeBottom:
			g.Edge.LengthPct = float64(rect.Dx()) / float64(pageW)
			g.Edge.DepthPx = unscalePx(rect.Dy(), dpiScale)
		case EdgeLeft, EdgeRight:
			g.Edge.LengthPct = float64(rect.Dy()) / float64(pageH)
			g.Edge.DepthPx = unscalePx(rect.Dx(), dpiScale)
		}
		if g.Edge.LengthPct > 1 {
			g.Edge.LengthPct = 1
		}
	case KindRect:
		g.Rect.XPct = float64(rect.Min.X) / float64(pageW)
		g.Rect.YPct = float64(rect.Min.Y) / float64(pageH)
		g.Rect.WPct = float64(rect.Dx()) / float64(pageW)
		g.Rect.HPct = float64(rect.Dy()) / float64(pageH)
	}
}

func scalePx(px int, scale float64) int {
	return int(float64(px) * scale)
}

func unscalePx(px int, scale float64) int {
	if scale == 0 {
		return px
	}
	return int(float64(px)/scale + 0.5)
}

func clipRect(x, y, w, h, pageW, pageH int) image.Rectangle {
	r := image.Rect(x, y, x+w, y+h)
	return r.Intersect(image.Rect(0, 0, pageW, pageH))
}

// clone returns a deep copy of the geometry.
func (g Geometry) clone() Geometry {
	out := Geometry{Kind: g.Kind}
	if g.Corner != nil {
		c := *g.Corner
		out.Corner = &c
	}
	if g.Edge != nil {
		e := *g.Edge
		out.Edge = &e
	}
	if g.Rect != nil {
		r := *g.Rect
		out.Rect = &r
	}
	return out
}
