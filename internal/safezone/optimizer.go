// Package safezone shrinks a removal zone so it avoids protected
// content, by subtracting buffered protected regions from the zone
// rectangle.
package safezone

import (
	"image"
	"log"

	"github.com/peterstace/simplefeatures/geom"

	"destaple/internal/detect"
)

// SafeZone is a piece of a zone rectangle that is safe to modify.
type SafeZone struct {
	Polygon      geom.Polygon
	OriginalRect image.Rectangle
	Coverage     float64 // polygon area / original rect area, in [0,1]
}

// Bbox returns the polygon's integer bounding box.
func (s *SafeZone) Bbox() image.Rectangle {
	verts := s.Vertices()
	if len(verts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := verts[0].X, verts[0].Y
	maxX, maxY := minX, minY
	for _, v := range verts[1:] {
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y < minY {
			minY = v.Y
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Vertices returns the exterior ring as integer points, without the
// closing point.
func (s *SafeZone) Vertices() []image.Point {
	seq := s.Polygon.ExteriorRing().Coordinates()
	n := seq.Length()
	if n == 0 {
		return nil
	}
	pts := make([]image.Point, 0, n-1)
	for i := 0; i < n-1; i++ { // last point closes the ring
		xy := seq.GetXY(i)
		pts = append(pts, image.Point{X: int(xy.X), Y: int(xy.Y)})
	}
	return pts
}

// Optimizer computes safe zones. Margin buffers each protected region
// before subtraction so removal never touches the edge of real content.
type Optimizer struct {
	Margin            int     // safety cushion around protected regions (px)
	SimplifyTolerance float64 // vertex reduction tolerance
	MinArea           float64 // smallest surviving polygon area (px²)
}

// NewOptimizer creates an optimizer with the given margin and default
// simplification and area filters.
func NewOptimizer(margin int) *Optimizer {
	if margin < 0 {
		margin = 0
	}
	return &Optimizer{
		Margin:            margin,
		SimplifyTolerance: 2.0,
		MinArea:           100.0,
	}
}

// Optimize subtracts protected regions from a zone rectangle.
//
// Every intersecting region is subtracted, regardless of label or
// confidence; thresholding happens in the detector. When the geometry
// engine itself fails, the full zone rectangle is returned with
// coverage 1.0: for bulk cleanup an occasional under-protected region
// beats aborting the page, and the margin already provides a cushion.
func (o *Optimizer) Optimize(zoneRect image.Rectangle, regions []detect.ProtectedRegion) []SafeZone {
	if zoneRect.Dx() <= 0 || zoneRect.Dy() <= 0 {
		return nil
	}
	zonePoly := rectPolygon(zoneRect)
	zoneGeom := zonePoly.AsGeometry()
	originalArea := float64(zoneRect.Dx() * zoneRect.Dy())

	fullZone := []SafeZone{{Polygon: zonePoly, OriginalRect: zoneRect, Coverage: 1.0}}

	// Keep only regions whose rectangle actually touches the zone.
	var relevant []detect.ProtectedRegion
	for _, r := range regions {
		if r.Bbox.Dx() <= 0 || r.Bbox.Dy() <= 0 {
			continue
		}
		if geom.Intersects(rectPolygon(r.Bbox).AsGeometry(), zoneGeom) {
			relevant = append(relevant, r)
		}
	}
	if len(relevant) == 0 {
		return fullZone
	}

	// Buffer each region outward by the margin and union them. Regions
	// are axis-aligned rectangles, so buffering is rectangle expansion.
	union := rectPolygon(expandRect(relevant[0].Bbox, o.Margin)).AsGeometry()
	for _, r := range relevant[1:] {
		merged, err := geom.Union(union, rectPolygon(expandRect(r.Bbox, o.Margin)).AsGeometry())
		if err != nil {
			log.Printf("[!] Safe zone union failed, keeping full zone: %v", err)
			return fullZone
		}
		union = merged
	}

	diff, err := geom.Difference(zoneGeom, union)
	if err != nil {
		log.Printf("[!] Safe zone difference failed, keeping full zone: %v", err)
		return fullZone
	}

	var out []SafeZone
	for _, poly := range extractPolygons(diff) {
		simplified := o.simplify(poly)
		area := simplified.Area()
		if area < o.MinArea {
			continue
		}
		out = append(out, SafeZone{
			Polygon:      simplified,
			OriginalRect: zoneRect,
			Coverage:     area / originalArea,
		})
	}
	return out
}

// simplify reduces vertex count; if simplification fails or degenerates
// the polygon, the original is kept.
func (o *Optimizer) simplify(p geom.Polygon) geom.Polygon {
	if o.SimplifyTolerance <= 0 {
		return p
	}
	g, err := p.AsGeometry().Simplify(o.SimplifyTolerance)
	if err != nil || g.IsEmpty() || g.Type() != geom.TypePolygon {
		return p
	}
	return g.MustAsPolygon()
}

// extractPolygons pulls all polygons out of a geometry: a rectangle
// minus an internal rectangle can come back as a polygon, an L-shape, a
// donut, a multipolygon, or a collection with degenerate leftovers.
func extractPolygons(g geom.Geometry) []geom.Polygon {
	if g.IsEmpty() {
		return nil
	}
	switch g.Type() {
	case geom.TypePolygon:
		return []geom.Polygon{g.MustAsPolygon()}
	case geom.TypeMultiPolygon:
		mp := g.MustAsMultiPolygon()
		polys := make([]geom.Polygon, 0, mp.NumPolygons())
		for i := 0; i < mp.NumPolygons(); i++ {
			p := mp.PolygonN(i)
			if !p.AsGeometry().IsEmpty() {
				polys = append(polys, p)
			}
		}
		return polys
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		var polys []geom.Polygon
		for i := 0; i < gc.NumGeometries(); i++ {
			polys = append(polys, extractPolygons(gc.GeometryN(i))...)
		}
		return polys
	}
	return nil // lines and points are degenerate, drop them
}

// rectPolygon builds a closed rectangle polygon.
func rectPolygon(r image.Rectangle) geom.Polygon {
	x1, y1 := float64(r.Min.X), float64(r.Min.Y)
	x2, y2 := float64(r.Max.X), float64(r.Max.Y)
	seq := geom.NewSequence([]float64{
		x1, y1,
		x2, y1,
		x2, y2,
		x1, y2,
		x1, y1,
	}, geom.DimXY)
	return geom.NewPolygon([]geom.LineString{geom.NewLineString(seq)})
}

func expandRect(r image.Rectangle, margin int) image.Rectangle {
	return image.Rect(r.Min.X-margin, r.Min.Y-margin, r.Max.X+margin, r.Max.Y+margin)
}
