package safezone

import (
	"image"
	"image/draw"

	"github.com/peterstace/simplefeatures/geom"
	"golang.org/x/image/vector"
)

// Mask rasterizes the safe zone into a binary alpha mask of the given
// size. Interior rings (holes) are carved out.
func (s *SafeZone) Mask(width, height int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	fillPolygon(mask, s.Polygon)
	return mask
}

// UnionMask rasterizes several safe zones into one mask.
func UnionMask(zones []SafeZone, width, height int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	for i := range zones {
		fillPolygon(mask, zones[i].Polygon)
	}
	return mask
}

// RectMask builds a mask covering a plain rectangle, for zones that
// needed no optimization.
func RectMask(rect image.Rectangle, width, height int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	clipped := rect.Intersect(mask.Bounds())
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		row := mask.Pix[y*mask.Stride+clipped.Min.X : y*mask.Stride+clipped.Max.X]
		for x := range row {
			row[x] = 0xff
		}
	}
	return mask
}

// fillPolygon draws the polygon's exterior into dst and then erases its
// holes. Coverage is binarized at half intensity so anti-aliased edges
// don't leave a translucent fringe.
func fillPolygon(dst *image.Alpha, p geom.Polygon) {
	b := dst.Bounds()
	tmp := image.NewAlpha(b)
	rasterizeRing(tmp, p.ExteriorRing())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if tmp.AlphaAt(x, y).A >= 128 {
				dst.Pix[dst.PixOffset(x, y)] = 0xff
			}
		}
	}

	for i := 0; i < p.NumInteriorRings(); i++ {
		hole := image.NewAlpha(b)
		rasterizeRing(hole, p.InteriorRingN(i))
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if hole.AlphaAt(x, y).A >= 128 {
					dst.Pix[dst.PixOffset(x, y)] = 0
				}
			}
		}
	}
}

// rasterizeRing scan-fills one closed ring into dst.
func rasterizeRing(dst *image.Alpha, ring geom.LineString) {
	seq := ring.Coordinates()
	n := seq.Length()
	if n < 4 { // a closed ring needs at least a triangle plus closing point
		return
	}
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Src

	start := seq.GetXY(0)
	r.MoveTo(float32(start.X), float32(start.Y))
	for i := 1; i < n; i++ {
		xy := seq.GetXY(i)
		r.LineTo(float32(xy.X), float32(xy.Y))
	}
	r.ClosePath()
	r.Draw(dst, b, image.Opaque, image.Point{})
}
