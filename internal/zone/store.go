package zone

import (
	"fmt"
	"image"
	"log"
)

// Store owns zone definitions and resolves them per page. Zones keep
// declaration order because removal effects compound, so processing
// order is part of the document's configuration.
type Store struct {
	// RenderDPI is the resolution pages are rendered at; fixed-pixel
	// geometry scales by RenderDPI/BaseDPI.
	RenderDPI int

	zones []Zone
}

// NewStore creates an empty store resolving at the given render DPI.
// A non-positive dpi falls back to BaseDPI.
func NewStore(renderDPI int) *Store {
	if renderDPI <= 0 {
		renderDPI = BaseDPI
	}
	return &Store{RenderDPI: renderDPI}
}

// Add appends a zone. IDs must be unique within the store; for
// free-per-page zones the (TargetPage, ID) pair is the identity, but a
// duplicate ID is rejected regardless so lookups stay unambiguous.
func (s *Store) Add(z Zone) error {
	for i := range s.zones {
		if s.zones[i].ID == z.ID {
			return fmt.Errorf("zone %q already exists", z.ID)
		}
	}
	s.zones = append(s.zones, z)
	return nil
}

// Remove deletes a zone by ID. Removing an unknown ID is a no-op.
func (s *Store) Remove(zoneID string) {
	for i := range s.zones {
		if s.zones[i].ID == zoneID {
			s.zones = append(s.zones[:i], s.zones[i+1:]...)
			return
		}
	}
}

// SetEnabled toggles a zone. A disabled zone resolves on no page.
func (s *Store) SetEnabled(zoneID string, enabled bool) {
	for i := range s.zones {
		if s.zones[i].ID == zoneID {
			s.zones[i].Enabled = enabled
			return
		}
	}
}

// Get returns a copy of the zone with the given ID.
func (s *Store) Get(zoneID string) (Zone, bool) {
	for i := range s.zones {
		if s.zones[i].ID == zoneID {
			z := s.zones[i]
			z.Geometry = z.Geometry.clone()
			return z, true
		}
	}
	return Zone{}, false
}

// Zones returns the zones in declaration order (copies).
func (s *Store) Zones() []Zone {
	out := make([]Zone, len(s.zones))
	for i := range s.zones {
		out[i] = s.zones[i]
		out[i].Geometry = s.zones[i].Geometry.clone()
	}
	return out
}

// Len returns the number of zones, enabled or not.
func (s *Store) Len() int { return len(s.zones) }

func (s *Store) dpiScale() float64 {
	return float64(s.RenderDPI) / float64(BaseDPI)
}

// ResolveZonesForPage converts every enabled zone whose scope matches
// the 0-based page index into an absolute pixel rectangle. A zone with
// malformed geometry is skipped with a warning; one bad zone must not
// block the rest of the page.
func (s *Store) ResolveZonesForPage(pageIndex, pageW, pageH int) []ResolvedZone {
	var resolved []ResolvedZone
	scale := s.dpiScale()
	for i := range s.zones {
		z := &s.zones[i]
		if !z.Enabled || !z.AppliesTo(pageIndex) {
			continue
		}
		if err := z.Geometry.Validate(z.ID); err != nil {
			log.Printf("[!] Skipping zone: %v", err)
			continue
		}
		rect := z.Geometry.resolve(pageW, pageH, scale)
		if rect.Empty() {
			continue
		}
		rz := ResolvedZone{Zone: *z, Rect: rect}
		rz.Zone.Geometry = z.Geometry.clone()
		resolved = append(resolved, rz)
	}
	return resolved
}

// UpdateZoneFromPixelRect writes a dragged/resized pixel rectangle back
// into the zone's own geometry variant. The edit broadcasts: the stored
// geometry is rewritten, so every page the zone's scope matches
// re-resolves to the edited rectangle. Resolve, update with the same
// rectangle, resolve again is idempotent within a pixel of rounding.
func (s *Store) UpdateZoneFromPixelRect(zoneID string, rect image.Rectangle, pageW, pageH int) error {
	if pageW <= 0 || pageH <= 0 {
		return fmt.Errorf("invalid page size %dx%d", pageW, pageH)
	}
	for i := range s.zones {
		z := &s.zones[i]
		if z.ID != zoneID {
			continue
		}
		if err := z.Geometry.Validate(z.ID); err != nil {
			return err
		}
		z.Geometry.updateFromRect(rect.Intersect(image.Rect(0, 0, pageW, pageH)), pageW, pageH, s.dpiScale())
		return nil
	}
	return fmt.Errorf("zone %q not found", zoneID)
}

// Snapshot deep-copies the store. Workers processing pages in parallel
// each take a snapshot so an in-flight edit on one page cannot leak into
// another worker's resolution.
func (s *Store) Snapshot() *Store {
	out := &Store{RenderDPI: s.RenderDPI, zones: make([]Zone, len(s.zones))}
	for i := range s.zones {
		out.zones[i] = s.zones[i]
		out.zones[i].Geometry = s.zones[i].Geometry.clone()
	}
	return out
}

// Default pixel sizes for staple marks, authored at BaseDPI.
const (
	DefaultCornerSizePx = 130
	DefaultEdgeDepthPx  = 50
)

// Presets returns the stock corner and edge zones: four fixed-size
// corners and the left/right margins. The top-left corner is the usual
// staple position and gets the most sensitive threshold.
func Presets() []Zone {
	corner := func(id, name string, c Corner, threshold int) Zone {
		return Zone{
			ID: id, Name: name, Type: TypeRemove, Threshold: threshold,
			Enabled: true, Scope: ScopeAll,
			Geometry: Geometry{Kind: KindCorner, Corner: &CornerGeometry{
				Corner: c, WidthPx: DefaultCornerSizePx, HeightPx: DefaultCornerSizePx,
			}},
		}
	}
	edge := func(id, name string, e Edge) Zone {
		return Zone{
			ID: id, Name: name, Type: TypeRemove, Threshold: 8,
			Enabled: true, Scope: ScopeAll,
			Geometry: Geometry{Kind: KindEdge, Edge: &EdgeGeometry{
				Edge: e, LengthPct: 1.0, DepthPx: DefaultEdgeDepthPx,
			}},
		}
	}
	return []Zone{
		corner("corner_tl", "Top-left corner", TopLeft, 3),
		corner("corner_tr", "Top-right corner", TopRight, 5),
		corner("corner_bl", "Bottom-left corner", BottomLeft, 5),
		corner("corner_br", "Bottom-right corner", BottomRight, 5),
		edge("margin_left", "Left margin", EdgeLeft),
		edge("margin_right", "Right margin", EdgeRight),
	}
}
