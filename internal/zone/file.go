package zone

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ZoneFileVersion is the current zone file format version.
const ZoneFileVersion = "1.0"

// zoneFile is the on-disk form of a zone set.
type zoneFile struct {
	Version string     `yaml:"version"`
	Zones   []zoneWire `yaml:"zones"`
}

// zoneWire is the serialized form of a single zone. Geometry is a nested
// mapping discriminated by its kind field.
type zoneWire struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name,omitempty"`
	Type       ZoneType `yaml:"type"`
	Threshold  int      `yaml:"threshold"`
	Enabled    bool     `yaml:"enabled"`
	Scope      Scope    `yaml:"scope"`
	TargetPage int      `yaml:"target_page,omitempty"`
	Geometry   Geometry `yaml:"geometry"`
}

// geometryWire flattens the union for yaml: kind plus the superset of
// variant fields. Only the fields of the active variant are emitted.
type geometryWire struct {
	Kind      Kind     `yaml:"kind"`
	Corner    Corner   `yaml:"corner,omitempty"`
	WidthPx   *int     `yaml:"width_px,omitempty"`
	HeightPx  *int     `yaml:"height_px,omitempty"`
	Edge      Edge     `yaml:"edge,omitempty"`
	LengthPct *float64 `yaml:"length_pct,omitempty"`
	DepthPx   *int     `yaml:"depth_px,omitempty"`
	XPct      *float64 `yaml:"x_pct,omitempty"`
	YPct      *float64 `yaml:"y_pct,omitempty"`
	WPct      *float64 `yaml:"w_pct,omitempty"`
	HPct      *float64 `yaml:"h_pct,omitempty"`
}

// MarshalYAML emits only the fields belonging to the active variant.
func (g Geometry) MarshalYAML() (interface{}, error) {
	w := geometryWire{Kind: g.Kind}
	switch g.Kind {
	case KindCorner:
		if g.Corner == nil {
			return nil, fmt.Errorf("corner geometry missing")
		}
		w.Corner = g.Corner.Corner
		w.WidthPx = &g.Corner.WidthPx
		w.HeightPx = &g.Corner.HeightPx
	case KindEdge:
		if g.Edge == nil {
			return nil, fmt.Errorf("edge geometry missing")
		}
		w.Edge = g.Edge.Edge
		w.LengthPct = &g.Edge.LengthPct
		w.DepthPx = &g.Edge.DepthPx
	case KindRect:
		if g.Rect == nil {
			return nil, fmt.Errorf("rect geometry missing")
		}
		w.XPct = &g.Rect.XPct
		w.YPct = &g.Rect.YPct
		w.WPct = &g.Rect.WPct
		w.HPct = &g.Rect.HPct
	default:
		return nil, fmt.Errorf("unknown geometry kind %q", g.Kind)
	}
	return w, nil
}

// UnmarshalYAML builds the variant selected by the kind field. Fields
// for a different variant are ignored here; Validate catches a missing
// active variant later so a malformed zone skips instead of failing the
// whole file.
func (g *Geometry) UnmarshalYAML(value *yaml.Node) error {
	var w geometryWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	g.Kind = w.Kind
	g.Corner, g.Edge, g.Rect = nil, nil, nil
	switch w.Kind {
	case KindCorner:
		if w.WidthPx != nil && w.HeightPx != nil {
			g.Corner = &CornerGeometry{Corner: w.Corner, WidthPx: *w.WidthPx, HeightPx: *w.HeightPx}
		}
	case KindEdge:
		if w.LengthPct != nil && w.DepthPx != nil {
			g.Edge = &EdgeGeometry{Edge: w.Edge, LengthPct: *w.LengthPct, DepthPx: *w.DepthPx}
		}
	case KindRect:
		if w.XPct != nil && w.YPct != nil && w.WPct != nil && w.HPct != nil {
			g.Rect = &RectGeometry{XPct: *w.XPct, YPct: *w.YPct, WPct: *w.WPct, HPct: *w.HPct}
		}
	}
	return nil
}

// WriteZoneFile writes the store's zones to a YAML file.
func WriteZoneFile(s *Store, path string) error {
	file := zoneFile{Version: ZoneFileVersion}
	for _, z := range s.Zones() {
		file.Zones = append(file.Zones, zoneWire{
			ID:         z.ID,
			Name:       z.Name,
			Type:       z.Type,
			Threshold:  z.Threshold,
			Enabled:    z.Enabled,
			Scope:      z.Scope,
			TargetPage: z.TargetPage,
			Geometry:   z.Geometry,
		})
	}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadZoneFile loads zones from a YAML file into a new store resolving
// at the given render DPI.
func ReadZoneFile(path string, renderDPI int) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file zoneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse zone file %s: %w", path, err)
	}
	store := NewStore(renderDPI)
	for _, w := range file.Zones {
		z := Zone{
			ID:         w.ID,
			Name:       w.Name,
			Type:       w.Type,
			Threshold:  w.Threshold,
			Enabled:    w.Enabled,
			Scope:      w.Scope,
			TargetPage: w.TargetPage,
			Geometry:   w.Geometry,
		}
		if z.Type == "" {
			z.Type = TypeRemove
		}
		if z.Scope == "" {
			z.Scope = ScopeAll
		}
		if err := store.Add(z); err != nil {
			return nil, err
		}
	}
	return store, nil
}
