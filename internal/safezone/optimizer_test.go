package safezone

import (
	"image"
	"testing"

	"destaple/internal/detect"
)

func region(r image.Rectangle) detect.ProtectedRegion {
	return detect.ProtectedRegion{Bbox: r, Label: "plain_text", Confidence: 0.9}
}

func totalCoverage(zones []SafeZone) float64 {
	var sum float64
	for i := range zones {
		sum += zones[i].Coverage
	}
	return sum
}

func TestOptimizeNoRegions(t *testing.T) {
	opt := NewOptimizer(5)
	zoneRect := image.Rect(0, 0, 100, 100)

	out := opt.Optimize(zoneRect, nil)
	if len(out) != 1 {
		t.Fatalf("Expected 1 safe zone, got %d", len(out))
	}
	if out[0].Coverage != 1.0 {
		t.Errorf("Expected coverage 1.0, got %f", out[0].Coverage)
	}
	if out[0].OriginalRect != zoneRect {
		t.Errorf("Expected original rect %v, got %v", zoneRect, out[0].OriginalRect)
	}
}

func TestOptimizeNonIntersecting(t *testing.T) {
	// A protected region elsewhere on the page leaves the zone whole.
	opt := NewOptimizer(5)
	out := opt.Optimize(image.Rect(0, 0, 100, 100), []detect.ProtectedRegion{
		region(image.Rect(500, 500, 600, 600)),
	})
	if len(out) != 1 || out[0].Coverage != 1.0 {
		t.Errorf("Expected untouched zone, got %d zones, coverage %f", len(out), totalCoverage(out))
	}
}

func TestOptimizeEmptyZone(t *testing.T) {
	opt := NewOptimizer(5)
	if out := opt.Optimize(image.Rectangle{}, nil); out != nil {
		t.Errorf("Expected nil for an empty zone, got %v", out)
	}
}

func TestOptimizeSubtractsRegion(t *testing.T) {
	// A region strictly inside the zone carves a hole.
	opt := NewOptimizer(0)
	zoneRect := image.Rect(0, 0, 100, 100)
	out := opt.Optimize(zoneRect, []detect.ProtectedRegion{
		region(image.Rect(40, 40, 60, 60)),
	})

	if len(out) == 0 {
		t.Fatal("Expected at least one safe zone")
	}
	cov := totalCoverage(out)
	// 10000 px² minus the 400 px² hole.
	if cov < 0.90 || cov > 0.99 {
		t.Errorf("Expected coverage near 0.96, got %f", cov)
	}
	for i := range out {
		if out[i].Coverage >= 1.0 {
			t.Errorf("Safe zone %d claims full coverage despite subtraction", i)
		}
	}
}

func TestOptimizeSplitsZone(t *testing.T) {
	// A region spanning the zone's full height splits it in two.
	opt := NewOptimizer(0)
	out := opt.Optimize(image.Rect(0, 0, 200, 100), []detect.ProtectedRegion{
		region(image.Rect(90, 0, 110, 100)),
	})

	if len(out) != 2 {
		t.Fatalf("Expected 2 safe zones, got %d", len(out))
	}
	for i := range out {
		if out[i].Coverage < 0.40 || out[i].Coverage > 0.50 {
			t.Errorf("Safe zone %d: expected coverage ~0.45, got %f", i, out[i].Coverage)
		}
	}
}

func TestOptimizeCoverageMonotonicInMargin(t *testing.T) {
	zoneRect := image.Rect(0, 0, 100, 100)
	regions := []detect.ProtectedRegion{region(image.Rect(40, 40, 60, 60))}

	prev := 2.0
	for _, margin := range []int{0, 5, 10, 20} {
		cov := totalCoverage(NewOptimizer(margin).Optimize(zoneRect, regions))
		if cov > prev {
			t.Errorf("Margin %d: coverage %f grew past %f", margin, cov, prev)
		}
		prev = cov
	}
}

func TestOptimizeCoverageMonotonicInRegions(t *testing.T) {
	zoneRect := image.Rect(0, 0, 200, 200)
	regions := []detect.ProtectedRegion{
		region(image.Rect(20, 20, 60, 60)),
		region(image.Rect(120, 120, 180, 160)),
		region(image.Rect(40, 140, 90, 190)),
	}

	opt := NewOptimizer(2)
	prev := 2.0
	for n := 0; n <= len(regions); n++ {
		cov := totalCoverage(opt.Optimize(zoneRect, regions[:n]))
		if cov > prev {
			t.Errorf("With %d regions: coverage %f grew past %f", n, cov, prev)
		}
		prev = cov
	}
}

func TestOptimizeMinAreaFilter(t *testing.T) {
	// What survives subtraction is an 80 px² sliver, below MinArea.
	opt := NewOptimizer(0)
	out := opt.Optimize(image.Rect(0, 0, 20, 20), []detect.ProtectedRegion{
		region(image.Rect(4, 0, 20, 20)),
	})
	if len(out) != 0 {
		t.Errorf("Expected the sliver to be filtered, got %d zones", len(out))
	}
}

func TestSafeZoneMask(t *testing.T) {
	opt := NewOptimizer(0)
	out := opt.Optimize(image.Rect(0, 0, 100, 100), []detect.ProtectedRegion{
		region(image.Rect(40, 40, 60, 60)),
	})
	if len(out) == 0 {
		t.Fatal("Expected at least one safe zone")
	}

	mask := UnionMask(out, 100, 100)
	tests := []struct {
		x, y int
		want bool
	}{
		{10, 10, true},  // zone interior
		{90, 90, true},  // zone interior, other side of the hole
		{50, 50, false}, // protected hole
		{45, 55, false}, // still inside the hole
	}
	for _, tt := range tests {
		got := mask.AlphaAt(tt.x, tt.y).A >= 128
		if got != tt.want {
			t.Errorf("Mask at (%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRectMask(t *testing.T) {
	mask := RectMask(image.Rect(10, 10, 30, 30), 50, 50)
	if mask.AlphaAt(15, 15).A != 0xff {
		t.Error("Expected interior pixel to be set")
	}
	if mask.AlphaAt(5, 5).A != 0 {
		t.Error("Expected exterior pixel to be clear")
	}
	if mask.AlphaAt(30, 30).A != 0 {
		t.Error("Expected pixel past Max to be clear")
	}
}

func TestBboxContainsVertices(t *testing.T) {
	opt := NewOptimizer(0)
	out := opt.Optimize(image.Rect(10, 20, 110, 220), nil)
	if len(out) != 1 {
		t.Fatalf("Expected 1 safe zone, got %d", len(out))
	}
	bbox := out[0].Bbox()
	for _, v := range out[0].Vertices() {
		if !v.In(bbox) {
			t.Errorf("Vertex %v outside bbox %v", v, bbox)
		}
	}
}
