package export

import (
	"strings"
	"testing"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/physics"
	"github.com/san-kum/sphindex/internal/spatial"
	"github.com/san-kum/sphindex/internal/spatial/quadtree"
)

func TestFrameToSVG(t *testing.T) {
	ps := []dynamo.Particle{
		{Position: dynamo.V(10, 20)},
		{Position: dynamo.V(30, 40)},
	}
	ptr := dynamo.V(50, 50)
	svg := FrameToSVG(ps, 100, 80, 2, Overlay{
		Rects:   []spatial.Rect{{MinX: 0, MinY: 0, MaxX: 50, MaxY: 40}},
		Path:    []dynamo.Vec2{dynamo.V(10, 20), dynamo.V(30, 40)},
		Pointer: &ptr,
	})

	for _, want := range []string{
		`width="200" height="160"`,
		`<circle cx="20.0" cy="40.0" r="3.0"/>`,
		`<circle cx="60.0" cy="80.0" r="3.0"/>`,
		`<rect x="0.0" y="0.0" width="100.0" height="80.0"/>`,
		`d="M20.0,40.0 L60.0,80.0"`,
		`stroke="#ffff00"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %s", want)
		}
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("svg not closed")
	}
}

func TestFrameToSVGNoOverlay(t *testing.T) {
	svg := FrameToSVG(nil, 100, 100, 0, Overlay{})
	if strings.Contains(svg, "<path") || strings.Contains(svg, `stroke="#ff00ff"`) {
		t.Error("empty overlay should draw no structure")
	}
	if !strings.Contains(svg, `width="100"`) {
		t.Error("non-positive scale should fall back to 1")
	}
}

func TestWorldOverlay(t *testing.T) {
	w := physics.NewWorld(100, 100, physics.WithIndex(quadtree.Build[dynamo.Particle]))
	w.AddParticle(dynamo.NewParticle(dynamo.V(20, 20), dynamo.Vec2{}))
	w.AddParticle(dynamo.NewParticle(dynamo.V(80, 70), dynamo.Vec2{}))

	ov := WorldOverlay(w, false)
	if ov.Rects != nil || ov.Path != nil || ov.Pointer != nil {
		t.Errorf("expected empty overlay, got %+v", ov)
	}

	ptr := dynamo.V(30, 40)
	w.SetPointer(&ptr, true)
	ov = WorldOverlay(w, true)
	if ov.Pointer == nil || *ov.Pointer != ptr {
		t.Errorf("pointer = %v, want %v", ov.Pointer, ptr)
	}
	if len(ov.Rects) == 0 {
		t.Fatal("expected quadtree node rectangles")
	}
	for _, r := range ov.Rects {
		if r.MinX < 0 || r.MinY < 0 || r.MaxX > 100 || r.MaxY > 100 {
			t.Errorf("rect %+v not clipped to the world", r)
		}
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("single value should give empty output")
	}
	svg := SeriesToSVG([]float64{0, 1}, 100, 60, "#00ff88")
	// 0 sits 10% above the bottom, 1 sits 10% below the top.
	if !strings.Contains(svg, "M0.0,55.0 L100.0,5.0") {
		t.Errorf("unexpected path:\n%s", svg)
	}
}
