package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)

	svg := CanvasToSVG(c, 10, "#00ff00")
	if !strings.Contains(svg, `width="80" height="80"`) {
		t.Errorf("unexpected size in %q", svg[:120])
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	if !strings.Contains(svg, `cx="5.0" cy="5.0"`) || !strings.Contains(svg, `cx="75.0" cy="75.0"`) {
		t.Error("dots are not centered in their cells")
	}

	if CanvasToSVG(nil, 1, "#fff") != "" {
		t.Error("nil canvas should give an empty document")
	}
}

func TestTraceSVG(t *testing.T) {
	points := []mgl64.Vec2{{0, 0}, {1, 1}, {2, 0}}
	svg := TraceSVG(points, 120, 60, "#ff00ff")

	if !strings.Contains(svg, `stroke="#ff00ff"`) {
		t.Error("stroke color missing")
	}
	// x spans [-0.2, 2.2]; y spans [-0.1, 1.1] and is flipped
	if !strings.Contains(svg, "M10.0,55.0 L60.0,5.0 L110.0,55.0") {
		t.Errorf("unexpected path in %s", svg)
	}

	if TraceSVG(points[:1], 10, 10, "#fff") != "" {
		t.Error("a single point should give an empty document")
	}
}
