package cloth

import (
	"math"
	"reflect"
	"testing"
)

func TestBuildTopology_Idempotent(t *testing.T) {
	a := BuildTopology(5, 7)
	b := BuildTopology(5, 7)
	if !reflect.DeepEqual(a, b) {
		t.Error("two builds with the same shape differ")
	}
}

func TestBuildTopology_SelfLoopsAtBoundary(t *testing.T) {
	topo := BuildTopology(4, 4)

	corner := topo.Index(0, 0)
	links := topo.Links[corner]
	// (-1,0), (0,-1), (-1,-1), (-1,1), (1,-1), (0,-2), (-2,0) fall off the grid
	for _, k := range []int{2, 3, 4, 5, 6, 9, 11} {
		if links[k] != corner {
			t.Errorf("slot %d (%v) = %d, want self-loop %d", k, SpringOffsets[k], links[k], corner)
		}
	}
	if links[0] != topo.Index(1, 0) {
		t.Errorf("structural down = %d, want %d", links[0], topo.Index(1, 0))
	}
	if links[7] != topo.Index(1, 1) {
		t.Errorf("shear down-right = %d, want %d", links[7], topo.Index(1, 1))
	}
	if links[8] != topo.Index(0, 2) {
		t.Errorf("bend right = %d, want %d", links[8], topo.Index(0, 2))
	}
}

func TestBuildTopology_InteriorHasNoSelfLoops(t *testing.T) {
	topo := BuildTopology(5, 5)
	center := topo.Index(2, 2)
	for k, j := range topo.Links[center] {
		if j == center {
			t.Errorf("slot %d of interior particle is a self-loop", k)
		}
		r, c := topo.Coord(j)
		o := SpringOffsets[k]
		if r != 2+o.DRow || c != 2+o.DCol {
			t.Errorf("slot %d reaches (%d,%d), want (%d,%d)", k, r, c, 2+o.DRow, 2+o.DCol)
		}
	}
}

func TestBuildTopology_LinksAreSymmetric(t *testing.T) {
	topo := BuildTopology(4, 6)
	for i, links := range topo.Links {
		for k, j := range links {
			if j == i {
				continue
			}
			back := -1
			for kk, o := range SpringOffsets {
				if o.DRow == -SpringOffsets[k].DRow && o.DCol == -SpringOffsets[k].DCol {
					back = kk
				}
			}
			if topo.Links[j][back] != i {
				t.Fatalf("link %d->%d via slot %d has no reverse", i, j, k)
			}
		}
	}
}

func TestRestLengths(t *testing.T) {
	rest := RestLengths(0.5)
	for k := range SpringOffsets {
		var want float64
		switch ClassOf(k) {
		case Structural:
			want = 0.5
		case Shear:
			want = math.Sqrt2 * 0.5
		case Bend:
			want = 1.0
		}
		if math.Abs(rest[k]-want) > 1e-12 {
			t.Errorf("slot %d (%s) rest = %v, want %v", k, ClassOf(k), rest[k], want)
		}
	}
}

func TestPinned(t *testing.T) {
	topo := BuildTopology(3, 5)
	p := topo.Pinned()
	if p[0] != 0 || p[1] != 4 {
		t.Errorf("Pinned() = %v, want [0 4]", p)
	}
	if !topo.IsPinned(4) || topo.IsPinned(10) {
		t.Error("IsPinned disagrees with Pinned")
	}
}

func TestTriangleIndices(t *testing.T) {
	idx := TriangleIndices(3, 3)
	if len(idx) != 24 {
		t.Fatalf("expected 24 indices, got %d", len(idx))
	}
	want := []uint32{0, 3, 4, 0, 4, 1}
	for i, w := range want {
		if idx[i] != w {
			t.Errorf("idx[%d] = %d, want %d", i, idx[i], w)
		}
	}
	for _, v := range idx {
		if v >= 9 {
			t.Errorf("index %d out of range", v)
		}
	}
	if TriangleIndices(1, 5) != nil {
		t.Error("expected nil for a single row")
	}
}

func TestSpringClassString(t *testing.T) {
	tests := map[SpringClass]string{Structural: "structural", Shear: "shear", Bend: "bend", SpringClass(9): "unknown"}
	for c, want := range tests {
		if got := c.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(c), got, want)
		}
	}
}
