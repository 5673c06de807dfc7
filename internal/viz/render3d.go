package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Camera is an orbiting perspective camera looking down -z at Target.
type Camera struct {
	Target     mgl64.Vec3
	Distance   float64
	Near       float64
	RotX, RotY float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, Near: 0.1, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(50, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.01, c.Zoom/1.2) }

// Fit centres the camera on points and zooms so their largest extent spans
// most of the screen.
func (c *Camera) Fit(points []mgl64.Vec3) {
	if len(points) == 0 {
		return
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	c.Target = lo.Add(hi).Mul(0.5)
	extent := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if extent > 0 {
		c.Zoom = 2.5 / extent
	}
}

// RotatePoint turns p about Target by the camera's X then Y rotation.
func (c *Camera) RotatePoint(p mgl64.Vec3) mgl64.Vec3 {
	p = p.Sub(c.Target)
	return mgl64.Rotate3DY(c.RotY).Mul3x1(mgl64.Rotate3DX(c.RotX).Mul3x1(p))
}

// Project maps a world point onto a sw x sh dot screen. It returns the
// screen position, the depth, and whether the point is on screen.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p).Mul(c.Zoom)
	if rot.Z() >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z())
	pScale := float64(min(sw, sh)) / 3.0
	sx := int(rot.X()*scale*pScale) + sw/2
	sy := int(-rot.Y()*scale*pScale) + sh/2
	return sx, sy, rot.Z(), sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct {
	Edges  []Edge
	Points []mgl64.Vec3
}

func NewWireframe() *Wireframe               { return &Wireframe{} }
func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p mgl64.Vec3)   { w.Points = append(w.Points, p) }
func (w *Wireframe) Clear()                  { w.Edges, w.Points = w.Edges[:0], w.Points[:0] }

// ClothWireframe draws the structural grid lines of a cloth and marks its
// pinned corners.
func ClothWireframe(topo *cloth.Topology, pos []mgl64.Vec3) *Wireframe {
	w := NewWireframe()
	for r := 0; r < topo.Rows; r++ {
		for c := 0; c < topo.Cols; c++ {
			i := topo.Index(r, c)
			if c+1 < topo.Cols {
				w.AddEdge(pos[i], pos[topo.Index(r, c+1)])
			}
			if r+1 < topo.Rows {
				w.AddEdge(pos[i], pos[topo.Index(r+1, c)])
			}
		}
	}
	for _, p := range topo.Pinned() {
		w.AddPoint(pos[p])
	}
	return w
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe back to front.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.DotWidth(), c.DotHeight()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
	for _, p := range w.Points {
		if x, y, _, ok := cam.Project(p, cw, ch); ok {
			c.Blob(x, y, 1)
		}
	}
}
