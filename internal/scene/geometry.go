package scene

import (
	"math"

	"github.com/ivlev/cctvscene/internal/geom"
)

// Geometry is an indexed triangle list with per-vertex normals.
type Geometry struct {
	Positions []geom.Vec3
	Normals   []geom.Vec3
	Indices   []int

	// Local-space bounding box.
	Min, Max geom.Vec3

	disposed bool
}

// Dispose drops the vertex data. It reports whether this call released it.
func (g *Geometry) Dispose() bool {
	if g == nil || g.disposed {
		return false
	}
	g.Positions, g.Normals, g.Indices = nil, nil, nil
	g.disposed = true
	return true
}

func (g *Geometry) Disposed() bool { return g != nil && g.disposed }

// Triangles returns the number of triangles.
func (g *Geometry) Triangles() int { return len(g.Indices) / 3 }

func (g *Geometry) computeBounds() {
	if len(g.Positions) == 0 {
		return
	}
	g.Min, g.Max = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		g.Min = geom.V3(math.Min(g.Min.X, p.X), math.Min(g.Min.Y, p.Y), math.Min(g.Min.Z, p.Z))
		g.Max = geom.V3(math.Max(g.Max.X, p.X), math.Max(g.Max.Y, p.Y), math.Max(g.Max.Z, p.Z))
	}
}

// quad appends two counter-clockwise triangles a-b-c, a-c-d sharing normal n.
func (g *Geometry) quad(a, b, c, d, n geom.Vec3) {
	base := len(g.Positions)
	g.Positions = append(g.Positions, a, b, c, d)
	g.Normals = append(g.Normals, n, n, n, n)
	g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
}

// BoxGeometry is an axis-aligned box centred on the origin.
func BoxGeometry(w, h, d float64) *Geometry {
	x, y, z := w/2, h/2, d/2
	g := &Geometry{}
	// +X / -X
	g.quad(geom.V3(x, -y, z), geom.V3(x, -y, -z), geom.V3(x, y, -z), geom.V3(x, y, z), geom.V3(1, 0, 0))
	g.quad(geom.V3(-x, -y, -z), geom.V3(-x, -y, z), geom.V3(-x, y, z), geom.V3(-x, y, -z), geom.V3(-1, 0, 0))
	// +Y / -Y
	g.quad(geom.V3(-x, y, z), geom.V3(x, y, z), geom.V3(x, y, -z), geom.V3(-x, y, -z), geom.V3(0, 1, 0))
	g.quad(geom.V3(-x, -y, -z), geom.V3(x, -y, -z), geom.V3(x, -y, z), geom.V3(-x, -y, z), geom.V3(0, -1, 0))
	// +Z / -Z
	g.quad(geom.V3(-x, -y, z), geom.V3(x, -y, z), geom.V3(x, y, z), geom.V3(-x, y, z), geom.V3(0, 0, 1))
	g.quad(geom.V3(x, -y, -z), geom.V3(-x, -y, -z), geom.V3(-x, y, -z), geom.V3(x, y, -z), geom.V3(0, 0, -1))
	g.computeBounds()
	return g
}

// PlaneGeometry lies in the XY plane facing +Z, subdivided into segX*segY quads.
func PlaneGeometry(w, h float64, segX, segY int) *Geometry {
	if segX < 1 {
		segX = 1
	}
	if segY < 1 {
		segY = 1
	}
	g := &Geometry{}
	n := geom.V3(0, 0, 1)
	for iy := 0; iy <= segY; iy++ {
		y := h/2 - float64(iy)*h/float64(segY)
		for ix := 0; ix <= segX; ix++ {
			x := -w/2 + float64(ix)*w/float64(segX)
			g.Positions = append(g.Positions, geom.V3(x, y, 0))
			g.Normals = append(g.Normals, n)
		}
	}
	row := segX + 1
	for iy := 0; iy < segY; iy++ {
		for ix := 0; ix < segX; ix++ {
			a := iy*row + ix
			b := (iy+1)*row + ix
			c := (iy+1)*row + ix + 1
			d := iy*row + ix + 1
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	g.computeBounds()
	return g
}

// CylinderGeometry is a capped cylinder along Y centred on the origin.
func CylinderGeometry(radiusTop, radiusBottom, height float64, radial int) *Geometry {
	if radial < 3 {
		radial = 3
	}
	g := &Geometry{}
	half := height / 2
	slope := (radiusBottom - radiusTop) / height
	for i := 0; i < radial; i++ {
		a0 := 2 * math.Pi * float64(i) / float64(radial)
		a1 := 2 * math.Pi * float64(i+1) / float64(radial)
		s0, c0 := math.Sin(a0), math.Cos(a0)
		s1, c1 := math.Sin(a1), math.Cos(a1)

		base := len(g.Positions)
		g.Positions = append(g.Positions,
			geom.V3(radiusBottom*s0, -half, radiusBottom*c0),
			geom.V3(radiusBottom*s1, -half, radiusBottom*c1),
			geom.V3(radiusTop*s1, half, radiusTop*c1),
			geom.V3(radiusTop*s0, half, radiusTop*c0),
		)
		n0 := geom.Normalize(geom.V3(s0, slope, c0))
		n1 := geom.Normalize(geom.V3(s1, slope, c1))
		g.Normals = append(g.Normals, n0, n1, n1, n0)
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)

		// Caps.
		top := len(g.Positions)
		g.Positions = append(g.Positions, geom.V3(0, half, 0), geom.V3(radiusTop*s0, half, radiusTop*c0), geom.V3(radiusTop*s1, half, radiusTop*c1))
		g.Normals = append(g.Normals, geom.V3(0, 1, 0), geom.V3(0, 1, 0), geom.V3(0, 1, 0))
		g.Indices = append(g.Indices, top, top+1, top+2)

		bot := len(g.Positions)
		g.Positions = append(g.Positions, geom.V3(0, -half, 0), geom.V3(radiusBottom*s1, -half, radiusBottom*c1), geom.V3(radiusBottom*s0, -half, radiusBottom*c0))
		g.Normals = append(g.Normals, geom.V3(0, -1, 0), geom.V3(0, -1, 0), geom.V3(0, -1, 0))
		g.Indices = append(g.Indices, bot, bot+1, bot+2)
	}
	g.computeBounds()
	return g
}
