package scene

import (
	"math"

	"github.com/ivlev/cctvscene/internal/geom"
)

// Camera is a perspective camera aimed at a look target.
type Camera struct {
	FOVDeg   float64 // vertical field of view
	Aspect   float64
	Near     float64
	Far      float64
	Position geom.Vec3
	Target   geom.Vec3
	Up       geom.Vec3
}

// SetAspect recomputes the viewport-dependent projection input from a target size.
func (c *Camera) SetAspect(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.Aspect = float64(w) / float64(h)
}

func (c Camera) View() geom.Mat4 {
	up := c.Up
	if up == (geom.Vec3{}) {
		up = geom.V3(0, 1, 0)
	}
	return geom.LookAt(c.Position, c.Target, up)
}

func (c Camera) Projection() geom.Mat4 {
	return geom.Perspective(c.FOVDeg*math.Pi/180, c.Aspect, c.Near, c.Far)
}
