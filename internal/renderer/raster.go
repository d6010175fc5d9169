package renderer

import (
	"image"
	"math"

	"github.com/ivlev/cctvscene/internal/geom"
)

func lerpVertex(a, b vertex, t float64) vertex {
	return vertex{
		clip: geom.Vec4{
			X: geom.Lerp(a.clip.X, b.clip.X, t),
			Y: geom.Lerp(a.clip.Y, b.clip.Y, t),
			Z: geom.Lerp(a.clip.Z, b.clip.Z, t),
			W: geom.Lerp(a.clip.W, b.clip.W, t),
		},
		world:  a.world.Add(b.world.Sub(a.world).Mul(t)),
		normal: a.normal.Add(b.normal.Sub(a.normal).Mul(t)),
	}
}

// clipNear clips a polygon against the near plane (z >= -w) and appends the result to out.
func clipNear(in, out []vertex) []vertex {
	for i := range in {
		a, b := in[i], in[(i+1)%len(in)]
		da, db := a.clip.Z+a.clip.W, b.clip.Z+b.clip.W
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpVertex(a, b, da/(da-db)))
		}
	}
	return out
}

type screenVertex struct {
	x, y, z float64
	invW    float64
}

func (r *Renderer) toScreen(v vertex) screenVertex {
	invW := 1 / v.clip.W
	return screenVertex{
		x:    (v.clip.X*invW*0.5 + 0.5) * float64(r.w),
		y:    (1 - (v.clip.Y*invW*0.5 + 0.5)) * float64(r.h),
		z:    v.clip.Z * invW,
		invW: invW,
	}
}

func edge(a, b screenVertex, px, py float64) float64 {
	return (px-a.x)*(b.y-a.y) - (py-a.y)*(b.x-a.x)
}

// fillTriangle scan-converts one clipped triangle. Both windings are drawn; hidden faces
// lose the depth test.
func (r *Renderer) fillTriangle(dst *image.RGBA, sh *shader, surf surface, a, b, c vertex) {
	if a.clip.W <= 0 || b.clip.W <= 0 || c.clip.W <= 0 {
		return
	}
	s0, s1, s2 := r.toScreen(a), r.toScreen(b), r.toScreen(c)

	area := edge(s0, s1, s2.x, s2.y)
	if area == 0 || math.IsNaN(area) {
		return
	}

	minX := int(math.Floor(math.Min(s0.x, math.Min(s1.x, s2.x))))
	maxX := int(math.Ceil(math.Max(s0.x, math.Max(s1.x, s2.x))))
	minY := int(math.Floor(math.Min(s0.y, math.Min(s1.y, s2.y))))
	maxY := int(math.Ceil(math.Max(s0.y, math.Max(s1.y, s2.y))))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > r.w-1 {
		maxX = r.w - 1
	}
	if maxY > r.h-1 {
		maxY = r.h - 1
	}

	invArea := 1 / area
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(s1, s2, px, py) * invArea
			w1 := edge(s2, s0, px, py) * invArea
			w2 := edge(s0, s1, px, py) * invArea
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*s0.z + w1*s1.z + w2*s2.z
			if z < -1 || z > 1 {
				continue
			}
			idx := y*r.w + x
			if z >= r.depth[idx] {
				continue
			}
			r.depth[idx] = z

			p0, p1, p2 := w0*s0.invW, w1*s1.invW, w2*s2.invW
			norm := 1 / (p0 + p1 + p2)
			p0, p1, p2 = p0*norm, p1*norm, p2*norm

			world := a.world.Mul(p0).Add(b.world.Mul(p1)).Add(c.world.Mul(p2))
			normal := geom.Normalize(a.normal.Mul(p0).Add(b.normal.Mul(p1)).Add(c.normal.Mul(p2)))

			cr, cg, cb := sh.shade(surf, world, normal)
			off := dst.PixOffset(dst.Rect.Min.X+x, dst.Rect.Min.Y+y)
			dst.Pix[off+0] = cr
			dst.Pix[off+1] = cg
			dst.Pix[off+2] = cb
			dst.Pix[off+3] = 0xFF
		}
	}
}
