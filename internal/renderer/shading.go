package renderer

import (
	"math"

	"github.com/ivlev/cctvscene/internal/geom"
	"github.com/ivlev/cctvscene/internal/scene"
)

const shadowBias = 1e-3

// caster is a shadow-casting mesh reduced to its oriented bounding box.
type caster struct {
	node     *scene.Node
	inv      geom.Mat4
	min, max geom.Vec3
}

type surface struct {
	node    *scene.Node
	mat     *scene.Material
	receive bool
}

// shader holds everything constant across one Render call.
type shader struct {
	exposure    float64
	toneMapping bool
	shadows     bool

	ambient   scene.Color
	spots     []*scene.SpotLight
	casters   []caster
	camPos    geom.Vec3
	camFwd    geom.Vec3
	fog       *scene.Fog
	fogR      float64
	fogG      float64
	fogB      float64
}

func newShader(r *Renderer, s *scene.Scene, cam scene.Camera, pose scene.Pose) *shader {
	sh := &shader{
		exposure:    r.Exposure,
		toneMapping: r.ToneMapping,
		shadows:     r.Shadows,
		ambient:     s.Ambient.Color.Scale(s.Ambient.Intensity),
		spots:       s.Spots,
		camPos:      cam.Position,
		camFwd:      geom.Normalize(cam.Target.Sub(cam.Position)),
		fog:         s.Fog,
	}
	if s.Fog != nil {
		sh.fogR = scene.LinearToSRGB(s.Fog.Color.R)
		sh.fogG = scene.LinearToSRGB(s.Fog.Color.G)
		sh.fogB = scene.LinearToSRGB(s.Fog.Color.B)
	}
	if sh.shadows {
		s.Traverse(pose, func(n *scene.Node, world geom.Mat4) {
			if n.Mesh == nil || !n.Mesh.CastShadow || n.Mesh.Geometry == nil {
				return
			}
			inv, ok := geom.InverseAffine(world)
			if !ok {
				return
			}
			g := n.Mesh.Geometry
			sh.casters = append(sh.casters, caster{node: n, inv: inv, min: g.Min, max: g.Max})
		})
	}
	return sh
}

// shade lights a surface point and returns its display-encoded color.
func (sh *shader) shade(surf surface, p, n geom.Vec3) (uint8, uint8, uint8) {
	toEye := sh.camPos.Sub(p)
	if geom.Dot(n, toEye) < 0 {
		n = n.Neg()
	}

	irradiance := sh.ambient
	for _, l := range sh.spots {
		att := l.Attenuation(p)
		if att == 0 {
			continue
		}
		toLight := l.Position.Sub(p)
		ndl := geom.Dot(n, geom.Normalize(toLight))
		if ndl <= 0 {
			continue
		}
		if sh.shadows && l.CastShadow && surf.receive && sh.occluded(p, l.Position, surf.node) {
			continue
		}
		irradiance = irradiance.Add(l.Color.Scale(l.Intensity * att * ndl))
	}

	c := surf.mat.Color.Mul(irradiance).Add(surf.mat.Emissive)
	if sh.toneMapping {
		c = acesFilmic(c, sh.exposure)
	}
	r := scene.LinearToSRGB(geom.Clamp01(c.R))
	g := scene.LinearToSRGB(geom.Clamp01(c.G))
	b := scene.LinearToSRGB(geom.Clamp01(c.B))

	if sh.fog != nil && sh.fog.Density > 0 {
		depth := geom.Dot(p.Sub(sh.camPos), sh.camFwd)
		f := 1 - math.Exp(-sh.fog.Density*sh.fog.Density*depth*depth)
		f = geom.Clamp01(f)
		r = geom.Lerp(r, sh.fogR, f)
		g = geom.Lerp(g, sh.fogG, f)
		b = geom.Lerp(b, sh.fogB, f)
	}
	return to8(r), to8(g), to8(b)
}

// occluded reports whether any caster other than self blocks the segment p→light.
func (sh *shader) occluded(p, light geom.Vec3, self *scene.Node) bool {
	for i := range sh.casters {
		c := &sh.casters[i]
		if c.node == self {
			continue
		}
		o := c.inv.MulPoint(p)
		d := c.inv.MulPoint(light).Sub(o)
		if segmentHitsBox(o, d, c.min, c.max) {
			return true
		}
	}
	return false
}

// segmentHitsBox runs a slab test for o + t*d, t in (bias, 1).
func segmentHitsBox(o, d, lo, hi geom.Vec3) bool {
	tMin, tMax := shadowBias, 1.0
	axes := [3][4]float64{
		{o.X, d.X, lo.X, hi.X},
		{o.Y, d.Y, lo.Y, hi.Y},
		{o.Z, d.Z, lo.Z, hi.Z},
	}
	for _, a := range axes {
		origin, dir, min, max := a[0], a[1], a[2], a[3]
		if math.Abs(dir) < 1e-12 {
			if origin < min || origin > max {
				return false
			}
			continue
		}
		t0 := (min - origin) / dir
		t1 := (max - origin) / dir
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math.Max(tMin, t0)
		tMax = math.Min(tMax, t1)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// acesFilmic is the fitted ACES curve with the usual sRGB input/output transforms.
func acesFilmic(c scene.Color, exposure float64) scene.Color {
	k := exposure / 0.6
	r, g, b := c.R*k, c.G*k, c.B*k

	ir := 0.59719*r + 0.35458*g + 0.04823*b
	ig := 0.07600*r + 0.90834*g + 0.01566*b
	ib := 0.02840*r + 0.13383*g + 0.83777*b

	ir, ig, ib = rrtODTFit(ir), rrtODTFit(ig), rrtODTFit(ib)

	return scene.Color{
		R: geom.Clamp01(1.60475*ir - 0.53108*ig - 0.07367*ib),
		G: geom.Clamp01(-0.10208*ir + 1.10813*ig - 0.00605*ib),
		B: geom.Clamp01(-0.00327*ir - 0.07276*ig + 1.07602*ib),
	}
}

func rrtODTFit(v float64) float64 {
	a := v*(v+0.0245786) - 0.000090537
	b := v*(0.983729*v+0.4329510) + 0.238081
	return a / b
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xFF
	}
	return uint8(v*255 + 0.5)
}
