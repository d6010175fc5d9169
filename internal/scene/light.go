package scene

import (
	"math"

	"github.com/ivlev/cctvscene/internal/geom"
)

// SpotLight is a cone light with the classic (non physically based) distance falloff.
type SpotLight struct {
	Position  geom.Vec3
	Target    geom.Vec3
	Color     Color
	Intensity float64
	Distance  float64 // cutoff distance, 0 means unlimited
	Angle     float64 // cone half-angle in radians
	Penumbra  float64 // 0..1
	Decay     float64

	CastShadow bool
	ShadowSize int
}

// Direction is the unit vector from the light toward its target.
func (l *SpotLight) Direction() geom.Vec3 {
	return geom.Normalize(l.Target.Sub(l.Position))
}

// Attenuation returns the combined cone and distance factor for a surface point.
func (l *SpotLight) Attenuation(p geom.Vec3) float64 {
	toPoint := p.Sub(l.Position)
	d := geom.Len(toPoint)
	if d == 0 {
		return 0
	}
	if l.Distance > 0 && d >= l.Distance {
		return 0
	}
	angleCos := geom.Dot(toPoint.Mul(1/d), l.Direction())
	coneCos := math.Cos(l.Angle)
	penumbraCos := math.Cos(l.Angle * (1 - l.Penumbra))
	spot := geom.Smoothstep(coneCos, penumbraCos, angleCos)
	if spot == 0 {
		return 0
	}
	return spot * DistanceAttenuation(d, l.Distance, l.Decay)
}

// DistanceAttenuation fades linearly to zero at the cutoff, shaped by decay.
// Without a cutoff or decay the light does not fade.
func DistanceAttenuation(d, cutoff, decay float64) float64 {
	if cutoff <= 0 || decay <= 0 {
		return 1
	}
	return math.Pow(geom.Clamp01(1-d/cutoff), decay)
}

// AmbientLight is a uniform fill.
type AmbientLight struct {
	Color     Color
	Intensity float64
}
