package scene

// Material is a minimal physically based surface: only the diffuse part is shaded, the
// roughness/metalness values are kept for completeness of the scene description.
type Material struct {
	Color     Color
	Roughness float64
	Metalness float64
	Emissive  Color
	Opacity   float64

	disposed bool
}

// NewMaterial returns an opaque material.
func NewMaterial(c Color, roughness, metalness float64) *Material {
	return &Material{Color: c, Roughness: roughness, Metalness: metalness, Opacity: 1}
}

// Dispose releases the material. It reports whether this call released it.
func (m *Material) Dispose() bool {
	if m == nil || m.disposed {
		return false
	}
	m.disposed = true
	return true
}

func (m *Material) Disposed() bool { return m != nil && m.disposed }
