package renderer

import (
	"image"

	"github.com/ivlev/cctvscene/internal/geom"
	"github.com/ivlev/cctvscene/internal/scene"
)

// DefaultExposure matches the gritty, underexposed look of the street set.
const DefaultExposure = 0.55

// Renderer draws scenes into *image.RGBA targets.
type Renderer struct {
	// AutoClear clears color and depth at the start of every Render call.
	AutoClear   bool
	Exposure    float64
	ToneMapping bool
	Shadows     bool

	depth []float64
	w, h  int
}

// New creates a renderer for a target size.
func New(w, h int) *Renderer {
	r := &Renderer{
		AutoClear:   true,
		Exposure:    DefaultExposure,
		ToneMapping: true,
		Shadows:     true,
	}
	r.SetSize(w, h)
	return r
}

// SetSize resizes the depth buffer, reusing its storage when possible.
func (r *Renderer) SetSize(w, h int) {
	if w <= 0 || h <= 0 {
		r.depth, r.w, r.h = nil, 0, 0
		return
	}
	if cap(r.depth) < w*h {
		r.depth = make([]float64, w*h)
	} else {
		r.depth = r.depth[:w*h]
	}
	r.w, r.h = w, h
}

// Size returns the current render size.
func (r *Renderer) Size() (int, int) { return r.w, r.h }

// ClearDepth resets the depth buffer to the far plane.
func (r *Renderer) ClearDepth() {
	for i := range r.depth {
		r.depth[i] = 2
	}
}

// Clear fills the target with an opaque color and resets depth.
func (r *Renderer) Clear(dst *image.RGBA, c scene.Color) {
	cr, cg, cb := c.SRGB8()
	pix := dst.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = cr
		pix[i+1] = cg
		pix[i+2] = cb
		pix[i+3] = 0xFF
	}
	r.ClearDepth()
}

// Frame renders the scene followed by the overlay: the overlay keeps the scene's
// color, gets a fresh depth buffer, and the default clear behaviour is restored after.
func (r *Renderer) Frame(dst *image.RGBA, s *scene.Scene, cam scene.Camera, pose scene.Pose, overlay *scene.LineSegments) {
	r.Render(dst, s, cam, pose)
	r.AutoClear = false
	r.ClearDepth()
	r.RenderLines(dst, overlay)
	r.AutoClear = true
}

// Render draws the scene as seen from cam.
func (r *Renderer) Render(dst *image.RGBA, s *scene.Scene, cam scene.Camera, pose scene.Pose) {
	if dst == nil || s == nil {
		return
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	if w != r.w || h != r.h {
		r.SetSize(w, h)
	}
	if w == 0 || h == 0 {
		return
	}
	if r.AutoClear {
		r.Clear(dst, s.Background)
	}

	view := cam.View()
	viewProj := geom.Mul(cam.Projection(), view)
	sh := newShader(r, s, cam, pose)

	s.Traverse(pose, func(n *scene.Node, world geom.Mat4) {
		if n.Mesh == nil || n.Mesh.Geometry == nil || n.Mesh.Material == nil {
			return
		}
		r.drawMesh(dst, sh, n, world, viewProj)
	})
}

type vertex struct {
	clip   geom.Vec4
	world  geom.Vec3
	normal geom.Vec3
}

func (r *Renderer) drawMesh(dst *image.RGBA, sh *shader, n *scene.Node, world, viewProj geom.Mat4) {
	g := n.Mesh.Geometry
	if len(g.Positions) == 0 || len(g.Indices) < 3 {
		return
	}
	normalM := geom.NormalMatrix(world)
	mvp := geom.Mul(viewProj, world)

	verts := make([]vertex, len(g.Positions))
	for i, p := range g.Positions {
		verts[i] = vertex{
			clip:   mvp.MulV4(geom.Vec4{X: p.X, Y: p.Y, Z: p.Z, W: 1}),
			world:  world.MulPoint(p),
			normal: geom.Normalize(normalM.MulDir(g.Normals[i])),
		}
	}

	surf := surface{node: n, mat: n.Mesh.Material, receive: n.Mesh.ReceiveShadow}
	var poly [8]vertex
	var tmp [8]vertex
	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		if i0 >= len(verts) || i1 >= len(verts) || i2 >= len(verts) {
			continue
		}
		poly[0], poly[1], poly[2] = verts[i0], verts[i1], verts[i2]
		clipped := clipNear(poly[:3], tmp[:0])
		if len(clipped) < 3 {
			continue
		}
		for k := 1; k+1 < len(clipped); k++ {
			r.fillTriangle(dst, sh, surf, clipped[0], clipped[k], clipped[k+1])
		}
	}
}
