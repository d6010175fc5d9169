// Package scene describes the CCTV street set: a small transform hierarchy of meshes,
// the spot and ambient lights, fog, the camera and the screen-space scanline overlay.
//
// The graph is built once and never mutated while frames are rendered. Per-frame motion
// (rig sway) is supplied as a Pose, so several renderers may walk the same scene at once.
package scene

import "github.com/ivlev/cctvscene/internal/geom"

// Mesh binds a geometry to a material.
type Mesh struct {
	Geometry      *Geometry
	Material      *Material
	CastShadow    bool
	ReceiveShadow bool
}

// Node is a transform in the scene hierarchy. A node may carry a mesh.
type Node struct {
	Name     string
	Position geom.Vec3
	Rotation geom.Vec3 // Euler radians
	Scale    geom.Vec3
	Visible  bool
	Mesh     *Mesh
	Children []*Node
}

// NewNode returns a visible node with unit scale.
func NewNode(name string) *Node {
	return &Node{Name: name, Scale: geom.V3(1, 1, 1), Visible: true}
}

// NewMeshNode returns a node carrying a mesh.
func NewMeshNode(name string, g *Geometry, m *Material) *Node {
	n := NewNode(name)
	n.Mesh = &Mesh{Geometry: g, Material: m}
	return n
}

func (n *Node) Add(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Clone copies the node and its subtree. Geometry and material are shared.
func (n *Node) Clone() *Node {
	c := *n
	if n.Mesh != nil {
		m := *n.Mesh
		c.Mesh = &m
	}
	c.Children = make([]*Node, 0, len(n.Children))
	for _, ch := range n.Children {
		c.Children = append(c.Children, ch.Clone())
	}
	return &c
}

// Pose holds additive rotation offsets applied on top of a node's own rotation.
type Pose map[*Node]geom.Vec3

func (n *Node) local(p Pose) geom.Mat4 {
	rot := n.Rotation
	if off, ok := p[n]; ok {
		rot = rot.Add(off)
	}
	return geom.Compose(n.Position, rot, n.Scale)
}

// Fog is exponential-squared distance fog.
type Fog struct {
	Color   Color
	Density float64
}

// Scene is the root of the 3D world.
type Scene struct {
	Root       *Node
	Spots      []*SpotLight
	Ambient    AmbientLight
	Fog        *Fog
	Background Color
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{Root: NewNode("root")}
}

func (s *Scene) Add(nodes ...*Node) { s.Root.Add(nodes...) }

// Traverse visits every visible node with its world matrix.
func (s *Scene) Traverse(p Pose, fn func(n *Node, world geom.Mat4)) {
	if s == nil || s.Root == nil {
		return
	}
	var walk func(n *Node, parent geom.Mat4)
	walk = func(n *Node, parent geom.Mat4) {
		if !n.Visible {
			return
		}
		world := geom.Mul(parent, n.local(p))
		fn(n, world)
		for _, ch := range n.Children {
			walk(ch, world)
		}
	}
	walk(s.Root, geom.Identity())
}

// Meshes counts nodes that carry a mesh.
func (s *Scene) Meshes() int {
	count := 0
	s.Traverse(nil, func(n *Node, _ geom.Mat4) {
		if n.Mesh != nil {
			count++
		}
	})
	return count
}

// Dispose releases every geometry and material reachable from the root and empties the
// scene. Shared resources are released once. Returns the number of released resources.
func (s *Scene) Dispose() int {
	if s == nil || s.Root == nil {
		return 0
	}
	released := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Mesh != nil {
			if n.Mesh.Geometry.Dispose() {
				released++
			}
			if n.Mesh.Material.Dispose() {
				released++
			}
		}
		for _, ch := range n.Children {
			walk(ch)
		}
	}
	walk(s.Root)
	s.Root = NewNode("root")
	s.Spots = nil
	return released
}
