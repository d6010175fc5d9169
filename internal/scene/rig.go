package scene

import (
	"math"

	"github.com/ivlev/cctvscene/internal/geom"
)

// RigSpec sizes an animal rig built from primitives.
type RigSpec struct {
	Name      string
	Color     Color
	Roughness float64

	Body    geom.Vec3 // box w, h, d
	BodyY   float64
	Head    float64 // cube edge
	HeadPos geom.Vec3

	TailRadius float64
	TailLength float64
	TailPos    geom.Vec3
	TailTilt   float64 // rotation about Z
}

// Rig is a parent transform owning body, head and tail meshes.
type Rig struct {
	Node *Node
	Body *Node
	Head *Node
	Tail *Node
}

var (
	TigerSpec = RigSpec{
		Name:       "tiger",
		Color:      Hex(0xc8a76d),
		Roughness:  0.9,
		Body:       geom.V3(1.6, 0.6, 0.5),
		BodyY:      0.6,
		Head:       0.4,
		HeadPos:    geom.V3(0.95, 0.8, 0),
		TailRadius: 0.04,
		TailLength: 0.8,
		TailPos:    geom.V3(-0.9, 0.85, 0),
		TailTilt:   math.Pi / 6,
	}

	DogSpec = RigSpec{
		Name:       "dog",
		Color:      Hex(0x666666),
		Roughness:  0.95,
		Body:       geom.V3(1.0, 0.5, 0.4),
		BodyY:      0.5,
		Head:       0.35,
		HeadPos:    geom.V3(0.7, 0.7, 0),
		TailRadius: 0.03,
		TailLength: 0.5,
		TailPos:    geom.V3(-0.6, 0.75, 0),
		TailTilt:   -math.Pi / 5,
	}
)

// NewRig builds a rig at the origin. Every part casts and receives shadows.
func NewRig(spec RigSpec) *Rig {
	mat := NewMaterial(spec.Color, spec.Roughness, 0)

	body := NewMeshNode(spec.Name+".body", BoxGeometry(spec.Body.X, spec.Body.Y, spec.Body.Z), mat)
	body.Position.Y = spec.BodyY

	head := NewMeshNode(spec.Name+".head", BoxGeometry(spec.Head, spec.Head, spec.Head), mat)
	head.Position = spec.HeadPos

	tail := NewMeshNode(spec.Name+".tail", CylinderGeometry(spec.TailRadius, spec.TailRadius, spec.TailLength, 6), mat)
	tail.Position = spec.TailPos
	tail.Rotation.Z = spec.TailTilt

	root := NewNode(spec.Name)
	root.Add(body, head, tail)

	for _, part := range []*Node{body, head, tail} {
		part.Mesh.CastShadow = true
		part.Mesh.ReceiveShadow = true
	}
	return &Rig{Node: root, Body: body, Head: head, Tail: tail}
}
