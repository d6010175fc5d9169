package scene

import (
	"math"
	"math/rand"

	"github.com/ivlev/cctvscene/internal/geom"
)

// Street set constants.
const (
	BuildingPairs  = 10
	LaneMarkers    = 7
	StreetLights   = 5
	RigOffsetX     = 1.4
	ScanlineCount  = 120
	ScanlineAlpha  = 0.25
	GroundSize     = 40
	GroundSegments = 40

	CameraFOV  = 85
	CameraNear = 0.1
	CameraFar  = 1000
	CameraBase = 0.6
)

var (
	LookTarget     = geom.V3(0, 0.5, 0)
	CameraPosition = geom.V3(0, CameraBase, 7)
	ClearColor     = Hex(0x0a0a0a)
	FogColor       = Hex(0x222222)
	ScanlineColor  = Hex(0x111111)
)

// Building size ranges.
const (
	BuildingMinWidth  = 1.0
	BuildingMaxWidth  = 2.5
	BuildingMinHeight = 2.0
	BuildingMaxHeight = 6.0
	BuildingMinDepth  = 1.0
	BuildingMaxDepth  = 2.5
)

// World is the fully built CCTV set.
type World struct {
	Scene     *Scene
	Camera    Camera
	Overlay   *LineSegments
	Tiger     *Rig
	Dog       *Rig
	Ground    *Node
	Markers   []*Node
	Buildings []*Node
}

// Build constructs the street. rng drives building sizes and placement only.
func Build(rng *rand.Rand) *World {
	s := New()
	s.Background = ClearColor
	s.Fog = &Fog{Color: FogColor, Density: 0.03}
	s.Ambient = AmbientLight{Color: Hex(0x404040), Intensity: 0.25}

	w := &World{Scene: s}

	ground := NewMeshNode("ground", PlaneGeometry(GroundSize, GroundSize, GroundSegments, GroundSegments),
		NewMaterial(Linear(0.25, 0.25, 0.25), 0.95, 0.05))
	ground.Rotation.X = -math.Pi / 2
	ground.Mesh.ReceiveShadow = true
	s.Add(ground)
	w.Ground = ground

	markGeo := PlaneGeometry(0.15, 6, 1, 1)
	markMat := NewMaterial(Hex(0xaaaaaa), 1, 0)
	for i := -(LaneMarkers / 2); i <= LaneMarkers/2; i++ {
		m := NewMeshNode("marker", markGeo, markMat)
		m.Rotation.X = -math.Pi / 2
		m.Position = geom.V3(0, 0.001, float64(i)*2)
		s.Add(m)
		w.Markers = append(w.Markers, m)
	}

	buildingMat := NewMaterial(Hex(0x2b2b2b), 1, 0)
	for i := 0; i < BuildingPairs; i++ {
		width := BuildingMinWidth + rng.Float64()*(BuildingMaxWidth-BuildingMinWidth)
		height := BuildingMinHeight + rng.Float64()*(BuildingMaxHeight-BuildingMinHeight)
		depth := BuildingMinDepth + rng.Float64()*(BuildingMaxDepth-BuildingMinDepth)

		left := NewMeshNode("building", BoxGeometry(width, height, depth), buildingMat)
		left.Position = geom.V3(-3.5-rng.Float64()*1.5, height/2, -8+float64(i)*2)
		right := left.Clone()
		right.Position.X = -left.Position.X
		s.Add(left, right)
		w.Buildings = append(w.Buildings, left, right)
	}

	for i := -(StreetLights / 2); i <= StreetLights/2; i++ {
		intensity := 3.5
		if i == 0 {
			intensity = 6.0
		}
		s.Spots = append(s.Spots, &SpotLight{
			Position:   geom.V3(0, 6, float64(i)*4),
			Target:     geom.V3(0, 0, float64(i)*4),
			Color:      Hex(0xf0f0e0),
			Intensity:  intensity,
			Distance:   12,
			Angle:      math.Pi / 7,
			Penumbra:   0.6,
			Decay:      1.8,
			CastShadow: true,
			ShadowSize: 1024,
		})
	}

	w.Tiger = NewRig(TigerSpec)
	w.Tiger.Node.Position = geom.V3(-RigOffsetX, 0, 0)
	w.Dog = NewRig(DogSpec)
	w.Dog.Node.Position = geom.V3(RigOffsetX, 0, 0)
	s.Add(w.Tiger.Node, w.Dog.Node)

	w.Camera = Camera{
		FOVDeg:   CameraFOV,
		Aspect:   16.0 / 9.0,
		Near:     CameraNear,
		Far:      CameraFar,
		Position: CameraPosition,
		Target:   LookTarget,
		Up:       geom.V3(0, 1, 0),
	}
	w.Overlay = Scanlines(ScanlineCount, ScanlineColor, ScanlineAlpha)
	return w
}

// Pose maps per-frame sway onto the rigs.
func (w *World) Pose(tigerRotY, dogRotY float64) Pose {
	return Pose{
		w.Tiger.Node: geom.V3(0, tigerRotY, 0),
		w.Dog.Node:   geom.V3(0, dogRotY, 0),
	}
}

// Dispose releases the scene resources and the overlay.
func (w *World) Dispose() int {
	if w == nil {
		return 0
	}
	n := w.Scene.Dispose()
	w.Overlay = nil
	w.Markers, w.Buildings = nil, nil
	return n
}
