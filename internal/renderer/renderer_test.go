package renderer

import (
	"image"
	"math/rand"
	"testing"

	"github.com/ivlev/cctvscene/internal/geom"
	"github.com/ivlev/cctvscene/internal/scene"
)

func meanLuma(img *image.RGBA) float64 {
	var sum float64
	n := 0
	for i := 0; i+3 < len(img.Pix); i += 4 {
		sum += 0.2126*float64(img.Pix[i]) + 0.7152*float64(img.Pix[i+1]) + 0.0722*float64(img.Pix[i+2])
		n++
	}
	return sum / float64(n)
}

func TestClipNear(t *testing.T) {
	inside := []vertex{
		{clip: geom.Vec4{X: 0, Y: 0, Z: 0.5, W: 1}},
		{clip: geom.Vec4{X: 1, Y: 0, Z: 0.5, W: 1}},
		{clip: geom.Vec4{X: 0, Y: 1, Z: 0.5, W: 1}},
	}
	var buf [8]vertex
	if got := clipNear(inside, buf[:0]); len(got) != 3 {
		t.Errorf("triangle in front of the near plane: got %d vertices, want 3", len(got))
	}

	crossing := []vertex{
		{clip: geom.Vec4{X: 0, Y: 0, Z: 0.5, W: 1}},
		{clip: geom.Vec4{X: 1, Y: 0, Z: -2, W: 1}},
		{clip: geom.Vec4{X: 0, Y: 1, Z: 0.5, W: 1}},
	}
	got := clipNear(crossing, buf[:0])
	if len(got) != 4 {
		t.Fatalf("one vertex behind the near plane: got %d vertices, want 4", len(got))
	}
	for i, v := range got {
		if v.clip.Z+v.clip.W < -1e-9 {
			t.Errorf("vertex %d still behind the near plane: %+v", i, v.clip)
		}
	}

	behind := []vertex{
		{clip: geom.Vec4{Z: -2, W: 1}},
		{clip: geom.Vec4{Z: -3, W: 1}},
		{clip: geom.Vec4{Z: -4, W: 1}},
	}
	if got := clipNear(behind, buf[:0]); len(got) != 0 {
		t.Errorf("triangle behind the camera: got %d vertices, want 0", len(got))
	}
}

func TestSegmentHitsBox(t *testing.T) {
	lo, hi := geom.V3(-1, -1, -1), geom.V3(1, 1, 1)
	tests := []struct {
		name string
		o, d geom.Vec3
		want bool
	}{
		{"through", geom.V3(0, -5, 0), geom.V3(0, 10, 0), true},
		{"stops short", geom.V3(0, -5, 0), geom.V3(0, 3, 0), false},
		{"beside", geom.V3(3, -5, 0), geom.V3(0, 10, 0), false},
		{"starts inside", geom.V3(0, 0, 0), geom.V3(0, 10, 0), true},
		{"parallel outside", geom.V3(0, 2, -5), geom.V3(0, 0, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := segmentHitsBox(tt.o, tt.d, lo, hi); got != tt.want {
				t.Errorf("segmentHitsBox = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestACESFilmic(t *testing.T) {
	prev := -1.0
	for _, v := range []float64{0, 0.01, 0.1, 0.5, 1, 4, 16, 100} {
		c := acesFilmic(scene.Linear(v, v, v), 1)
		if c.G < prev {
			t.Errorf("tone curve not monotonic at %.2f: %.4f < %.4f", v, c.G, prev)
		}
		if c.R < 0 || c.R > 1 || c.G < 0 || c.G > 1 || c.B < 0 || c.B > 1 {
			t.Errorf("tone curve out of range at %.2f: %+v", v, c)
		}
		prev = c.G
	}
	if black := acesFilmic(scene.Color{}, 1); black.G > 0.001 {
		t.Errorf("black should stay black, got %+v", black)
	}
}

func TestRenderStreet(t *testing.T) {
	w := scene.Build(rand.New(rand.NewSource(1)))
	w.Camera.SetAspect(96, 54)

	img := image.NewRGBA(image.Rect(0, 0, 96, 54))
	r := New(96, 54)
	r.Render(img, w.Scene, w.Camera, nil)

	cr, _, _ := scene.ClearColor.SRGB8()
	mean := meanLuma(img)
	if mean <= float64(cr) {
		t.Errorf("mean luma %.2f should exceed the clear color %d", mean, cr)
	}

	var brightest uint8
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+1] > brightest {
			brightest = img.Pix[i+1]
		}
	}
	if brightest < 60 {
		t.Errorf("expected a lit pool under the street lights, brightest pixel %d", brightest)
	}
	t.Logf("mean luma %.2f, brightest %d", mean, brightest)
}

func TestShadowsOnlyRemoveLight(t *testing.T) {
	w := scene.Build(rand.New(rand.NewSource(2)))
	w.Camera.SetAspect(64, 36)

	lit := image.NewRGBA(image.Rect(0, 0, 64, 36))
	shadowed := image.NewRGBA(image.Rect(0, 0, 64, 36))

	r := New(64, 36)
	r.Shadows = false
	r.Render(lit, w.Scene, w.Camera, nil)
	r.Shadows = true
	r.Render(shadowed, w.Scene, w.Camera, nil)

	for i := range lit.Pix {
		if shadowed.Pix[i] > lit.Pix[i] {
			t.Fatalf("byte %d brighter with shadows: %d > %d", i, shadowed.Pix[i], lit.Pix[i])
		}
	}
	t.Logf("luma without shadows %.3f, with %.3f", meanLuma(lit), meanLuma(shadowed))
}

func TestRenderLinesScanlines(t *testing.T) {
	const w, h = 32, 240
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	r := New(w, h)
	r.Clear(img, scene.ClearColor)

	r.AutoClear = false
	r.RenderLines(img, scene.Scanlines(scene.ScanlineCount, scene.ScanlineColor, scene.ScanlineAlpha))

	changed := 0
	for y := 0; y < h; y++ {
		off := img.PixOffset(0, y)
		switch img.Pix[off] {
		case 10:
		case 12:
			changed++
			for x := 0; x < w; x++ {
				if img.Pix[img.PixOffset(x, y)] != 12 {
					t.Fatalf("scanline row %d not full width at x=%d", y, x)
				}
			}
		default:
			t.Fatalf("row %d has unexpected value %d", y, img.Pix[off])
		}
	}
	if changed != scene.ScanlineCount {
		t.Errorf("got %d scanline rows, want %d", changed, scene.ScanlineCount)
	}
}

func TestFrameRestoresAutoClear(t *testing.T) {
	w := scene.Build(rand.New(rand.NewSource(3)))
	img := image.NewRGBA(image.Rect(0, 0, 48, 27))
	r := New(48, 27)
	r.Frame(img, w.Scene, w.Camera, nil, w.Overlay)
	if !r.AutoClear {
		t.Error("Frame must restore AutoClear")
	}
}

func TestRenderResizesDepth(t *testing.T) {
	r := New(10, 10)
	w := scene.Build(rand.New(rand.NewSource(5)))
	img := image.NewRGBA(image.Rect(0, 0, 20, 8))
	r.Render(img, w.Scene, w.Camera, nil)
	if gw, gh := r.Size(); gw != 20 || gh != 8 {
		t.Errorf("Size = %dx%d, want 20x8", gw, gh)
	}
	r.SetSize(0, 0)
	r.Render(image.NewRGBA(image.Rect(0, 0, 0, 0)), w.Scene, w.Camera, nil)
}
