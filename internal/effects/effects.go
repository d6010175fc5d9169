package effects

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Frame describes the frame an effect is applied to.
type Frame struct {
	Index int
	T     float64   // Seconds since the session started
	Stamp time.Time // Wall time shown in the HUD
}

// Effect post-processes a rendered frame in place.
type Effect interface {
	Apply(img *image.RGBA, f Frame)
}

// Chain applies effects in order.
type Chain []Effect

func (c Chain) Apply(img *image.RGBA, f Frame) {
	for _, e := range c {
		e.Apply(img, f)
	}
}

// NewChain builds a chain from a comma separated list, e.g. "desaturate,vignette,grain".
func NewChain(list string, seed int64) (Chain, error) {
	var chain Chain
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		switch name {
		case "", "none":
		case "desaturate":
			chain = append(chain, &Desaturate{Amount: 0.6})
		case "vignette":
			chain = append(chain, &Vignette{Strength: 0.55})
		case "grain":
			chain = append(chain, &Grain{Amount: 10, Seed: seed})
		default:
			return nil, fmt.Errorf("unknown effect: %s", name)
		}
	}
	return chain, nil
}

// Desaturate pulls colors toward their luma, giving the washed-out camera look.
type Desaturate struct {
	Amount float64 // 0 keeps color, 1 is grayscale
}

func (d *Desaturate) Apply(img *image.RGBA, _ Frame) {
	a := clamp01(d.Amount)
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b := float64(pix[i]), float64(pix[i+1]), float64(pix[i+2])
		l := 0.2126*r + 0.7152*g + 0.0722*b
		pix[i] = to8(r + (l-r)*a)
		pix[i+1] = to8(g + (l-g)*a)
		pix[i+2] = to8(b + (l-b)*a)
	}
}

// Vignette darkens the frame toward the corners. It is safe for concurrent use.
type Vignette struct {
	Strength float64

	mu   sync.Mutex
	w, h int
	mask []float64
}

func (v *Vignette) Apply(img *image.RGBA, _ Frame) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := v.maskFor(w, h)
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			k := mask[y*w+x]
			row[x*4] = to8(float64(row[x*4]) * k)
			row[x*4+1] = to8(float64(row[x*4+1]) * k)
			row[x*4+2] = to8(float64(row[x*4+2]) * k)
		}
	}
}

func (v *Vignette) maskFor(w, h int) []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mask == nil || v.w != w || v.h != h {
		v.build(w, h)
	}
	return v.mask
}

func (v *Vignette) build(w, h int) {
	v.w, v.h = w, h
	v.mask = make([]float64, w*h)
	cx, cy := float64(w)/2, float64(h)/2
	maxD := math.Hypot(cx, cy)
	if maxD == 0 {
		maxD = 1
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / maxD
			v.mask[y*w+x] = 1 - v.Strength*d*d
		}
	}
}

// Grain adds per-frame luminance noise. The same seed and frame index give the same grain.
type Grain struct {
	Amount float64 // Peak deviation in 8-bit steps
	Seed   int64
}

func (g *Grain) Apply(img *image.RGBA, f Frame) {
	rng := rand.New(rand.NewSource(g.Seed*7919 + int64(f.Index)))
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		n := (rng.Float64()*2 - 1) * g.Amount
		pix[i] = to8(float64(pix[i]) + n)
		pix[i+1] = to8(float64(pix[i+1]) + n)
		pix[i+2] = to8(float64(pix[i+2]) + n)
	}
}

// CutFrame turns the frame into the solid black shown after the signal is cut.
func CutFrame(img *image.RGBA) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = 0, 0, 0, 0xFF
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
