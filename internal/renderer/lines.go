package renderer

import (
	"image"
	"math"

	"github.com/ivlev/cctvscene/internal/scene"
)

// RenderLines draws a screen-space line list over dst. Coordinates are NDC and the
// line color is blended over what is already there using the list's opacity.
func (r *Renderer) RenderLines(dst *image.RGBA, l *scene.LineSegments) {
	if dst == nil || l == nil || l.Opacity <= 0 {
		return
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	if r.AutoClear {
		r.Clear(dst, scene.Color{})
	}
	cr, cg, cb := l.Color.SRGB8()
	a := math.Min(l.Opacity, 1)

	toPixel := func(x, y float64) (int, int) {
		px := int(math.Round((x*0.5 + 0.5) * float64(w-1)))
		py := int(math.Round((1 - (y*0.5 + 0.5)) * float64(h-1)))
		return px, py
	}
	plot := func(x, y int) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return
		}
		off := dst.PixOffset(dst.Rect.Min.X+x, dst.Rect.Min.Y+y)
		dst.Pix[off+0] = blend(dst.Pix[off+0], cr, a)
		dst.Pix[off+1] = blend(dst.Pix[off+1], cg, a)
		dst.Pix[off+2] = blend(dst.Pix[off+2], cb, a)
		dst.Pix[off+3] = 0xFF
	}

	for i := 0; i+1 < len(l.Points); i += 2 {
		x0, y0 := toPixel(l.Points[i].X, l.Points[i].Y)
		x1, y1 := toPixel(l.Points[i+1].X, l.Points[i+1].Y)
		drawLine(x0, y0, x1, y1, plot)
	}
}

func blend(under, over uint8, a float64) uint8 {
	return uint8(float64(over)*a + float64(under)*(1-a) + 0.5)
}

// drawLine walks a Bresenham line and calls plot once per pixel.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
