package scene

import "github.com/ivlev/cctvscene/internal/geom"

// LineSegments is a screen-space line list drawn with an orthographic camera
// spanning NDC [-1,1] on both axes.
type LineSegments struct {
	Points  []geom.Vec3 // consecutive pairs
	Color   Color
	Opacity float64
}

// Segments returns the number of line segments.
func (l *LineSegments) Segments() int { return len(l.Points) / 2 }

// Scanlines builds n full-width horizontal lines evenly spaced from the bottom edge.
func Scanlines(n int, c Color, opacity float64) *LineSegments {
	l := &LineSegments{Color: c, Opacity: opacity}
	for i := 0; i < n; i++ {
		y := float64(i)/float64(n)*2 - 1
		l.Points = append(l.Points, geom.V3(-1, y, 0), geom.V3(1, y, 0))
	}
	return l
}
