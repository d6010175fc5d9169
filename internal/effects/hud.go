package effects

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// StampFormat is the ISO-8601 form of the HUD clock.
const StampFormat = "2006-01-02T15:04:05.000Z"

// HUD labels
const (
	CameraLabel = "CAM 03"
	RecLabel    = "REC"
	LensLabel   = "WIDE FOV"
)

const (
	hudMargin = 10
	qrSize    = 48
)

var (
	hudText = color.RGBA{0xd8, 0xd8, 0xd8, 0xff}
	recRed  = color.RGBA{0xe0, 0x20, 0x20, 0xff}
)

// HUD draws the camera overlay: label, REC indicator, lens mode and a live timestamp,
// plus an optional QR evidence tag.
type HUD struct {
	face font.Face
	tag  image.Image
}

// NewHUD creates the overlay. A non-empty evidence string is encoded as a QR tag.
func NewHUD(evidence string) (*HUD, error) {
	h := &HUD{face: basicfont.Face7x13}
	if evidence == "" {
		return h, nil
	}
	q, err := qrcode.New(evidence, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode evidence tag: %w", err)
	}
	q.DisableBorder = true
	q.ForegroundColor = hudText
	q.BackgroundColor = color.RGBA{0, 0, 0, 0xff}
	h.tag = q.Image(qrSize)
	return h, nil
}

// Apply lets the HUD sit at the end of an effect chain.
func (h *HUD) Apply(img *image.RGBA, f Frame) {
	h.Draw(img, f.Stamp)
}

// Draw renders the overlay with the given wall time.
func (h *HUD) Draw(img *image.RGBA, stamp time.Time) {
	b := img.Bounds()
	m := h.face.Metrics()
	ascent := m.Ascent.Ceil()
	top := b.Min.Y + hudMargin + ascent
	bottom := b.Max.Y - hudMargin - m.Descent.Ceil()

	h.text(img, CameraLabel, b.Min.X+hudMargin, top)

	recW := h.width(RecLabel)
	recX := b.Max.X - hudMargin - recW
	h.text(img, RecLabel, recX, top)
	r := ascent / 3
	fillCircle(img, image.Pt(recX-r-6, top-ascent/2+1), r, recRed)

	h.text(img, LensLabel, b.Min.X+hudMargin, bottom)
	ts := stamp.UTC().Format(StampFormat)
	h.text(img, ts, b.Max.X-hudMargin-h.width(ts), bottom)

	if h.tag != nil {
		y1 := bottom - ascent - 6
		dst := image.Rect(b.Min.X+hudMargin, y1-qrSize, b.Min.X+hudMargin+qrSize, y1)
		draw.NearestNeighbor.Scale(img, dst, h.tag, h.tag.Bounds(), draw.Src, nil)
	}
}

func (h *HUD) text(img *image.RGBA, s string, x, y int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(hudText),
		Face: h.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func (h *HUD) width(s string) int {
	return font.MeasureString(h.face, s).Ceil()
}

func fillCircle(img *image.RGBA, c image.Point, r int, col color.RGBA) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y > r*r {
				continue
			}
			p := c.Add(image.Pt(x, y))
			if p.In(img.Rect) {
				img.SetRGBA(p.X, p.Y, col)
			}
		}
	}
}
