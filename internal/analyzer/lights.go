package analyzer

import (
	"image"
	"image/color"
)

// LightPoolDetector finds bright connected regions, i.e. the pools of light under the
// street lamps and anything they illuminate
type LightPoolDetector struct {
	MinBlockArea int   // Minimum area in pixels²
	Threshold    uint8 // Luma above which a pixel counts as lit
}

// NewLightPoolDetector creates a detector tuned for the dim CCTV frames
func NewLightPoolDetector() *LightPoolDetector {
	return &LightPoolDetector{
		MinBlockArea: 12,
		Threshold:    60,
	}
}

// Detect thresholds the frame, closes small gaps and returns the bounding box of every
// remaining lit component
func (d *LightPoolDetector) Detect(img image.Image) ([]Block, error) {
	gray := toLuma(img)
	mask := threshold(gray, d.Threshold)
	mask = dilate(mask, 3, 1)

	blocks := []Block{}
	for _, c := range findComponents(mask) {
		area := c.rect.Dx() * c.rect.Dy()
		if area < d.MinBlockArea {
			continue
		}
		blocks = append(blocks, Block{
			Rect:       c.rect,
			Type:       "light_pool",
			Confidence: float64(c.pixels) / float64(area), // fill ratio
		})
	}
	return blocks, nil
}

// toLuma converts a frame to Rec. 709 luma, with a fast path for *image.RGBA
func toLuma(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			src := rgba.Pix[rgba.PixOffset(bounds.Min.X, y):]
			dst := gray.Pix[gray.PixOffset(bounds.Min.X, y):]
			for x := 0; x < bounds.Dx(); x++ {
				dst[x] = luma8(src[x*4], src[x*4+1], src[x*4+2])
			}
		}
		return gray
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.SetGray(x, y, color.GrayModel.Convert(img.At(x, y)).(color.Gray))
		}
	}
	return gray
}

func luma8(r, g, b uint8) uint8 {
	return uint8((2126*uint32(r) + 7152*uint32(g) + 722*uint32(b) + 5000) / 10000)
}

func threshold(gray *image.Gray, level uint8) *image.Gray {
	out := image.NewGray(gray.Bounds())
	for i, v := range gray.Pix {
		if v > level {
			out.Pix[i] = 255
		}
	}
	return out
}

// dilate performs morphological dilation to connect nearby lit pixels
func dilate(img *image.Gray, kernelSize, iterations int) *image.Gray {
	bounds := img.Bounds()
	half := kernelSize / 2
	result := img

	for iter := 0; iter < iterations; iter++ {
		temp := image.NewGray(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				var maxVal uint8
				for ky := -half; ky <= half && maxVal == 0; ky++ {
					for kx := -half; kx <= half; kx++ {
						p := image.Pt(x+kx, y+ky)
						if !p.In(bounds) {
							continue
						}
						if v := result.GrayAt(p.X, p.Y).Y; v > maxVal {
							maxVal = v
						}
					}
				}
				temp.SetGray(x, y, color.Gray{Y: maxVal})
			}
		}
		result = temp
	}
	return result
}

type component struct {
	rect   image.Rectangle
	pixels int
}

// findComponents labels 4-connected white regions
func findComponents(img *image.Gray) []component {
	bounds := img.Bounds()
	visited := make([]bool, bounds.Dx()*bounds.Dy())
	index := func(x, y int) int { return (y-bounds.Min.Y)*bounds.Dx() + (x - bounds.Min.X) }

	var out []component
	var stack []image.Point
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.GrayAt(x, y).Y <= 128 || visited[index(x, y)] {
				continue
			}

			c := component{rect: image.Rect(x, y, x+1, y+1)}
			stack = append(stack[:0], image.Pt(x, y))
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if !p.In(bounds) || visited[index(p.X, p.Y)] || img.GrayAt(p.X, p.Y).Y <= 128 {
					continue
				}
				visited[index(p.X, p.Y)] = true
				c.pixels++
				c.rect = c.rect.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
				stack = append(stack,
					image.Pt(p.X+1, p.Y), image.Pt(p.X-1, p.Y),
					image.Pt(p.X, p.Y+1), image.Pt(p.X, p.Y-1),
				)
			}
			out = append(out, c)
		}
	}
	return out
}
