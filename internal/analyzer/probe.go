package analyzer

import "image"

// FrameStats summarizes the brightness of a frame
type FrameStats struct {
	MeanLuma float64 // 0-255
	PeakLuma uint8
	LitRatio float64 // Share of pixels above the lit threshold
}

// Probe computes FrameStats for an RGBA frame; lit pixels are those above threshold
func Probe(img *image.RGBA, threshold uint8) FrameStats {
	var stats FrameStats
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return stats
	}

	var sum, lit int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			l := luma8(row[x*4], row[x*4+1], row[x*4+2])
			sum += int(l)
			if l > stats.PeakLuma {
				stats.PeakLuma = l
			}
			if l > threshold {
				lit++
			}
		}
	}
	stats.MeanLuma = float64(sum) / float64(n)
	stats.LitRatio = float64(lit) / float64(n)
	return stats
}

// MeanLuma is the average luma of a frame
func MeanLuma(img *image.RGBA) float64 {
	return Probe(img, 255).MeanLuma
}

// IsBlack reports whether no pixel exceeds tolerance
func IsBlack(img *image.RGBA, tolerance uint8) bool {
	return Probe(img, 255).PeakLuma <= tolerance
}
