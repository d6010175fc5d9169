// Package analyzer inspects rendered frames: brightness probes and lit-region detection.
package analyzer

import (
	"fmt"
	"image"
)

// Block is a detected lit region of a frame
type Block struct {
	Rect       image.Rectangle
	Type       string  // "light_pool"
	Confidence float64 // Fill ratio of the bounding box, 0.0-1.0
}

// Area is the bounding box area in pixels
func (b Block) Area() int { return b.Rect.Dx() * b.Rect.Dy() }

// Detector finds regions of interest in a frame
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}

// NewDetector resolves a detector by name; "" selects the light pool detector
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "lights", "":
		return NewLightPoolDetector(), nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}

// Largest returns the block with the biggest area, or false if there is none
func Largest(blocks []Block) (Block, bool) {
	if len(blocks) == 0 {
		return Block{}, false
	}
	best := blocks[0]
	for _, b := range blocks[1:] {
		if b.Area() > best.Area() {
			best = b
		}
	}
	return best, true
}
