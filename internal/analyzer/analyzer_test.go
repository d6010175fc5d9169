package analyzer

import (
	"image"
	"image/color"
	"testing"
)

func fill(img *image.RGBA, r image.Rectangle, v uint8) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
}

func TestLightPoolDetector(t *testing.T) {
	// Dark street with two lit pools
	img := image.NewRGBA(image.Rect(0, 0, 200, 120))
	fill(img, img.Bounds(), 10)
	fill(img, image.Rect(20, 60, 60, 100), 140)
	fill(img, image.Rect(120, 70, 180, 110), 200)
	fill(img, image.Rect(100, 10, 101, 11), 220) // speck below MinBlockArea

	detector := NewLightPoolDetector()
	blocks, err := detector.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(blocks) != 2 {
		t.Fatalf("Expected 2 pools, got %d", len(blocks))
	}
	for i, b := range blocks {
		if b.Rect.Dx() < 40 || b.Rect.Dy() < 40 {
			t.Errorf("Block %d too small: %v", i, b.Rect)
		}
		if b.Type != "light_pool" || b.Confidence <= 0.5 {
			t.Errorf("Block %d: type %s confidence %.2f", i, b.Type, b.Confidence)
		}
		t.Logf("Block %d: %v (type: %s, confidence: %.2f)", i, b.Rect, b.Type, b.Confidence)
	}
}

func TestDetectGenericImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 50, 50))
	for y := 10; y < 30; y++ {
		for x := 10; x < 30; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	blocks, err := NewLightPoolDetector().Detect(img)
	if err != nil || len(blocks) != 1 {
		t.Fatalf("Expected one block, got %d (%v)", len(blocks), err)
	}
}

func TestProbe(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	fill(img, img.Bounds(), 0)
	if !IsBlack(img, 0) {
		t.Error("All-black frame not detected")
	}

	fill(img, image.Rect(0, 0, 5, 10), 100)
	stats := Probe(img, 50)
	if stats.MeanLuma != 50 {
		t.Errorf("Expected mean 50, got %.2f", stats.MeanLuma)
	}
	if stats.PeakLuma != 100 || stats.LitRatio != 0.5 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if IsBlack(img, 10) {
		t.Error("Half-lit frame reported black")
	}
	if MeanLuma(img) != 50 {
		t.Errorf("MeanLuma = %.2f", MeanLuma(img))
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"lights", false},
		{"", false}, // default
		{"edges", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			detector, err := NewDetector(tt.variant)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if detector == nil {
					t.Error("Expected detector, got nil")
				}
			}
		})
	}
}

func TestLargest(t *testing.T) {
	if _, ok := Largest(nil); ok {
		t.Error("Expected no block for empty input")
	}
	blocks := []Block{
		{Rect: image.Rect(0, 0, 4, 4)},
		{Rect: image.Rect(0, 0, 10, 3)},
		{Rect: image.Rect(0, 0, 2, 2)},
	}
	b, ok := Largest(blocks)
	if !ok || b.Area() != 30 {
		t.Errorf("Expected area 30, got %d", b.Area())
	}
}
