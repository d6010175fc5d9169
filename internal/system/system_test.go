package system

import (
	"image"
	"strings"
	"testing"
)

func TestImagePool(t *testing.T) {
	p := NewImagePool()
	rect := image.Rect(0, 0, 32, 18)

	a := p.Get(rect)
	if a.Rect != rect || len(a.Pix) != 32*18*4 {
		t.Fatalf("Unexpected image %v (%d bytes)", a.Rect, len(a.Pix))
	}
	p.Put(a)

	b := p.Get(rect)
	if len(b.Pix) != len(a.Pix) {
		t.Errorf("Pooled image has wrong size")
	}

	other := p.Get(image.Rect(0, 0, 16, 16))
	if other.Rect.Dx() != 16 {
		t.Errorf("Different sizes must not share a pool, got %v", other.Rect)
	}

	stats := p.Stats()
	if stats.Hits+stats.Misses != 3 {
		t.Errorf("Expected 3 gets, got %+v", stats)
	}
	t.Logf("pool stats: %+v", stats)

	p.Put(nil)
	p.Put(&image.RGBA{})
}

func TestDefaultQuality(t *testing.T) {
	tests := []struct {
		encoder string
		want    int
	}{
		{"h264_videotoolbox", 75},
		{"h264_nvenc", 28},
		{"libx264", 23},
		{"", 23},
	}
	for _, tt := range tests {
		if got := DefaultQuality(tt.encoder); got != tt.want {
			t.Errorf("%q: expected %d, got %d", tt.encoder, tt.want, got)
		}
	}
}

func TestHostInfo(t *testing.T) {
	info := CollectHostInfo()
	if info.Cores <= 0 {
		t.Errorf("Expected at least one core, got %d", info.Cores)
	}
	s := info.String()
	if !strings.Contains(s, "RAM") {
		t.Errorf("Unexpected host line: %s", s)
	}
	t.Log(s)
}
