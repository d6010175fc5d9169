package synth

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"
	"testing"
)

func TestClipLengths(t *testing.T) {
	rates := []int{8000, 22050, 44100, 48000}
	for _, rate := range rates {
		b := NewBank(rate, rand.New(rand.NewSource(1)))
		tests := []struct {
			clip     *Clip
			duration float64
		}{
			{b.Ambient, AmbientDuration},
			{b.Growl, GrowlDuration},
			{b.Bark, BarkDuration},
		}
		for _, tt := range tests {
			want := int(math.Floor(tt.duration * float64(rate)))
			if tt.clip.Len() != want {
				t.Errorf("%s at %d Hz: got %d samples, want %d", tt.clip.Name(), rate, tt.clip.Len(), want)
			}
		}
	}
}

func TestClipFlags(t *testing.T) {
	b := NewBank(8000, rand.New(rand.NewSource(2)))
	if !b.Ambient.Loop() || b.Growl.Loop() || b.Bark.Loop() {
		t.Error("only the ambient clip loops")
	}
	if b.Ambient.Volume() != 0.22 || b.Growl.Volume() != 0.6 || b.Bark.Volume() != 0.55 {
		t.Errorf("unexpected volumes: %v %v %v", b.Ambient.Volume(), b.Growl.Volume(), b.Bark.Volume())
	}
}

func TestGrowlEnvelope(t *testing.T) {
	tests := []struct {
		t    float64
		want float64
	}{
		{0, 0},
		{0.025, 0.5375},
		{0.04, 0.848},
		{0.05, 1},
		{0.1, 1},
		{0.6, 0.5},
		{1.1, 0},
		{1.5, 0},
	}
	for _, tt := range tests {
		if got := GrowlEnvelope(tt.t); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("GrowlEnvelope(%.3f) = %f, want %f", tt.t, got, tt.want)
		}
	}
}

func TestBarkEnvelope(t *testing.T) {
	if got := BarkEnvelope(0); got != 1 {
		t.Errorf("BarkEnvelope(0) = %f, want 1", got)
	}
	if got := BarkEnvelope(0.7); got >= 0.001 {
		t.Errorf("BarkEnvelope(0.7) = %f, want < 0.001", got)
	}
}

func TestGrowlStartsSilent(t *testing.T) {
	g := Growl(44100, rand.New(rand.NewSource(3)))
	if g.At(0) != 0 {
		t.Errorf("growl should start at zero amplitude, got %f", g.At(0))
	}
}

func TestSamplesInRange(t *testing.T) {
	b := NewBank(22050, rand.New(rand.NewSource(4)))
	for _, c := range b.Clips() {
		peak := 0.0
		for i := 0; i < c.Len(); i++ {
			peak = math.Max(peak, math.Abs(float64(c.At(i))))
		}
		if peak > 1 {
			t.Errorf("%s peaks at %f", c.Name(), peak)
		}
		t.Logf("%s: %d samples, peak %.3f", c.Name(), c.Len(), peak)
	}
}

func TestSamplesIsACopy(t *testing.T) {
	c := Bark(8000, rand.New(rand.NewSource(5)))
	s := c.Samples()
	orig := c.At(10)
	s[10] = 42
	if c.At(10) != orig {
		t.Error("mutating Samples() changed the clip")
	}
}

func TestSeededSynthesisIsReproducible(t *testing.T) {
	a := Ambient(8000, rand.New(rand.NewSource(9)))
	b := Ambient(8000, rand.New(rand.NewSource(9)))
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			t.Fatalf("sample %d differs", i)
		}
	}
}

func TestWriteWAVHeader(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1}
	for _, channels := range []int{1, 2} {
		var buf bytes.Buffer
		if err := WriteWAV(&buf, samples, 8000, channels); err != nil {
			t.Fatal(err)
		}
		data := buf.Bytes()
		dataSize := len(samples) * channels * 2
		if len(data) != 44+dataSize {
			t.Fatalf("channels=%d: got %d bytes, want %d", channels, len(data), 44+dataSize)
		}
		if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[36:40]) != "data" {
			t.Error("missing RIFF/WAVE/data tags")
		}
		if got := binary.LittleEndian.Uint32(data[4:8]); got != uint32(36+dataSize) {
			t.Errorf("RIFF size = %d, want %d", got, 36+dataSize)
		}
		if got := binary.LittleEndian.Uint16(data[22:24]); got != uint16(channels) {
			t.Errorf("channels = %d, want %d", got, channels)
		}
		if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(dataSize) {
			t.Errorf("data size = %d, want %d", got, dataSize)
		}
		if got := int16(binary.LittleEndian.Uint16(data[44+3*channels*2:])); got != math.MaxInt16 {
			t.Errorf("full-scale sample = %d", got)
		}
	}

	if err := WriteWAV(&bytes.Buffer{}, samples, 0, 1); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestStereoPCM16(t *testing.T) {
	c := &Clip{samples: []float32{0.25, -1}, rate: 8000}
	pcm := c.StereoPCM16()
	if len(pcm) != 8 {
		t.Fatalf("got %d bytes, want 8", len(pcm))
	}
	l := int16(binary.LittleEndian.Uint16(pcm[0:2]))
	r := int16(binary.LittleEndian.Uint16(pcm[2:4]))
	if l != r || l != ToInt16(0.25) {
		t.Errorf("left/right = %d/%d, want %d", l, r, ToInt16(0.25))
	}
	if got := int16(binary.LittleEndian.Uint16(pcm[4:6])); got != -math.MaxInt16 {
		t.Errorf("negative full scale = %d", got)
	}
}
