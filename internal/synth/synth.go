// Package synth generates the three procedural clips of the street scene: the looping
// ambient hum, the tiger growl and the dog bark. Clips are mono float32 buffers computed
// once for a sample rate and never modified afterwards.
package synth

import (
	"math"
	"math/rand"
)

// Clip durations in seconds and playback volumes.
const (
	AmbientDuration = 3.0
	GrowlDuration   = 1.1
	BarkDuration    = 0.25

	AmbientVolume = 0.22
	GrowlVolume   = 0.6
	BarkVolume    = 0.55
)

// Clip is an immutable mono sample buffer.
type Clip struct {
	name    string
	samples []float32
	rate    int
	loop    bool
	volume  float64
}

func (c *Clip) Name() string     { return c.name }
func (c *Clip) SampleRate() int  { return c.rate }
func (c *Clip) Loop() bool       { return c.loop }
func (c *Clip) Volume() float64  { return c.volume }
func (c *Clip) Len() int         { return len(c.samples) }
func (c *Clip) At(i int) float32 { return c.samples[i] }

// Duration is the buffer length in seconds.
func (c *Clip) Duration() float64 {
	if c.rate == 0 {
		return 0
	}
	return float64(len(c.samples)) / float64(c.rate)
}

// Samples returns a copy of the buffer.
func (c *Clip) Samples() []float32 {
	out := make([]float32, len(c.samples))
	copy(out, c.samples)
	return out
}

// Length is the sample count for a duration at a rate, rounded down.
func Length(duration float64, rate int) int {
	if duration <= 0 || rate <= 0 {
		return 0
	}
	return int(math.Floor(duration * float64(rate)))
}

func render(name string, duration float64, rate int, loop bool, volume float64, fn func(t float64) float64) *Clip {
	n := Length(duration, rate)
	c := &Clip{name: name, samples: make([]float32, n), rate: rate, loop: loop, volume: volume}
	for i := 0; i < n; i++ {
		c.samples[i] = float32(fn(float64(i) / float64(rate)))
	}
	return c
}

// noise draws uniform white noise in [-1, 1).
func noise(rng *rand.Rand) float64 {
	return rng.Float64()*2 - 1
}

const twoPi = 2 * math.Pi

// Ambient is the looping street hum: white noise over a 55 Hz mains tone and a slow swell.
func Ambient(rate int, rng *rand.Rand) *Clip {
	return render("ambient", AmbientDuration, rate, true, AmbientVolume, func(t float64) float64 {
		return (noise(rng)*0.4 + math.Sin(twoPi*55*t)*0.15 + math.Sin(twoPi*1.7*t)*0.05) * 0.5
	})
}

// GrowlEnvelope ramps up over 50 ms and decays linearly from 0.1 s over one second,
// clamped to [0, 1].
func GrowlEnvelope(t float64) float64 {
	env := math.Min(1, t/0.05) * math.Max(0, 1-(t-0.1)/1.0)
	return math.Max(0, math.Min(1, env))
}

// Growl is a low tone wobbling around 80 Hz with a sub-octave and grit.
func Growl(rate int, rng *rand.Rand) *Clip {
	return render("growl", GrowlDuration, rate, false, GrowlVolume, func(t float64) float64 {
		env := GrowlEnvelope(t)
		f := 80 + 20*math.Sin(twoPi*2.2*t)
		tone := math.Sin(twoPi * f * t)
		sub := math.Sin(twoPi*(f/2)*t) * 0.6
		grit := noise(rng) * 0.35
		return (tone*0.5 + sub*0.5 + grit*0.6) * env * 0.9
	})
}

// BarkEnvelope is a fast exponential decay.
func BarkEnvelope(t float64) float64 {
	return math.Exp(-10 * t)
}

// Bark is a short 220 Hz yelp with a 12 Hz vibrato over noise.
func Bark(rate int, rng *rand.Rand) *Clip {
	return render("bark", BarkDuration, rate, false, BarkVolume, func(t float64) float64 {
		env := BarkEnvelope(t)
		tone := math.Sin(twoPi * (220 + 40*math.Sin(twoPi*12*t)) * t)
		n := noise(rng) * 0.5
		return (tone*0.6 + n*0.4) * env * 0.9
	})
}

// Bank holds the clips of one session.
type Bank struct {
	Ambient *Clip
	Growl   *Clip
	Bark    *Clip
}

// NewBank synthesizes every clip for the given rate.
func NewBank(rate int, rng *rand.Rand) *Bank {
	return &Bank{
		Ambient: Ambient(rate, rng),
		Growl:   Growl(rate, rng),
		Bark:    Bark(rate, rng),
	}
}

// Clips lists the bank in a stable order.
func (b *Bank) Clips() []*Clip {
	return []*Clip{b.Ambient, b.Growl, b.Bark}
}
