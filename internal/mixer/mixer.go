// Package mixer is the offline audio back end: voices play clips on a sample timeline
// driven by the session clock, and the timeline is mixed down to a single track.
package mixer

import (
	"math"

	"github.com/ivlev/cctvscene/internal/synth"
)

// Clock reports elapsed session time in seconds.
type Clock interface {
	Elapsed() float64
}

// Mixer owns the voices of one render.
type Mixer struct {
	rate   int
	clock  Clock
	voices []*Voice
}

// New creates a mixer at the given sample rate reading time from clock.
func New(rate int, clock Clock) *Mixer {
	return &Mixer{rate: rate, clock: clock}
}

// SampleRate is the output rate.
func (m *Mixer) SampleRate() int { return m.rate }

func (m *Mixer) now() int64 {
	return int64(math.Floor(m.clock.Elapsed() * float64(m.rate)))
}

// span is one play of a voice on the timeline. end < 0 means it was never stopped.
type span struct {
	start, end int64
}

// Voice plays one clip. Play/Stop are recorded as spans and rendered by Mixdown.
type Voice struct {
	m    *Mixer
	clip *synth.Clip

	spans []span
}

// NewVoice attaches a clip to the mixer.
func (m *Mixer) NewVoice(c *synth.Clip) *Voice {
	v := &Voice{m: m, clip: c}
	m.voices = append(m.voices, v)
	return v
}

// Clip returns the voice's clip.
func (v *Voice) Clip() *synth.Clip { return v.clip }

// Play starts the clip at the current clock time, cutting off a play still in progress.
func (v *Voice) Play() {
	now := v.m.now()
	if v.IsPlaying() {
		v.spans[len(v.spans)-1].end = now
	}
	v.spans = append(v.spans, span{start: now, end: -1})
}

// Stop ends playback at the current clock time. Stopping an idle voice does nothing.
func (v *Voice) Stop() {
	if !v.IsPlaying() {
		return
	}
	v.spans[len(v.spans)-1].end = v.m.now()
}

// IsPlaying reports whether the clip is audible at the current clock time.
func (v *Voice) IsPlaying() bool {
	if len(v.spans) == 0 {
		return false
	}
	last := v.spans[len(v.spans)-1]
	if last.end >= 0 {
		return false
	}
	if v.clip.Loop() {
		return true
	}
	return v.m.now() < last.start+int64(v.clip.Len())
}

// Plays counts how many times the voice was started.
func (v *Voice) Plays() int { return len(v.spans) }

// Mixdown renders every voice into a mono track of n samples, applying clip volumes.
func (m *Mixer) Mixdown(n int) []float32 {
	out := make([]float64, n)
	for _, v := range m.voices {
		length := int64(v.clip.Len())
		if length == 0 {
			continue
		}
		vol := v.clip.Volume()
		for _, s := range v.spans {
			end := int64(n)
			if s.end >= 0 && s.end < end {
				end = s.end
			}
			if !v.clip.Loop() && s.start+length < end {
				end = s.start + length
			}
			for i := s.start; i < end; i++ {
				if i < 0 {
					continue
				}
				out[i] += float64(v.clip.At(int((i-s.start)%length))) * vol
			}
		}
	}

	res := make([]float32, n)
	for i, s := range out {
		res[i] = float32(math.Max(-1, math.Min(1, s)))
	}
	return res
}
