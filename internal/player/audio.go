package player

import (
	"bytes"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/ivlev/cctvscene/internal/session"
	"github.com/ivlev/cctvscene/internal/synth"
)

// Audio owns the ebiten audio context and the players created for a session.
type Audio struct {
	ctx     *audio.Context
	players []*audio.Player
}

// NewAudio opens the process audio context at rate, or reuses the existing one.
func NewAudio(rate int) *Audio {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(rate)
	}
	return &Audio{ctx: ctx}
}

// NewVoice wraps a clip in an ebiten player. Looping clips repeat until stopped.
func (a *Audio) NewVoice(c *synth.Clip) session.Voice {
	pcm := c.StereoPCM16()

	var p *audio.Player
	if c.Loop() {
		loop := audio.NewInfiniteLoop(bytes.NewReader(pcm), int64(len(pcm)))
		var err error
		p, err = a.ctx.NewPlayer(loop)
		if err != nil {
			return nil
		}
	} else {
		p = a.ctx.NewPlayerFromBytes(pcm)
	}
	p.SetVolume(c.Volume())
	a.players = append(a.players, p)
	return &voice{p: p}
}

// Close releases every player.
func (a *Audio) Close() {
	for _, p := range a.players {
		p.Pause()
		p.Close()
	}
	a.players = nil
}

type voice struct {
	p *audio.Player
}

func (v *voice) Play() {
	v.p.SetPosition(0)
	v.p.Play()
}

func (v *voice) Stop() {
	v.p.Pause()
	v.p.SetPosition(0)
}

func (v *voice) IsPlaying() bool { return v.p.IsPlaying() }
