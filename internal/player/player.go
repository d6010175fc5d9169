// Package player hosts a session in a desktop window with live audio.
package player

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	log "github.com/sirupsen/logrus"

	"github.com/ivlev/cctvscene/internal/config"
	"github.com/ivlev/cctvscene/internal/director"
	"github.com/ivlev/cctvscene/internal/effects"
	"github.com/ivlev/cctvscene/internal/logging"
	"github.com/ivlev/cctvscene/internal/renderer"
	"github.com/ivlev/cctvscene/internal/session"
	"github.com/ivlev/cctvscene/internal/system"
)

// Game adapts a session to ebiten's Update/Draw/Layout loop. It is also the session's
// render surface.
type Game struct {
	sess   *session.Session
	audio  *Audio
	rend   *renderer.Renderer
	effect effects.Effect
	log    *log.Entry

	scale    int
	w, h     int
	frame    *image.RGBA
	frameImg *ebiten.Image
	keys     []ebiten.Key

	last     session.FrameState
	stepped  bool
	cut      bool
	detached bool
}

// NewGame builds the session for a window of cfg.Width x cfg.Height.
func NewGame(cfg *config.Config, eff effects.Effect) (*Game, error) {
	policy, err := director.Policy(cfg.Triggers, cfg.CueSheet, rand.New(rand.NewSource(cfg.Seed+1)), cfg.TriggerMin, cfg.TriggerMax)
	if err != nil {
		return nil, fmt.Errorf("ошибка настройки триггеров: %w", err)
	}

	g := &Game{
		audio:  NewAudio(cfg.SampleRate),
		effect: eff,
		scale:  max(cfg.Scale, 1),
		log:    logging.For("player"),
	}
	g.resize(cfg.Width/g.scale, cfg.Height/g.scale)
	g.rend = renderer.New(g.w, g.h)

	g.sess = session.New(session.Options{
		Surface:    g,
		Clock:      session.NewWallClock(),
		SampleRate: cfg.SampleRate,
		NewVoice:   g.audio.NewVoice,
		Rand:       rand.New(rand.NewSource(cfg.Seed)),
		Triggers:   policy,
		Autoplay:   cfg.Autoplay,
	})
	if !g.sess.Active() {
		g.audio.Close()
		return nil, errors.New("сцена не создана")
	}
	if !cfg.Autoplay {
		g.log.Info("[*] Кликните или нажмите клавишу, чтобы включить звук")
	}
	return g, nil
}

// Run opens the window and blocks until it is closed or Escape is pressed.
func Run(cfg *config.Config, eff effects.Effect) error {
	g, err := NewGame(cfg, eff)
	if err != nil {
		return err
	}
	defer g.Close()

	ebiten.SetWindowTitle(effects.CameraLabel)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.FPS)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// Size reports the logical frame size.
func (g *Game) Size() (int, int) { return g.w, g.h }

// Detach drops the frame buffers once the session closes.
func (g *Game) Detach() {
	g.detached = true
	if g.frame != nil {
		system.PutImage(g.frame)
		g.frame = nil
	}
	if g.frameImg != nil {
		g.frameImg.Deallocate()
		g.frameImg = nil
	}
}

// Close ends the session and releases audio. Safe to call twice.
func (g *Game) Close() {
	g.sess.Close()
	g.audio.Close()
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.sess.Dispatch(session.Input{Kind: session.InputPointerDown})
	}
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	if len(g.keys) > 0 {
		g.sess.Dispatch(session.Input{Kind: session.InputKeyDown})
	}

	fs, ok := g.sess.Step()
	if !ok {
		return nil
	}
	g.last, g.stepped = fs, true
	if fs.Cut && !g.cut {
		g.cut = true
		g.sess.Close()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.cut || !g.stepped || g.frame == nil {
		screen.Fill(color.Black)
		return
	}

	world := g.sess.World()
	g.rend.Frame(g.frame, world.Scene, g.last.Camera, g.last.Pose, world.Overlay)
	if g.effect != nil {
		g.effect.Apply(g.frame, effects.Frame{Index: g.last.Frame, T: g.last.T, Stamp: time.Now()})
	}
	g.frameImg.WritePixels(g.frame.Pix)
	screen.DrawImage(g.frameImg, nil)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := max(outsideWidth/g.scale, 1), max(outsideHeight/g.scale, 1)
	if w != g.w || h != g.h {
		g.resize(w, h)
		g.sess.Dispatch(session.Input{Kind: session.InputResize, Width: w, Height: h})
	}
	return g.w, g.h
}

func (g *Game) resize(w, h int) {
	g.w, g.h = max(w, 1), max(h, 1)
	if g.detached {
		return
	}
	if g.frame != nil {
		system.PutImage(g.frame)
	}
	g.frame = system.GetImage(image.Rect(0, 0, g.w, g.h))
	if g.frameImg != nil {
		g.frameImg.Deallocate()
	}
	g.frameImg = ebiten.NewImage(g.w, g.h)
}
