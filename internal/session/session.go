// Package session is the scene controller. A Session owns the street set and the
// synthesized clips, advances the animation from its clock, fires the growl and bark
// triggers, and cuts to black at ten seconds.
//
// A Session is single-threaded: the host calls Step once per frame and forwards input
// through Dispatch from the same goroutine.
package session

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ivlev/cctvscene/internal/geom"
	"github.com/ivlev/cctvscene/internal/logging"
	"github.com/ivlev/cctvscene/internal/scene"
	"github.com/ivlev/cctvscene/internal/synth"
)

// CutTime is the elapsed time at which the feed goes black.
const CutTime = 10.0

// Motion constants.
const (
	TigerSwayRate = 0.4
	DogSwayRate   = 0.45
	SwayAmplitude = 0.05

	JitterRateX = 2.3
	JitterRateY = 1.7
	JitterX     = 0.003
	JitterY     = 0.0009
)

// State is the controller state.
type State int

const (
	Running State = iota
	Cut
)

func (s State) String() string {
	if s == Cut {
		return "cut"
	}
	return "running"
}

// Event is something that happened during a frame.
type Event int

const (
	EventAmbient Event = iota
	EventGrowl
	EventBark
	EventCut
)

func (e Event) String() string {
	switch e {
	case EventAmbient:
		return "ambient_start"
	case EventGrowl:
		return "growl"
	case EventBark:
		return "bark"
	case EventCut:
		return "cut"
	}
	return "unknown"
}

// ParseEvent is the inverse of Event.String.
func ParseEvent(name string) (Event, bool) {
	for _, e := range []Event{EventAmbient, EventGrowl, EventBark, EventCut} {
		if e.String() == name {
			return e, true
		}
	}
	return 0, false
}

// Voice is a host playback handle for one clip.
type Voice interface {
	Play()
	Stop()
	IsPlaying() bool
}

// Surface is the host render target.
type Surface interface {
	Size() (w, h int)
	Detach()
}

// FrameState is an immutable snapshot of one frame. It carries everything needed to
// draw the frame, so frames can be rendered after the session has moved on.
type FrameState struct {
	Frame     int
	T         float64
	TigerRotY float64
	DogRotY   float64
	Camera    scene.Camera
	Pose      scene.Pose
	Cut       bool
	Events    []Event
}

// Options configure a new session.
type Options struct {
	Surface    Surface
	Clock      Clock
	SampleRate int
	NewVoice   func(*synth.Clip) Voice
	Rand       *rand.Rand
	Triggers   TriggerPolicy
	// Autoplay starts the ambient loop immediately instead of on first interaction.
	Autoplay bool
}

type voices struct {
	ambient, growl, bark Voice
}

// Session is one mounted scene.
type Session struct {
	id     string
	log    *log.Entry
	active bool
	closed bool

	surface   Surface
	clock     Clock
	world     *scene.World
	bank      *synth.Bank
	voices    voices
	triggers  TriggerPolicy
	listeners *registry

	state          State
	frame          int
	width, height  int
	ambientStarted bool
	pending        []Event
}

// New builds the scene, synthesizes the clips and registers the resize and unlock
// listeners. Without a surface nothing is set up and the session stays inactive.
func New(opts Options) *Session {
	id := uuid.New().String()
	s := &Session{
		id:        id,
		log:       logging.For("session").WithField("session", id[:8]),
		listeners: newRegistry(),
	}
	if opts.Surface == nil {
		s.log.Warn("[!] Нет поверхности для рендера, сцена не создана")
		return s
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	s.clock = opts.Clock
	if s.clock == nil {
		s.clock = NewWallClock()
	}
	s.triggers = opts.Triggers
	if s.triggers == nil {
		s.triggers = Oscillator{}
	}

	s.surface = opts.Surface
	s.world = scene.Build(rng)
	s.bank = synth.NewBank(opts.SampleRate, rng)
	s.voices = voices{
		ambient: newVoice(opts.NewVoice, s.bank.Ambient),
		growl:   newVoice(opts.NewVoice, s.bank.Growl),
		bark:    newVoice(opts.NewVoice, s.bank.Bark),
	}
	s.active = true

	s.listeners.add(InputResize, s.onResize)
	s.resize(s.surface.Size())

	if opts.Autoplay {
		s.startAmbient()
	} else {
		var pointerID, keyID int
		unlock := func(Input) {
			s.listeners.remove(InputPointerDown, pointerID)
			s.listeners.remove(InputKeyDown, keyID)
			s.startAmbient()
		}
		pointerID = s.listeners.add(InputPointerDown, unlock)
		keyID = s.listeners.add(InputKeyDown, unlock)
	}

	s.log.WithFields(log.Fields{
		"meshes":      s.world.Scene.Meshes(),
		"sample_rate": opts.SampleRate,
		"autoplay":    opts.Autoplay,
	}).Info("[*] Сцена собрана")
	return s
}

type idleVoice struct{}

func (idleVoice) Play()           {}
func (idleVoice) Stop()           {}
func (idleVoice) IsPlaying() bool { return false }

func newVoice(factory func(*synth.Clip) Voice, c *synth.Clip) Voice {
	if factory == nil {
		return idleVoice{}
	}
	if v := factory(c); v != nil {
		return v
	}
	return idleVoice{}
}

func (s *Session) ID() string { return s.id }

// Active reports whether the session was set up and not yet closed.
func (s *Session) Active() bool { return s.active && !s.closed }

func (s *Session) State() State { return s.state }

// IsCut reports the terminal flag.
func (s *Session) IsCut() bool { return s.state == Cut }

// Frames counts the frames stepped so far.
func (s *Session) Frames() int { return s.frame }

// Size is the current render target size.
func (s *Session) Size() (int, int) { return s.width, s.height }

// World exposes the street set for rendering. It is nil for an inactive session.
func (s *Session) World() *scene.World { return s.world }

// Bank exposes the synthesized clips.
func (s *Session) Bank() *synth.Bank { return s.bank }

// Listeners counts the registered listeners.
func (s *Session) Listeners() int { return s.listeners.count() }

// Dispatch forwards a host event to the registered listeners.
func (s *Session) Dispatch(in Input) {
	if !s.Active() {
		return
	}
	s.listeners.dispatch(in)
}

func (s *Session) onResize(in Input) {
	s.resize(in.Width, in.Height)
}

func (s *Session) resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	s.width, s.height = w, h
	s.world.Camera.SetAspect(w, h)
	s.log.Debugf("resize %dx%d", w, h)
}

func (s *Session) startAmbient() {
	if s.ambientStarted || s.state == Cut {
		return
	}
	s.ambientStarted = true
	s.voices.ambient.Play()
	s.pending = append(s.pending, EventAmbient)
	s.log.Info("[>] Фоновый звук запущен")
}

// Step advances one frame from the session clock. It returns false once the session is
// closed or was never set up; the host must stop calling it then.
func (s *Session) Step() (FrameState, bool) {
	if !s.Active() {
		return FrameState{}, false
	}
	t := s.clock.Elapsed()
	fs := FrameState{Frame: s.frame, T: t, Events: s.pending}
	s.pending = nil
	s.frame++

	if s.state == Cut {
		fs.Cut = true
		return fs, true
	}
	if t >= CutTime {
		s.cut()
		fs.Cut = true
		fs.Events = append(fs.Events, EventCut)
		return fs, true
	}

	fs.TigerRotY, fs.DogRotY = Sway(t)

	cam := s.world.Camera
	cam.Position = CameraPosition(t)
	cam.Target = scene.LookTarget
	fs.Camera = cam
	fs.Pose = s.world.Pose(fs.TigerRotY, fs.DogRotY)

	if s.trigger(EventGrowl, s.voices.growl, t) {
		fs.Events = append(fs.Events, EventGrowl)
	}
	if s.trigger(EventBark, s.voices.bark, t) {
		fs.Events = append(fs.Events, EventBark)
	}
	return fs, true
}

// Sway is the idle yaw of the tiger and the dog at time t.
func Sway(t float64) (tiger, dog float64) {
	return math.Sin(t*TigerSwayRate) * SwayAmplitude, -math.Sin(t*DogSwayRate) * SwayAmplitude
}

// CameraPosition is the jittered camera position at time t.
func CameraPosition(t float64) geom.Vec3 {
	return geom.V3(
		math.Sin(t*JitterRateX)*JitterX,
		scene.CameraBase+math.Sin(t*JitterRateY)*JitterY,
		scene.CameraPosition.Z,
	)
}

func (s *Session) trigger(kind Event, v Voice, t float64) bool {
	if !s.triggers.Due(kind, t) || v.IsPlaying() {
		return false
	}
	v.Play()
	s.triggers.Fired(kind, t)
	s.log.Debugf("%s at %.3fs", kind, t)
	return true
}

func (s *Session) cut() {
	s.voices.ambient.Stop()
	if s.voices.growl.IsPlaying() {
		s.voices.growl.Stop()
	}
	if s.voices.bark.IsPlaying() {
		s.voices.bark.Stop()
	}
	s.state = Cut
	s.log.Infof("[*] Обрыв сигнала на %d кадре", s.frame)
}

// Close tears the session down: no further frames, no listeners, voices stopped,
// scene resources released and the surface detached. It is safe to call twice.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.listeners.clear()
	if !s.active {
		return
	}
	s.voices.ambient.Stop()
	s.voices.growl.Stop()
	s.voices.bark.Stop()
	released := s.world.Dispose()
	s.surface.Detach()
	s.log.WithField("released", released).Info("[*] Сессия закрыта")
}
