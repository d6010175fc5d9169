package session

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ivlev/cctvscene/internal/synth"
)

type manualClock struct{ t float64 }

func (c *manualClock) Elapsed() float64 { return c.t }

type fakeVoice struct {
	name    string
	playing bool
	plays   int
	stops   int
	// oneShot voices end as soon as they start.
	oneShot bool
}

func (v *fakeVoice) Play() {
	v.plays++
	v.playing = !v.oneShot
}

func (v *fakeVoice) Stop() {
	v.stops++
	v.playing = false
}

func (v *fakeVoice) IsPlaying() bool { return v.playing }

type fakeSurface struct {
	w, h     int
	detached bool
}

func (s *fakeSurface) Size() (int, int) { return s.w, s.h }
func (s *fakeSurface) Detach()          { s.detached = true }

type rig struct {
	s       *Session
	clock   *manualClock
	surface *fakeSurface
	voices  map[string]*fakeVoice
}

func newRig(t *testing.T, autoplay bool, policy TriggerPolicy) *rig {
	t.Helper()
	r := &rig{
		clock:   &manualClock{},
		surface: &fakeSurface{w: 640, h: 360},
		voices:  make(map[string]*fakeVoice),
	}
	r.s = New(Options{
		Surface:    r.surface,
		Clock:      r.clock,
		SampleRate: 8000,
		NewVoice: func(c *synth.Clip) Voice {
			v := &fakeVoice{name: c.Name()}
			r.voices[c.Name()] = v
			return v
		},
		Rand:     rand.New(rand.NewSource(7)),
		Triggers: policy,
		Autoplay: autoplay,
	})
	return r
}

func (r *rig) step(t float64) FrameState {
	r.clock.t = t
	fs, ok := r.s.Step()
	if !ok {
		panic("step on inactive session")
	}
	return fs
}

func hasEvent(fs FrameState, e Event) bool {
	for _, got := range fs.Events {
		if got == e {
			return true
		}
	}
	return false
}

func TestCutIsTerminal(t *testing.T) {
	r := newRig(t, true, nil)

	if fs := r.step(9.999); fs.Cut || r.s.IsCut() {
		t.Fatal("cut before 10 s")
	}
	fs := r.step(10.0)
	if !fs.Cut || !r.s.IsCut() || !hasEvent(fs, EventCut) {
		t.Fatalf("expected cut at exactly 10 s, got %+v", fs)
	}
	for _, tt := range []float64{10.5, 9.0, 30} {
		fs := r.step(tt)
		if !fs.Cut {
			t.Errorf("cut flag reverted at t=%.1f", tt)
		}
		if hasEvent(fs, EventCut) {
			t.Errorf("cut fired twice at t=%.1f", tt)
		}
	}
	if r.s.State() != Cut {
		t.Errorf("state = %v, want cut", r.s.State())
	}
}

func TestCutStopsAllVoices(t *testing.T) {
	r := newRig(t, true, nil)
	r.voices["growl"].Play()
	r.voices["bark"].Play()

	r.step(10.2)
	for name, v := range r.voices {
		if v.IsPlaying() {
			t.Errorf("%s still playing after the cut", name)
		}
	}
	if r.voices["ambient"].stops != 1 {
		t.Errorf("ambient stopped %d times, want 1", r.voices["ambient"].stops)
	}
}

func TestCutIgnoresLateUnlock(t *testing.T) {
	r := newRig(t, false, nil)
	r.step(11)
	r.s.Dispatch(Input{Kind: InputPointerDown})
	if r.voices["ambient"].plays != 0 {
		t.Error("ambient must not start after the cut")
	}
}

func TestSwayAndJitter(t *testing.T) {
	r := newRig(t, true, nil)

	fs := r.step(0)
	if fs.TigerRotY != 0 || fs.DogRotY != 0 {
		t.Errorf("rotations at t=0: %f %f", fs.TigerRotY, fs.DogRotY)
	}
	if fs.Camera.Position.X != 0 || fs.Camera.Position.Y != 0.6 {
		t.Errorf("camera at t=0: %+v", fs.Camera.Position)
	}

	for k := 1; k <= 3; k++ {
		tk := 2 * math.Pi * float64(k) / TigerSwayRate
		if tiger, _ := Sway(tk); math.Abs(tiger) > 1e-12 {
			t.Errorf("tiger rotation at 2πk/0.4 (k=%d): %g", k, tiger)
		}
	}

	tt := 3.3
	fs = r.step(tt)
	if want := math.Sin(tt*0.4) * 0.05; fs.TigerRotY != want {
		t.Errorf("tiger rotY = %f, want %f", fs.TigerRotY, want)
	}
	if want := -math.Sin(tt*0.45) * 0.05; fs.DogRotY != want {
		t.Errorf("dog rotY = %f, want %f", fs.DogRotY, want)
	}
	if want := math.Sin(tt*2.3) * 0.003; fs.Camera.Position.X != want {
		t.Errorf("camera x = %f, want %f", fs.Camera.Position.X, want)
	}
	if want := 0.6 + math.Sin(tt*1.7)*0.0009; fs.Camera.Position.Y != want {
		t.Errorf("camera y = %f, want %f", fs.Camera.Position.Y, want)
	}
	if fs.Camera.Target.Y != 0.5 {
		t.Errorf("camera target = %+v", fs.Camera.Target)
	}
	if len(fs.Pose) != 2 {
		t.Errorf("pose should move both rigs, got %d entries", len(fs.Pose))
	}
}

func TestNoTriggerBeforeOneSecond(t *testing.T) {
	r := newRig(t, true, nil)
	for i := 0; i <= 1000; i++ {
		fs := r.step(float64(i) / 1000)
		if hasEvent(fs, EventGrowl) || hasEvent(fs, EventBark) {
			t.Fatalf("trigger at t=%.3f", fs.T)
		}
	}
	if r.voices["growl"].plays != 0 || r.voices["bark"].plays != 0 {
		t.Error("voices played before 1 s")
	}
}

func TestGrowlDoesNotRestartWhilePlaying(t *testing.T) {
	r := newRig(t, true, nil)
	peak := math.Pi / 2 / 0.8

	if fs := r.step(peak); !hasEvent(fs, EventGrowl) {
		t.Fatalf("growl expected at t=%.4f", peak)
	}
	if fs := r.step(peak + 0.001); hasEvent(fs, EventGrowl) {
		t.Error("growl restarted while playing")
	}
	r.voices["growl"].playing = false
	if fs := r.step(peak + 0.002); !hasEvent(fs, EventGrowl) {
		t.Error("growl should fire again once idle inside the window")
	}
	if r.voices["growl"].plays != 2 {
		t.Errorf("growl plays = %d, want 2", r.voices["growl"].plays)
	}
}

func TestBarkTrigger(t *testing.T) {
	r := newRig(t, true, nil)
	peak := math.Pi / 1.1
	if fs := r.step(peak); !hasEvent(fs, EventBark) {
		t.Errorf("bark expected at t=%.4f", peak)
	}
	if fs := r.step(peak + 0.3); hasEvent(fs, EventBark) {
		t.Error("bark outside the threshold window")
	}
}

func TestAmbientUnlock(t *testing.T) {
	r := newRig(t, false, nil)
	if got := r.s.Listeners(); got != 3 {
		t.Fatalf("listeners = %d, want resize+pointer+key", got)
	}
	if r.voices["ambient"].plays != 0 {
		t.Fatal("ambient must wait for interaction")
	}

	r.s.Dispatch(Input{Kind: InputKeyDown})
	r.s.Dispatch(Input{Kind: InputPointerDown})
	r.s.Dispatch(Input{Kind: InputKeyDown})

	if r.voices["ambient"].plays != 1 {
		t.Errorf("ambient plays = %d, want 1", r.voices["ambient"].plays)
	}
	if got := r.s.Listeners(); got != 1 {
		t.Errorf("unlock listeners should remove themselves, %d left", got)
	}
	if fs := r.step(0.5); !hasEvent(fs, EventAmbient) {
		t.Error("ambient start not reported on the next frame")
	}
	if fs := r.step(0.6); hasEvent(fs, EventAmbient) {
		t.Error("ambient start reported twice")
	}
}

func TestAutoplay(t *testing.T) {
	r := newRig(t, true, nil)
	if r.voices["ambient"].plays != 1 {
		t.Error("autoplay should start ambient at creation")
	}
	if got := r.s.Listeners(); got != 1 {
		t.Errorf("listeners = %d, want only resize", got)
	}
	if fs := r.step(0); !hasEvent(fs, EventAmbient) {
		t.Error("first frame should report the ambient start")
	}
}

func TestResize(t *testing.T) {
	r := newRig(t, true, nil)
	if w, h := r.s.Size(); w != 640 || h != 360 {
		t.Fatalf("initial size %dx%d", w, h)
	}
	r.s.Dispatch(Input{Kind: InputResize, Width: 800, Height: 400})
	if w, h := r.s.Size(); w != 800 || h != 400 {
		t.Errorf("size after resize %dx%d", w, h)
	}
	if fs := r.step(0.1); fs.Camera.Aspect != 2 {
		t.Errorf("aspect = %f, want 2", fs.Camera.Aspect)
	}
	r.s.Dispatch(Input{Kind: InputResize, Width: 0, Height: 100})
	if w, _ := r.s.Size(); w != 800 {
		t.Error("zero-sized resize should be ignored")
	}
}

func TestCloseTearsDown(t *testing.T) {
	r := newRig(t, false, nil)
	r.step(0.1)
	frames := r.s.Frames()

	r.s.Close()
	r.s.Close()

	if _, ok := r.s.Step(); ok {
		t.Error("frame callback ran after Close")
	}
	if r.s.Frames() != frames {
		t.Error("frame counter moved after Close")
	}
	if got := r.s.Listeners(); got != 0 {
		t.Errorf("%d listeners left after Close", got)
	}
	if !r.surface.detached {
		t.Error("surface not detached")
	}
	if r.s.World().Scene.Meshes() != 0 {
		t.Error("scene not released")
	}
	r.s.Dispatch(Input{Kind: InputKeyDown})
	if r.voices["ambient"].plays != 0 {
		t.Error("input handled after Close")
	}
	if r.s.Active() {
		t.Error("closed session reports active")
	}
}

func TestNoSurfaceIsNoop(t *testing.T) {
	s := New(Options{SampleRate: 8000})
	if s.Active() {
		t.Error("session without surface must be inactive")
	}
	if _, ok := s.Step(); ok {
		t.Error("inactive session stepped")
	}
	if s.World() != nil || s.Listeners() != 0 {
		t.Error("inactive session built state")
	}
	s.Close()
	if s.ID() == "" {
		t.Error("session id missing")
	}
}

func TestScheduledPolicy(t *testing.T) {
	const min, max = 0.5, 1.5
	policy, err := NewScheduled(rand.New(rand.NewSource(11)), min, max)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []Event{EventGrowl, EventBark} {
		if n := policy.Next(k); n < TriggerStart+min || n > TriggerStart+max {
			t.Errorf("%s first trigger at %.3f outside bounds", k, n)
		}
	}

	r := newRig(t, true, policy)
	for _, v := range r.voices {
		v.oneShot = true
	}

	const dt = 1.0 / 60
	var fired []float64
	for i := 0; float64(i)*dt < CutTime; i++ {
		fs := r.step(float64(i) * dt)
		if hasEvent(fs, EventGrowl) {
			if fs.T <= TriggerStart {
				t.Fatalf("scheduled trigger at %.3f", fs.T)
			}
			fired = append(fired, fs.T)
		}
	}
	if len(fired) < 2 {
		t.Fatalf("expected several growls, got %d", len(fired))
	}
	for i := 1; i < len(fired); i++ {
		gap := fired[i] - fired[i-1]
		if gap < min-1e-9 || gap > max+dt+1e-9 {
			t.Errorf("gap %.3f outside [%.1f, %.1f]", gap, min, max)
		}
	}
	t.Logf("growls at %v", fired)
}

func TestNewPolicy(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name    string
		min     float64
		max     float64
		wantErr bool
	}{
		{"", 0, 0, false},
		{"oscillator", 0, 0, false},
		{"scheduled", 2, 5, false},
		{"scheduled", 5, 2, true},
		{"scheduled", 0, 2, true},
		{"random", 1, 2, true},
	}
	for _, tt := range tests {
		_, err := NewPolicy(tt.name, rng, tt.min, tt.max)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewPolicy(%q, %g, %g) error = %v, wantErr %v", tt.name, tt.min, tt.max, err, tt.wantErr)
		}
	}
}

func TestStepClock(t *testing.T) {
	c := NewStepClock(30)
	for i := 0; i < 45; i++ {
		c.Advance()
	}
	if c.Elapsed() != 1.5 || c.Frame() != 45 {
		t.Errorf("elapsed %.3f frame %d", c.Elapsed(), c.Frame())
	}
	if NewStepClock(0).fps != 30 {
		t.Error("non-positive fps should default")
	}
}
