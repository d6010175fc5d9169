package director

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/ivlev/cctvscene/internal/session"
)

// ErrInvalidCueSheet is returned for cue sheets that could not come from a session
var ErrInvalidCueSheet = errors.New("invalid cue sheet")

// Director records frame events into a cue sheet
type Director struct {
	sheet *CueSheet
}

// NewDirector creates a director for one session
func NewDirector(sessionID, triggers string, fps int, seed int64) *Director {
	return &Director{
		sheet: &CueSheet{
			Version:  "1.0",
			Session:  sessionID,
			Triggers: triggers,
			FPS:      fps,
			Seed:     seed,
		},
	}
}

// Observe appends the events of a frame
func (d *Director) Observe(fs session.FrameState) {
	for _, e := range fs.Events {
		d.sheet.Cues = append(d.sheet.Cues, Cue{Time: fs.T, Kind: e.String(), Frame: fs.Frame})
	}
	if fs.T > d.sheet.Duration {
		d.sheet.Duration = fs.T
	}
}

// Sheet returns the recorded cue sheet
func (d *Director) Sheet() *CueSheet {
	return d.sheet
}

// Validate checks ordering and the once-only events
func (s *CueSheet) Validate() error {
	last := -1.0
	once := map[string]int{}
	for i, c := range s.Cues {
		kind, ok := session.ParseEvent(c.Kind)
		if !ok {
			return fmt.Errorf("%w: cue %d has unknown kind %q", ErrInvalidCueSheet, i, c.Kind)
		}
		if c.Time < last {
			return fmt.Errorf("%w: cue %d at %.3fs is out of order", ErrInvalidCueSheet, i, c.Time)
		}
		last = c.Time
		if kind == session.EventCut || kind == session.EventAmbient {
			once[c.Kind]++
			if once[c.Kind] > 1 {
				return fmt.Errorf("%w: %s appears more than once", ErrInvalidCueSheet, c.Kind)
			}
		}
	}
	return nil
}

// Replay is a trigger policy that fires growls and barks at the times of a recorded sheet
type Replay struct {
	times map[session.Event][]float64
	next  map[session.Event]int
}

// NewReplay builds a replay policy from a cue sheet
func NewReplay(sheet *CueSheet) *Replay {
	r := &Replay{
		times: make(map[session.Event][]float64),
		next:  make(map[session.Event]int),
	}
	for _, k := range []session.Event{session.EventGrowl, session.EventBark} {
		r.times[k] = sheet.Times(k.String())
	}
	return r
}

func (r *Replay) Due(kind session.Event, t float64) bool {
	i := r.next[kind]
	times := r.times[kind]
	return t > session.TriggerStart && i < len(times) && t >= times[i]
}

// Fired skips every recorded cue up to t
func (r *Replay) Fired(kind session.Event, t float64) {
	times := r.times[kind]
	i := r.next[kind]
	for i < len(times) && times[i] <= t {
		i++
	}
	r.next[kind] = i
}

// Policy resolves a trigger policy by name. "replay" replays the growls and barks of the
// cue sheet at path; any other name is handed to session.NewPolicy.
func Policy(name, path string, rng *rand.Rand, min, max float64) (session.TriggerPolicy, error) {
	if name != "replay" {
		return session.NewPolicy(name, rng, min, max)
	}
	sheet, err := ReadCueSheet(path)
	if err != nil {
		return nil, err
	}
	return NewReplay(sheet), nil
}
