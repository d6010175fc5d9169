package session

import (
	"fmt"
	"math"
	"math/rand"
)

// Trigger timing.
const (
	TriggerStart     = 1.0
	TriggerThreshold = 0.995
)

// TriggerPolicy decides when the one-shot voices fire. The session only plays a voice
// when the policy reports it due and the voice is idle, then calls Fired.
type TriggerPolicy interface {
	Due(kind Event, t float64) bool
	Fired(kind Event, t float64)
}

// Oscillator fires while |sin(0.8t)| (growl) or |cos(1.1t)| (bark) is above the threshold.
type Oscillator struct{}

func (Oscillator) Due(kind Event, t float64) bool {
	if t <= TriggerStart {
		return false
	}
	switch kind {
	case EventGrowl:
		return math.Abs(math.Sin(t*0.8)) > TriggerThreshold
	case EventBark:
		return math.Abs(math.Cos(t*1.1)) > TriggerThreshold
	}
	return false
}

func (Oscillator) Fired(Event, float64) {}

// Scheduled fires each voice after a pseudo-random pause drawn uniformly from [Min, Max].
type Scheduled struct {
	Min, Max float64

	rng  *rand.Rand
	next map[Event]float64
}

// NewScheduled seeds the first trigger of each voice at TriggerStart plus one interval.
func NewScheduled(rng *rand.Rand, min, max float64) (*Scheduled, error) {
	if min <= 0 || max < min {
		return nil, fmt.Errorf("session: invalid trigger interval [%g, %g]", min, max)
	}
	s := &Scheduled{Min: min, Max: max, rng: rng, next: make(map[Event]float64)}
	for _, k := range []Event{EventGrowl, EventBark} {
		s.next[k] = TriggerStart + s.interval()
	}
	return s, nil
}

func (s *Scheduled) interval() float64 {
	return s.Min + s.rng.Float64()*(s.Max-s.Min)
}

func (s *Scheduled) Due(kind Event, t float64) bool {
	next, ok := s.next[kind]
	return ok && t > TriggerStart && t >= next
}

func (s *Scheduled) Fired(kind Event, t float64) {
	s.next[kind] = t + s.interval()
}

// Next returns when a voice is scheduled to fire next.
func (s *Scheduled) Next(kind Event) float64 { return s.next[kind] }

// NewPolicy builds a policy by name: "oscillator" (default) or "scheduled".
func NewPolicy(name string, rng *rand.Rand, min, max float64) (TriggerPolicy, error) {
	switch name {
	case "oscillator", "":
		return Oscillator{}, nil
	case "scheduled":
		return NewScheduled(rng, min, max)
	default:
		return nil, fmt.Errorf("session: unknown trigger policy: %s", name)
	}
}
