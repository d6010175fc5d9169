package director

// CueSheet is the trigger timeline of one session
type CueSheet struct {
	Version  string  `yaml:"version"`
	Session  string  `yaml:"session"`
	Triggers string  `yaml:"triggers"` // Trigger policy that produced the cues
	FPS      int     `yaml:"fps"`
	Seed     int64   `yaml:"seed"`
	Duration float64 `yaml:"duration"` // Rendered length in seconds
	Cues     []Cue   `yaml:"cues"`
}

// Cue is a single audio or state event
type Cue struct {
	Time  float64 `yaml:"time"`  // Elapsed session time in seconds
	Kind  string  `yaml:"kind"`  // ambient_start, growl, bark or cut
	Frame int     `yaml:"frame"` // Frame index the event happened on
}

// Count returns the number of cues of a kind
func (s *CueSheet) Count(kind string) int {
	n := 0
	for _, c := range s.Cues {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Times lists the times of all cues of a kind in order
func (s *CueSheet) Times(kind string) []float64 {
	var out []float64
	for _, c := range s.Cues {
		if c.Kind == kind {
			out = append(out, c.Time)
		}
	}
	return out
}
