package mood

// State is the companion's coarse affect state. It gates response tone and
// which parts of the conversation pipeline run for a turn.
type State string

const (
	Normal State = "normal"
	Angry  State = "angry"
)

// CoaxThreshold is the number of accepted coaxing attempts required before an
// angry companion returns to normal.
const CoaxThreshold = 3

// Valid reports whether s is a known state.
func Valid(s State) bool {
	return s == Normal || s == Angry
}

// Snapshot pairs a state with its coax counter for persistence and transport.
type Snapshot struct {
	State State `json:"state"`
	Coax  int   `json:"coax"`
}
