package player

// State represents the engine state machine.
//
//	Stopped ──play──▶ Playing ◀──resume── Paused
//	   ▲                 │ pause            ▲
//	   │                 └──────────────────┘
//	   └──── stop / end of stream (from Playing or Paused)
//
// Pause on a stopped engine, Resume on a playing one and Play on a playing
// one (which stops first) are handled gracefully.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a resource is loaded (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanResume returns true if the state allows resuming.
func (s State) CanResume() bool {
	return s == Paused
}
