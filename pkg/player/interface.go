package player

// State reflects the last observed playback state of the controlled player.
type State int

const (
	StateUnknown State = iota // Player not running or unreachable
	StatePlaying              // Player is playing
	StatePaused               // Player is paused or stopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Controller issues pause/resume/query commands to the controlled player.
// Pause and Resume are idempotent at the OS level; callers still check State
// first to avoid redundant automation calls.
type Controller interface {
	// Name returns the application name of the controlled player
	Name() string

	// State queries the player's current playback state. A player that is
	// not running maps to StateUnknown with a nil error; only script
	// execution failures return an error.
	State() (State, error)

	// Pause pauses playback. No-op if already paused.
	Pause() error

	// Resume resumes playback. No-op if already playing.
	Resume() error

	// IsAvailable checks if this controller can run on the current system
	IsAvailable() bool

	// Close cleans up any resources used by the controller
	Close() error
}
