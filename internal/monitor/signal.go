package monitor

import "github.com/autopause/autopause/pkg/audio"

// Signal is the per-tick activity classification of a filtered snapshot.
type Signal int

const (
	SignalIdle   Signal = iota // No non-ignored application is producing audio
	SignalActive               // At least one non-ignored application is producing audio
)

// String returns the string representation of the signal.
func (s Signal) String() string {
	if s == SignalActive {
		return "active"
	}
	return "idle"
}

// Classify reduces a filtered snapshot to a single activity signal.
func Classify(filtered audio.Snapshot) Signal {
	if filtered.Empty() {
		return SignalIdle
	}
	return SignalActive
}
