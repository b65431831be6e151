package audio

// Snapshot is the set of application names producing audio at one instant.
// It is captured once per tick and never mutated afterwards.
type Snapshot []string

// Empty reports whether no application is producing audio.
func (s Snapshot) Empty() bool {
	return len(s) == 0
}

// Sampler is the interface that all audio-activity detection implementations
// must satisfy
type Sampler interface {
	// Sample returns the applications currently outputting audio.
	// A failed OS query returns a nil snapshot and an error; callers treat
	// that as "no other audio" for the tick.
	Sample() (Snapshot, error)

	// IsAvailable checks if this sampler can run on the current system
	IsAvailable() bool

	// Platform returns the audio backend name (e.g. "coreaudio", "pulse")
	Platform() string

	// Close cleans up any resources used by the sampler
	Close() error
}
