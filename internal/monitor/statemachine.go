package monitor

import (
	"time"

	"github.com/pkg/errors"

	"github.com/autopause/autopause/pkg/audio"
	"github.com/autopause/autopause/pkg/player"
)

// Phase is the state machine's position between ticks.
type Phase int

const (
	// PhaseIdle: no other audio, and we do not owe the player a resume.
	PhaseIdle Phase = iota

	// PhaseAutoPaused: other audio is active and we paused the player.
	PhaseAutoPaused

	// PhaseBystander: other audio is active but the player was already not
	// playing when we noticed. We took no action and claim no credit.
	PhaseBystander

	// PhasePendingResume: other audio just went idle; we wait out the
	// debounce window before resuming.
	PhasePendingResume
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseAutoPaused:
		return "auto_paused"
	case PhaseBystander:
		return "bystander"
	case PhasePendingResume:
		return "pending_resume"
	default:
		return "idle"
	}
}

// Action is the player command a tick resulted in.
type Action int

const (
	ActionNone Action = iota
	ActionPause
	ActionResume
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionPause:
		return "pause"
	case ActionResume:
		return "resume"
	default:
		return "none"
	}
}

// Transition describes what one tick did to the machine.
type Transition struct {
	From    Phase
	To      Phase
	Action  Action
	Sources audio.Snapshot // apps that triggered the tick's signal
	At      time.Time
}

// Changed reports whether the tick moved the machine to a new phase.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Machine is the autopause state machine. Exactly one instance exists per
// running monitor; ticks are strictly sequential so no locking is needed.
type Machine struct {
	phase          Phase
	pausedByUs     bool
	idleStreak     int
	debounceTicks  int
	lastTransition time.Time
}

// NewMachine creates a machine in PhaseIdle. debounceTicks is the number of
// consecutive idle ticks required before a resume fires.
func NewMachine(debounceTicks int) *Machine {
	if debounceTicks < 1 {
		debounceTicks = 1
	}
	return &Machine{
		phase:         PhaseIdle,
		debounceTicks: debounceTicks,
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// PausedByUs reports whether the player's current pause was caused by this
// monitor, i.e. whether a resume is owed.
func (m *Machine) PausedByUs() bool {
	return m.pausedByUs
}

// IdleStreak returns the current consecutive-idle-tick count.
func (m *Machine) IdleStreak() int {
	return m.idleStreak
}

// LastTransition returns when the machine last changed phase.
func (m *Machine) LastTransition() time.Time {
	return m.lastTransition
}

// Step advances the machine by one tick. sig is the classified activity
// signal, ps the player state queried this tick, and sources the filtered
// snapshot behind sig. Player commands are issued through ctl; a failed
// command leaves the phase unchanged so the next tick retries it.
func (m *Machine) Step(sig Signal, ps player.State, sources audio.Snapshot, ctl player.Controller) (Transition, error) {
	tr := Transition{
		From:    m.phase,
		To:      m.phase,
		Action:  ActionNone,
		Sources: sources,
		At:      time.Now(),
	}

	switch m.phase {
	case PhaseIdle:
		if sig != SignalActive {
			break
		}
		if ps != player.StatePlaying {
			// Player was already paused or not running; no credit taken.
			m.moveTo(PhaseBystander, &tr)
			break
		}
		if err := ctl.Pause(); err != nil {
			return tr, errors.Wrap(err, "pause command failed")
		}
		tr.Action = ActionPause
		m.pausedByUs = true
		m.moveTo(PhaseAutoPaused, &tr)

	case PhaseAutoPaused:
		if sig == SignalIdle {
			m.idleStreak = 1
			m.moveTo(PhasePendingResume, &tr)
			if err := m.maybeResume(&tr, ps, ctl); err != nil {
				return tr, err
			}
		}

	case PhasePendingResume:
		if sig == SignalActive {
			// Flicker: the audio came back before the window elapsed.
			m.idleStreak = 0
			m.moveTo(PhaseAutoPaused, &tr)
			break
		}
		m.idleStreak++
		if err := m.maybeResume(&tr, ps, ctl); err != nil {
			return tr, err
		}

	case PhaseBystander:
		if sig == SignalIdle {
			m.moveTo(PhaseIdle, &tr)
		}
	}

	return tr, nil
}

// maybeResume issues the resume once the idle streak reaches the debounce
// threshold. The streak is kept on failure so the next idle tick retries the
// command instead of re-running the whole window.
func (m *Machine) maybeResume(tr *Transition, ps player.State, ctl player.Controller) error {
	if m.idleStreak < m.debounceTicks {
		return nil
	}

	if ps == player.StateUnknown {
		// Player quit while we held the pause; nothing left to resume.
		m.pausedByUs = false
		m.idleStreak = 0
		m.moveTo(PhaseIdle, tr)
		return nil
	}

	if err := ctl.Resume(); err != nil {
		return errors.Wrap(err, "resume command failed")
	}

	tr.Action = ActionResume
	m.pausedByUs = false
	m.idleStreak = 0
	m.moveTo(PhaseIdle, tr)
	return nil
}

func (m *Machine) moveTo(phase Phase, tr *Transition) {
	m.phase = phase
	m.lastTransition = tr.At
	tr.To = phase
}
