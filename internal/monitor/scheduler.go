package monitor

import (
	"time"

	"github.com/autopause/autopause/internal/config"
	"github.com/autopause/autopause/pkg/player"
)

// Scheduler computes the delay before the next tick. Polling is tighter
// while the player is audibly playing and relaxed while it is paused or not
// running, so the loop stays responsive without hammering the OS when there
// is nothing to react to.
type Scheduler struct {
	startup time.Duration
	playing time.Duration
	idle    time.Duration
}

// NewScheduler builds a scheduler from the monitor configuration.
func NewScheduler(cfg config.MonitorConfig) *Scheduler {
	return &Scheduler{
		startup: cfg.StartupDelay,
		playing: cfg.PlayingInterval,
		idle:    cfg.IdleInterval,
	}
}

// Startup returns the one-shot delay before the first tick, giving the OS
// audio subsystem time to settle after launch.
func (s *Scheduler) Startup() time.Duration {
	return s.startup
}

// Next returns the delay before the next tick given the player state
// observed this tick.
func (s *Scheduler) Next(ps player.State) time.Duration {
	if ps == player.StatePlaying {
		return s.playing
	}
	return s.idle
}
