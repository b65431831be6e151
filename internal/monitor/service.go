package monitor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/autopause/autopause/internal/config"
	"github.com/autopause/autopause/internal/ignore"
	"github.com/autopause/autopause/internal/models"
	"github.com/autopause/autopause/pkg/audio"
	"github.com/autopause/autopause/pkg/player"
)

// Recorder is the sink for activity events and errors. Satisfied by
// database.Repository in production and by in-memory fakes in tests.
type Recorder interface {
	CreateEvent(event *models.ActivityEvent) error
	CreateErrorLog(errorLog *models.ErrorLog) error
}

// Service owns the polling loop: one sequential tick at a time, an adaptive
// cancellable sleep in between. All monitor state lives here and in the
// machine for the process lifetime. The machine is only ever touched by the
// loop goroutine; status for other goroutines (the web handler) is published
// through the mutex-guarded snapshot below.
type Service struct {
	config     *config.Config
	recorder   Recorder
	sampler    audio.Sampler
	controller player.Controller
	ignore     *ignore.Store
	machine    *Machine
	scheduler  *Scheduler
	stopChan   chan struct{}
	stopOnce   sync.Once

	// mu guards the status snapshot republished after every tick.
	mu         sync.Mutex
	running    bool
	phase      Phase
	pausedByUs bool

	// samplerDown latches after the first sampling failure so a dead audio
	// subsystem is reported once, not on every tick. Loop goroutine only.
	samplerDown bool
}

func NewService(cfg *config.Config, rec Recorder, sampler audio.Sampler, ctl player.Controller, store *ignore.Store) *Service {
	return &Service{
		config:     cfg,
		recorder:   rec,
		sampler:    sampler,
		controller: ctl,
		ignore:     store,
		machine:    NewMachine(cfg.Monitor.DebounceTicks),
		scheduler:  NewScheduler(cfg.Monitor),
		stopChan:   make(chan struct{}),
	}
}

// Start runs the polling loop until the context is cancelled or Stop is
// called. The inter-tick sleep is interruptible; an in-flight tick always
// completes so a pause is never abandoned without its paused-by-us record.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("monitor is already running")
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("Starting monitor for %s (playing interval %v, idle interval %v, debounce %d ticks)",
		s.controller.Name(), s.config.Monitor.PlayingInterval,
		s.config.Monitor.IdleInterval, s.config.Monitor.DebounceTicks)

	s.recordLifecycle("started")

	if err := s.sleep(ctx, s.scheduler.Startup()); err != nil {
		s.shutdown()
		if err == errStopped {
			return nil
		}
		return err
	}

	for {
		ps := s.tick()

		if err := s.sleep(ctx, s.scheduler.Next(ps)); err != nil {
			s.shutdown()
			if err == errStopped {
				return nil
			}
			return err
		}
	}
}

// Stop requests a shutdown. The current tick finishes first. Safe to call
// more than once and from any goroutine.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// IsRunning reports whether the loop is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Phase returns the phase as of the most recent tick, for status reporting.
func (s *Service) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// PausedByUs reports whether the monitor currently owes the player a resume.
func (s *Service) PausedByUs() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pausedByUs
}

// sleep waits out the given delay, returning early when the context is
// cancelled or Stop is called. context.Canceled marks ctx-driven exits;
// errStopped marks Stop-driven ones.
func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		log.Println("Monitor stopped by context")
		return ctx.Err()
	case <-s.stopChan:
		log.Println("Monitor stopped")
		return errStopped
	case <-timer.C:
		return nil
	}
}

var errStopped = fmt.Errorf("monitor stopped")

func (s *Service) shutdown() {
	s.recordLifecycle("stopped")
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// tick runs one sample -> filter -> classify -> transition pass and returns
// the player state the tick left behind, which drives the next delay.
func (s *Service) tick() player.State {
	patterns := s.ignore.Patterns()

	snap, err := s.sampler.Sample()
	if err != nil {
		// Fail safe toward not touching the player: a failed sample counts
		// as no other audio for this tick.
		if !s.samplerDown {
			s.samplerDown = true
			log.Printf("Audio sampling failed, treating as no other audio until it recovers: %v", err)
			s.storeError("sampler", err)
		}
		snap = nil
	} else if s.samplerDown {
		s.samplerDown = false
		log.Printf("Audio sampling recovered")
	}

	filtered := Filter(snap, patterns, s.controller.Name(), s.config.Monitor.MatchMode)
	sig := Classify(filtered)

	ps, err := s.controller.State()
	if err != nil {
		s.storeError("player", err)
		ps = player.StateUnknown
	}

	tr, err := s.machine.Step(sig, ps, filtered, s.controller)
	if err != nil {
		log.Printf("Player command failed, will retry next tick: %v", err)
		s.storeError("player", err)
	}

	// A command changes the player state mid-tick; schedule and record off
	// the result, not the pre-command query.
	switch tr.Action {
	case ActionPause:
		ps = player.StatePaused
	case ActionResume:
		ps = player.StatePlaying
	}

	if tr.Changed() || tr.Action != ActionNone {
		s.recordTransition(tr, ps)
	}

	s.mu.Lock()
	s.phase = s.machine.Phase()
	s.pausedByUs = s.machine.PausedByUs()
	s.mu.Unlock()

	return ps
}

func (s *Service) recordTransition(tr Transition, ps player.State) {
	kind := models.EventTransition
	switch tr.Action {
	case ActionPause:
		kind = models.EventPause
	case ActionResume:
		kind = models.EventResume
	}

	detail := fmt.Sprintf("%s -> %s", tr.From, tr.To)
	sources := strings.Join(tr.Sources, ", ")

	log.Printf("Transition: %s (kind: %s, player: %s, sources: [%s])", detail, kind, ps, sources)

	event := &models.ActivityEvent{
		Timestamp:   tr.At,
		Kind:        kind,
		PlayerState: ps.String(),
		Sources:     sources,
		Detail:      detail,
	}

	if err := s.recorder.CreateEvent(event); err != nil {
		log.Printf("Failed to record activity event: %v", err)
	}
}

func (s *Service) recordLifecycle(detail string) {
	event := &models.ActivityEvent{
		Timestamp:   time.Now(),
		Kind:        models.EventMonitor,
		PlayerState: player.StateUnknown.String(),
		Detail:      detail,
	}

	if err := s.recorder.CreateEvent(event); err != nil {
		log.Printf("Failed to record lifecycle event: %v", err)
	}
}

func (s *Service) storeError(source string, err error) {
	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		Source:    source,
		ErrorMsg:  err.Error(),
	}

	if dbErr := s.recorder.CreateErrorLog(errorLog); dbErr != nil {
		log.Printf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	}
}
