package monitor

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/autopause/autopause/internal/config"
	"github.com/autopause/autopause/internal/ignore"
	"github.com/autopause/autopause/internal/models"
	"github.com/autopause/autopause/pkg/audio"
	"github.com/autopause/autopause/pkg/player"
)

// fakeSampler replays a scripted sequence of snapshots, repeating the last
// entry once the script runs out.
type fakeSampler struct {
	mu     sync.Mutex
	script []audio.Snapshot
	err    error
	calls  int
}

func (f *fakeSampler) Sample() (audio.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	}
	return f.script[idx], nil
}

func (f *fakeSampler) IsAvailable() bool { return true }
func (f *fakeSampler) Platform() string  { return "fake" }
func (f *fakeSampler) Close() error      { return nil }

// fakeRecorder collects events and errors in memory.
type fakeRecorder struct {
	mu     sync.Mutex
	events []*models.ActivityEvent
	errs   []*models.ErrorLog
}

func (f *fakeRecorder) CreateEvent(e *models.ActivityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeRecorder) CreateErrorLog(e *models.ErrorLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, e)
	return nil
}

func (f *fakeRecorder) eventKinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]string, len(f.events))
	for i, e := range f.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func (f *fakeRecorder) errCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errs)
}

// syncController wraps fakeController with a mutex so the test can inspect
// it while the loop runs.
type syncController struct {
	mu sync.Mutex
	fakeController
}

func (s *syncController) State() (player.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fakeController.State()
}

func (s *syncController) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fakeController.Pause()
}

func (s *syncController) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fakeController.Resume()
}

func (s *syncController) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pauseCalls, s.resumeCalls
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Monitor.StartupDelay = 0
	cfg.Monitor.PlayingInterval = 2 * time.Millisecond
	cfg.Monitor.IdleInterval = 2 * time.Millisecond
	cfg.Monitor.DebounceTicks = 2
	return cfg
}

func testStore(t *testing.T) *ignore.Store {
	t.Helper()
	store, err := ignore.NewStore(filepath.Join(t.TempDir(), "ignore_list.json"))
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	return store
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func TestServicePausesAndResumes(t *testing.T) {
	smp := &fakeSampler{script: []audio.Snapshot{
		{"Zoom"}, {"Zoom"}, {"Zoom"}, // other audio for a few ticks
		{}, // then silence for good
	}}
	ctl := &syncController{}
	ctl.name = "Spotify"
	ctl.state = player.StatePlaying
	rec := &fakeRecorder{}

	svc := NewService(testConfig(t), rec, smp, ctl, testStore(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	waitFor(t, func() bool {
		_, resumes := ctl.counts()
		return resumes >= 1
	}, "monitor never resumed the player")

	pauses, resumes := ctl.counts()
	if pauses != 1 {
		t.Errorf("pauseCalls = %d, want 1", pauses)
	}
	if resumes != 1 {
		t.Errorf("resumeCalls = %d, want 1", resumes)
	}

	svc.Stop()
	if err := <-done; err != nil {
		t.Errorf("Start() returned error after Stop: %v", err)
	}

	kinds := rec.eventKinds()
	var sawPause, sawResume bool
	for _, k := range kinds {
		switch k {
		case models.EventPause:
			sawPause = true
		case models.EventResume:
			sawResume = true
		}
	}
	if !sawPause || !sawResume {
		t.Errorf("recorded kinds = %v, want pause and resume events", kinds)
	}
	if kinds[0] != models.EventMonitor || kinds[len(kinds)-1] != models.EventMonitor {
		t.Errorf("lifecycle events missing, kinds = %v", kinds)
	}
}

func TestServiceIgnoresOwnPlayer(t *testing.T) {
	// Only the controlled player itself is audible: never a pause.
	smp := &fakeSampler{script: []audio.Snapshot{{"Spotify"}}}
	ctl := &syncController{}
	ctl.name = "Spotify"
	ctl.state = player.StatePlaying
	rec := &fakeRecorder{}

	svc := NewService(testConfig(t), rec, smp, ctl, testStore(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	waitFor(t, func() bool {
		smp.mu.Lock()
		defer smp.mu.Unlock()
		return smp.calls >= 10
	}, "monitor never ticked")

	svc.Stop()
	<-done

	if pauses, _ := ctl.counts(); pauses != 0 {
		t.Errorf("pauseCalls = %d, want 0 when only our player is audible", pauses)
	}
}

func TestServiceSamplingFailureIsFailSafe(t *testing.T) {
	smp := &fakeSampler{err: errors.New("audio subsystem permission denied")}
	ctl := &syncController{}
	ctl.name = "Spotify"
	ctl.state = player.StatePlaying
	rec := &fakeRecorder{}

	svc := NewService(testConfig(t), rec, smp, ctl, testStore(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	waitFor(t, func() bool {
		smp.mu.Lock()
		defer smp.mu.Unlock()
		return smp.calls >= 10
	}, "monitor never ticked")

	svc.Stop()
	<-done

	if pauses, _ := ctl.counts(); pauses != 0 {
		t.Errorf("pauseCalls = %d, want 0 when sampling fails", pauses)
	}
	// Persistent failure is reported once, not per tick.
	if got := rec.errCount(); got != 1 {
		t.Errorf("error logs = %d, want exactly 1 for a persistent failure", got)
	}
}

func TestTickReturnsResultingPlayerState(t *testing.T) {
	// A tick that pauses must report the paused state so the scheduler
	// switches to the long idle interval right away, and vice versa after a
	// resume. The original delays flip immediately after each command.
	smp := &fakeSampler{script: []audio.Snapshot{{"Zoom"}, {}, {}}}
	ctl := &syncController{}
	ctl.name = "Spotify"
	ctl.state = player.StatePlaying
	rec := &fakeRecorder{}

	cfg := testConfig(t)
	cfg.Monitor.DebounceTicks = 1
	cfg.Monitor.PlayingInterval = 2 * time.Millisecond
	cfg.Monitor.IdleInterval = 5 * time.Millisecond

	svc := NewService(cfg, rec, smp, ctl, testStore(t))

	ps := svc.tick()
	if pauses, _ := ctl.counts(); pauses != 1 {
		t.Fatalf("pauseCalls = %d, want 1", pauses)
	}
	if ps != player.StatePaused {
		t.Errorf("tick() after pause = %v, want StatePaused", ps)
	}
	if d := svc.scheduler.Next(ps); d != cfg.Monitor.IdleInterval {
		t.Errorf("next delay after pause = %v, want idle interval %v", d, cfg.Monitor.IdleInterval)
	}

	ps = svc.tick()
	if _, resumes := ctl.counts(); resumes != 1 {
		t.Fatalf("resumeCalls = %d, want 1", resumes)
	}
	if ps != player.StatePlaying {
		t.Errorf("tick() after resume = %v, want StatePlaying", ps)
	}
	if d := svc.scheduler.Next(ps); d != cfg.Monitor.PlayingInterval {
		t.Errorf("next delay after resume = %v, want playing interval %v", d, cfg.Monitor.PlayingInterval)
	}

	// No command: the queried state passes through untouched.
	if ps = svc.tick(); ps != player.StatePlaying {
		t.Errorf("tick() without command = %v, want StatePlaying", ps)
	}
}

func TestServiceStatusReadsDuringLoop(t *testing.T) {
	// The web handler polls Phase/PausedByUs/IsRunning from its own
	// goroutine; under -race this must stay clean while the loop flickers.
	smp := &fakeSampler{script: []audio.Snapshot{
		{"Zoom"}, {}, {}, {"Zoom"}, {}, {}, {"Zoom"}, {}, {},
	}}
	ctl := &syncController{}
	ctl.name = "Spotify"
	ctl.state = player.StatePlaying
	rec := &fakeRecorder{}

	svc := NewService(testConfig(t), rec, smp, ctl, testStore(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			_ = svc.Phase()
			_ = svc.PausedByUs()
			_ = svc.IsRunning()
		}
	}()

	waitFor(t, func() bool {
		_, resumes := ctl.counts()
		return resumes >= 2
	}, "monitor never cycled pause/resume")

	svc.Stop()
	if err := <-done; err != nil {
		t.Errorf("Start() returned error after Stop: %v", err)
	}
	cancel()
	<-pollDone

	if svc.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	smp := &fakeSampler{script: []audio.Snapshot{{}}}
	ctl := &syncController{}
	ctl.name = "Spotify"
	ctl.state = player.StatePaused
	rec := &fakeRecorder{}

	svc := NewService(testConfig(t), rec, smp, ctl, testStore(t))

	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()

	waitFor(t, func() bool {
		smp.mu.Lock()
		defer smp.mu.Unlock()
		return smp.calls >= 1
	}, "monitor never ticked")

	svc.Stop()
	svc.Stop() // must not panic on the already-closed stop channel

	if err := <-done; err != nil {
		t.Errorf("Start() returned error after Stop: %v", err)
	}
}

func TestServiceStopInterruptsSleep(t *testing.T) {
	smp := &fakeSampler{script: []audio.Snapshot{{}}}
	ctl := &syncController{}
	ctl.name = "Spotify"
	ctl.state = player.StatePaused
	rec := &fakeRecorder{}

	cfg := testConfig(t)
	cfg.Monitor.IdleInterval = 10 * time.Second // would block without cancellation

	svc := NewService(cfg, rec, smp, ctl, testStore(t))

	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()

	waitFor(t, func() bool {
		smp.mu.Lock()
		defer smp.mu.Unlock()
		return smp.calls >= 1
	}, "monitor never ticked")

	start := time.Now()
	svc.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error after Stop: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Stop did not interrupt the inter-tick sleep")
	}

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("shutdown took %v, want prompt interruption", elapsed)
	}
}
