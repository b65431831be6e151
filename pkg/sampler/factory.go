package sampler

import (
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/autopause/autopause/pkg/audio"
	"github.com/autopause/autopause/pkg/integrations/applescript"
	"github.com/autopause/autopause/pkg/integrations/coreaudio"
	"github.com/autopause/autopause/pkg/integrations/playerctl"
	"github.com/autopause/autopause/pkg/integrations/pulse"
	"github.com/autopause/autopause/pkg/player"
)

// New returns the first audio sampler available on this system.
func New(timeout time.Duration) (audio.Sampler, error) {
	candidates := []audio.Sampler{
		coreaudio.NewSampler(timeout),
		pulse.NewSampler(timeout),
	}

	for _, s := range candidates {
		if s.IsAvailable() {
			return s, nil
		}
	}

	return nil, errors.Errorf("no audio sampler available on %s", runtime.GOOS)
}

// NewController returns a player controller for the named application,
// backed by whatever automation interface this system offers.
func NewController(name string, timeout time.Duration) (player.Controller, error) {
	candidates := []player.Controller{
		applescript.NewController(name, timeout),
		playerctl.NewController(name, timeout),
	}

	for _, c := range candidates {
		if c.IsAvailable() {
			return c, nil
		}
	}

	return nil, errors.Errorf("no player automation available on %s", runtime.GOOS)
}

// DetectPlatform reports which audio backend this system is expected to use.
func DetectPlatform() string {
	switch runtime.GOOS {
	case "darwin":
		return "coreaudio"
	case "linux":
		return "pulse"
	default:
		return "unknown"
	}
}
