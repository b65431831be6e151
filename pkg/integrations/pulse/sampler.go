package pulse

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/autopause/autopause/pkg/audio"
)

// Sampler detects audio-producing applications on Linux by listing
// PulseAudio (or PipeWire's pulse shim) sink inputs. Corked inputs hold a
// stream open without playing, so they are skipped.
type Sampler struct {
	timeout time.Duration
}

func NewSampler(timeout time.Duration) *Sampler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sampler{timeout: timeout}
}

func (s *Sampler) Sample() (audio.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "pactl", "list", "sink-inputs").Output()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sink inputs")
	}

	return parseSinkInputs(string(out)), nil
}

func (s *Sampler) IsAvailable() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	_, err := exec.LookPath("pactl")
	return err == nil
}

func (s *Sampler) Platform() string {
	return "pulse"
}

func (s *Sampler) Close() error {
	return nil
}

// parseSinkInputs walks pactl's indented per-input blocks and collects the
// application.name property of every uncorked input.
func parseSinkInputs(output string) audio.Snapshot {
	var snap audio.Snapshot

	corked := false
	name := ""

	flush := func() {
		if name != "" && !corked {
			snap = append(snap, name)
		}
		corked = false
		name = ""
	}

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "Sink Input #") {
			flush()
			continue
		}

		if strings.HasPrefix(trimmed, "Corked:") {
			corked = strings.Contains(trimmed, "yes")
			continue
		}

		if strings.HasPrefix(trimmed, "application.name = ") {
			value := strings.TrimPrefix(trimmed, "application.name = ")
			name = strings.Trim(value, "\"")
		}
	}
	flush()

	return snap
}
