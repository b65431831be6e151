package coreaudio

import (
	"context"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/autopause/autopause/pkg/audio"
)

// Sampler detects audio-producing applications on macOS by parsing the
// power-management assertion table. Every process holding an "audio-out"
// resource assertion shows up there with its PID.
type Sampler struct {
	timeout time.Duration
}

var pidPattern = regexp.MustCompile(`Created for PID: (\d+)`)

func NewSampler(timeout time.Duration) *Sampler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sampler{timeout: timeout}
}

func (s *Sampler) Sample() (audio.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "pmset", "-g", "assertions").Output()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query power assertions")
	}

	pids := parseAudioPIDs(string(out))

	var snap audio.Snapshot
	for _, pid := range pids {
		name, err := s.processName(ctx, pid)
		if err != nil {
			// Process may have exited between the two queries.
			continue
		}
		snap = append(snap, name)
	}

	return snap, nil
}

func (s *Sampler) IsAvailable() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath("pmset")
	return err == nil
}

func (s *Sampler) Platform() string {
	return "coreaudio"
}

func (s *Sampler) Close() error {
	return nil
}

func (s *Sampler) processName(ctx context.Context, pid string) (string, error) {
	out, err := exec.CommandContext(ctx, "ps", "-p", pid, "-o", "comm=").Output()
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve PID %s", pid)
	}

	comm := strings.TrimSpace(string(out))
	if comm == "" {
		return "", errors.Errorf("no process name for PID %s", pid)
	}

	// comm is a full executable path; the application name is its base.
	if idx := strings.LastIndex(comm, "/"); idx != -1 {
		comm = comm[idx+1:]
	}

	return comm, nil
}

// parseAudioPIDs extracts the PIDs of assertions holding an audio-out
// resource. The PID line precedes the "Resources:" line in pmset output.
func parseAudioPIDs(output string) []string {
	lines := strings.Split(output, "\n")

	var pids []string
	for i, line := range lines {
		if !strings.Contains(line, "Resources: audio-out") || i == 0 {
			continue
		}

		match := pidPattern.FindStringSubmatch(lines[i-1])
		if match != nil {
			pids = append(pids, match[1])
		}
	}

	return pids
}
