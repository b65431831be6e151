package applescript

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/autopause/autopause/pkg/player"
)

// Controller drives the player on macOS through AppleScript automation.
// Commands are only sent while the player process is running; scripting a
// stopped application would launch it.
type Controller struct {
	name    string
	timeout time.Duration
}

func NewController(name string, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Controller{name: name, timeout: timeout}
}

func (c *Controller) Name() string {
	return c.name
}

func (c *Controller) State() (player.State, error) {
	running, err := c.isRunning()
	if err != nil {
		return player.StateUnknown, err
	}
	if !running {
		return player.StateUnknown, nil
	}

	out, err := c.run(fmt.Sprintf("tell application %q to player state", c.name))
	if err != nil {
		return player.StateUnknown, errors.Wrapf(err, "failed to query %s player state", c.name)
	}

	if strings.TrimSpace(out) == "playing" {
		return player.StatePlaying, nil
	}
	return player.StatePaused, nil
}

func (c *Controller) Pause() error {
	if _, err := c.run(fmt.Sprintf("tell application %q to pause", c.name)); err != nil {
		return errors.Wrapf(err, "failed to pause %s", c.name)
	}
	return nil
}

func (c *Controller) Resume() error {
	if _, err := c.run(fmt.Sprintf("tell application %q to play", c.name)); err != nil {
		return errors.Wrapf(err, "failed to resume %s", c.name)
	}
	return nil
}

func (c *Controller) IsAvailable() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath("osascript")
	return err == nil
}

func (c *Controller) Close() error {
	return nil
}

func (c *Controller) run(script string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	return string(out), err
}

func (c *Controller) isRunning() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "pgrep", "-x", c.name).Output()
	if err != nil {
		// pgrep exits 1 when no process matches.
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to check whether %s is running", c.name)
	}

	return strings.TrimSpace(string(out)) != "", nil
}
