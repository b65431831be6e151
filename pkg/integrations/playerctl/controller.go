package playerctl

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/autopause/autopause/pkg/player"
)

// Controller drives the player on Linux through the MPRIS D-Bus interface
// via playerctl. The player name doubles as the MPRIS player selector.
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
	out, err := c.run("status")
	if err != nil {
		// playerctl exits non-zero when the player is not running.
		if _, ok := err.(*exec.ExitError); ok {
			return player.StateUnknown, nil
		}
		return player.StateUnknown, errors.Wrapf(err, "failed to query %s status", c.name)
	}

	switch strings.TrimSpace(out) {
	case "Playing":
		return player.StatePlaying, nil
	case "Paused", "Stopped":
		return player.StatePaused, nil
	default:
		return player.StateUnknown, nil
	}
}

func (c *Controller) Pause() error {
	if _, err := c.run("pause"); err != nil {
		return errors.Wrapf(err, "failed to pause %s", c.name)
	}
	return nil
}

func (c *Controller) Resume() error {
	if _, err := c.run("play"); err != nil {
		return errors.Wrapf(err, "failed to resume %s", c.name)
	}
	return nil
}

func (c *Controller) IsAvailable() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	_, err := exec.LookPath("playerctl")
	return err == nil
}

func (c *Controller) Close() error {
	return nil
}

func (c *Controller) run(command string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	selector := strings.ToLower(c.name)
	out, err := exec.CommandContext(ctx, "playerctl", "-p", selector, command).Output()
	return string(out), err
}
