package config

import (
	"fmt"
	"os"
	"time"
)

// Match modes for the ignore list filter.
const (
	MatchSubstring = "substring"
	MatchExact     = "exact"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Monitor configuration
	Monitor MonitorConfig `toml:"monitor"`

	// Player configuration
	Player PlayerConfig `toml:"player"`

	// Daemon configuration
	Daemon DaemonConfig `toml:"daemon"`

	// Web server configuration
	Web WebConfig `toml:"web"`
}

// DatabaseConfig holds activity log storage configuration
type DatabaseConfig struct {
	Path          string `toml:"path"`           // Path to SQLite database file
	RetentionDays int    `toml:"retention_days"` // Prune events older than this on startup; 0 keeps everything
}

// MonitorConfig holds polling and debounce behavior configuration
type MonitorConfig struct {
	StartupDelay    time.Duration `toml:"startup_delay"`    // One-shot delay before the first tick
	PlayingInterval time.Duration `toml:"playing_interval"` // Poll interval while the player is playing
	IdleInterval    time.Duration `toml:"idle_interval"`    // Poll interval while the player is paused/unknown
	MinInterval     time.Duration `toml:"min_interval"`     // Minimum allowed poll interval
	MaxInterval     time.Duration `toml:"max_interval"`     // Maximum allowed poll interval
	DebounceTicks   int           `toml:"debounce_ticks"`   // Consecutive idle ticks before resuming
	MatchMode       string        `toml:"match_mode"`       // "substring" or "exact" ignore matching
	SamplerTimeout  time.Duration `toml:"sampler_timeout"`  // Bound on a single OS audio query
	IgnoreListPath  string        `toml:"ignore_list_path"` // Path to the ignore list file
}

// PlayerConfig identifies the controlled media player
type PlayerConfig struct {
	Name           string        `toml:"name"`            // Application name, e.g. "Spotify"
	CommandTimeout time.Duration `toml:"command_timeout"` // Bound on a single automation call
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `toml:"pid_file"` // Path to PID file for daemon management
	LogFile string `toml:"log_file"` // Path to the daemon log file
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string `toml:"host"` // Host to bind web server to
	Port int    `toml:"port"` // Port for web server
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:          "", // Empty means use default ~/.config/autopause/autopause.db
			RetentionDays: 30,
		},
		Monitor: MonitorConfig{
			StartupDelay:    2 * time.Second, // Let the audio subsystem settle
			PlayingInterval: 2 * time.Second, // Tight while music is audible
			IdleInterval:    3 * time.Second, // Relaxed while nothing to react to
			MinInterval:     1 * time.Second,
			MaxInterval:     300 * time.Second,
			DebounceTicks:   3,
			MatchMode:       MatchSubstring,
			SamplerTimeout:  5 * time.Second,
			IgnoreListPath:  "", // Empty means use default ~/.config/autopause/ignore_list.json
		},
		Player: PlayerConfig{
			Name:           "Spotify",
			CommandTimeout: 5 * time.Second,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/autopause-%d.pid", os.Getuid()),
			LogFile: "/tmp/autopause.log",
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 8990,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Monitor.PlayingInterval < c.Monitor.MinInterval {
		return fmt.Errorf("playing interval (%v) cannot be less than minimum (%v)",
			c.Monitor.PlayingInterval, c.Monitor.MinInterval)
	}

	if c.Monitor.IdleInterval < c.Monitor.MinInterval {
		return fmt.Errorf("idle interval (%v) cannot be less than minimum (%v)",
			c.Monitor.IdleInterval, c.Monitor.MinInterval)
	}

	if c.Monitor.PlayingInterval > c.Monitor.MaxInterval {
		return fmt.Errorf("playing interval (%v) cannot be greater than maximum (%v)",
			c.Monitor.PlayingInterval, c.Monitor.MaxInterval)
	}

	if c.Monitor.IdleInterval > c.Monitor.MaxInterval {
		return fmt.Errorf("idle interval (%v) cannot be greater than maximum (%v)",
			c.Monitor.IdleInterval, c.Monitor.MaxInterval)
	}

	if c.Monitor.StartupDelay < 0 {
		return fmt.Errorf("startup delay cannot be negative")
	}

	if c.Database.RetentionDays < 0 {
		return fmt.Errorf("retention days cannot be negative, got %d", c.Database.RetentionDays)
	}

	if c.Monitor.DebounceTicks < 1 {
		return fmt.Errorf("debounce ticks must be at least 1, got %d", c.Monitor.DebounceTicks)
	}

	if c.Monitor.MatchMode != MatchSubstring && c.Monitor.MatchMode != MatchExact {
		return fmt.Errorf("match mode must be %q or %q, got %q",
			MatchSubstring, MatchExact, c.Monitor.MatchMode)
	}

	if c.Player.Name == "" {
		return fmt.Errorf("player name cannot be empty")
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// SetDebounceTicks sets the resume debounce threshold with validation
func (c *Config) SetDebounceTicks(ticks int) error {
	if ticks < 1 {
		return fmt.Errorf("debounce ticks must be at least 1")
	}
	c.Monitor.DebounceTicks = ticks
	return nil
}

// SetPlayingInterval sets the playing-state poll interval with validation
func (c *Config) SetPlayingInterval(interval time.Duration) error {
	if interval < c.Monitor.MinInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Monitor.MinInterval)
	}
	if interval > c.Monitor.MaxInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Monitor.MaxInterval)
	}
	c.Monitor.PlayingInterval = interval
	return nil
}

// SetIdleInterval sets the idle-state poll interval with validation
func (c *Config) SetIdleInterval(interval time.Duration) error {
	if interval < c.Monitor.MinInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Monitor.MinInterval)
	}
	if interval > c.Monitor.MaxInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Monitor.MaxInterval)
	}
	c.Monitor.IdleInterval = interval
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
    Retention Days: %d
  Monitor:
    Startup Delay: %v
    Playing Interval: %v
    Idle Interval: %v
    Debounce Ticks: %d
    Match Mode: %s
    Sampler Timeout: %v
    Ignore List: %s
  Player:
    Name: %s
    Command Timeout: %v
  Daemon:
    PID File: %s
    Log File: %s
  Web:
    Host: %s
    Port: %d`,
		c.Database.Path,
		c.Database.RetentionDays,
		c.Monitor.StartupDelay,
		c.Monitor.PlayingInterval,
		c.Monitor.IdleInterval,
		c.Monitor.DebounceTicks,
		c.Monitor.MatchMode,
		c.Monitor.SamplerTimeout,
		c.Monitor.IgnoreListPath,
		c.Player.Name,
		c.Player.CommandTimeout,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Web.Host,
		c.Web.Port,
	)
}
