package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const configFileName = "config.toml"

// fileConfig is the on-disk schema. Intervals are expressed in seconds so
// the file stays editable by hand.
type fileConfig struct {
	Database struct {
		Path          string `toml:"path"`
		RetentionDays *int   `toml:"retention_days"`
	} `toml:"database"`
	Monitor struct {
		StartupDelaySec    *int    `toml:"startup_delay_seconds"`
		PlayingIntervalSec *int    `toml:"playing_interval_seconds"`
		IdleIntervalSec    *int    `toml:"idle_interval_seconds"`
		DebounceTicks      *int    `toml:"debounce_ticks"`
		MatchMode          *string `toml:"match_mode"`
		SamplerTimeoutSec  *int    `toml:"sampler_timeout_seconds"`
		IgnoreListPath     *string `toml:"ignore_list_path"`
	} `toml:"monitor"`
	Player struct {
		Name              *string `toml:"name"`
		CommandTimeoutSec *int    `toml:"command_timeout_seconds"`
	} `toml:"player"`
	Daemon struct {
		PIDFile *string `toml:"pid_file"`
		LogFile *string `toml:"log_file"`
	} `toml:"daemon"`
	Web struct {
		Host *string `toml:"host"`
		Port *int    `toml:"port"`
	} `toml:"web"`
}

// DefaultConfigPath returns ~/.config/autopause/config.toml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "autopause", configFileName), nil
}

// LoadFile overlays values from a TOML config file onto cfg. A missing file
// is not an error; the defaults stay in effect.
func LoadFile(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Database.Path != "" {
		cfg.Database.Path = fc.Database.Path
	}
	if fc.Database.RetentionDays != nil {
		cfg.Database.RetentionDays = *fc.Database.RetentionDays
	}

	if fc.Monitor.StartupDelaySec != nil {
		cfg.Monitor.StartupDelay = time.Duration(*fc.Monitor.StartupDelaySec) * time.Second
	}
	if fc.Monitor.PlayingIntervalSec != nil {
		cfg.Monitor.PlayingInterval = time.Duration(*fc.Monitor.PlayingIntervalSec) * time.Second
	}
	if fc.Monitor.IdleIntervalSec != nil {
		cfg.Monitor.IdleInterval = time.Duration(*fc.Monitor.IdleIntervalSec) * time.Second
	}
	if fc.Monitor.DebounceTicks != nil {
		cfg.Monitor.DebounceTicks = *fc.Monitor.DebounceTicks
	}
	if fc.Monitor.MatchMode != nil {
		cfg.Monitor.MatchMode = *fc.Monitor.MatchMode
	}
	if fc.Monitor.SamplerTimeoutSec != nil {
		cfg.Monitor.SamplerTimeout = time.Duration(*fc.Monitor.SamplerTimeoutSec) * time.Second
	}
	if fc.Monitor.IgnoreListPath != nil {
		cfg.Monitor.IgnoreListPath = *fc.Monitor.IgnoreListPath
	}

	if fc.Player.Name != nil {
		cfg.Player.Name = *fc.Player.Name
	}
	if fc.Player.CommandTimeoutSec != nil {
		cfg.Player.CommandTimeout = time.Duration(*fc.Player.CommandTimeoutSec) * time.Second
	}

	if fc.Daemon.PIDFile != nil {
		cfg.Daemon.PIDFile = *fc.Daemon.PIDFile
	}
	if fc.Daemon.LogFile != nil {
		cfg.Daemon.LogFile = *fc.Daemon.LogFile
	}

	if fc.Web.Host != nil {
		cfg.Web.Host = *fc.Web.Host
	}
	if fc.Web.Port != nil {
		cfg.Web.Port = *fc.Web.Port
	}

	return nil
}
