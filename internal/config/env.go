package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables.
// Environment variables override file and default values.
func LoadFromEnv(cfg *Config) {
	// Database configuration
	if dbPath := os.Getenv("AUTOPAUSE_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if v := os.Getenv("AUTOPAUSE_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days >= 0 {
			cfg.Database.RetentionDays = days
		}
	}

	// Monitor configuration
	if v := os.Getenv("AUTOPAUSE_STARTUP_DELAY"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			cfg.Monitor.StartupDelay = time.Duration(seconds) * time.Second
		}
	}

	if v := os.Getenv("AUTOPAUSE_PLAYING_INTERVAL"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			interval := time.Duration(seconds) * time.Second
			if interval >= cfg.Monitor.MinInterval && interval <= cfg.Monitor.MaxInterval {
				cfg.Monitor.PlayingInterval = interval
			}
		}
	}

	if v := os.Getenv("AUTOPAUSE_IDLE_INTERVAL"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			interval := time.Duration(seconds) * time.Second
			if interval >= cfg.Monitor.MinInterval && interval <= cfg.Monitor.MaxInterval {
				cfg.Monitor.IdleInterval = interval
			}
		}
	}

	if v := os.Getenv("AUTOPAUSE_DEBOUNCE_TICKS"); v != "" {
		if ticks, err := strconv.Atoi(v); err == nil && ticks >= 1 {
			cfg.Monitor.DebounceTicks = ticks
		}
	}

	if v := os.Getenv("AUTOPAUSE_MATCH_MODE"); v != "" {
		if v == MatchSubstring || v == MatchExact {
			cfg.Monitor.MatchMode = v
		}
	}

	if v := os.Getenv("AUTOPAUSE_IGNORE_LIST"); v != "" {
		cfg.Monitor.IgnoreListPath = v
	}

	// Player configuration
	if player := os.Getenv("AUTOPAUSE_PLAYER"); player != "" {
		cfg.Player.Name = player
	}

	// Daemon configuration
	if pidFile := os.Getenv("AUTOPAUSE_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if logFile := os.Getenv("AUTOPAUSE_LOG_FILE"); logFile != "" {
		cfg.Daemon.LogFile = logFile
	}

	// Web configuration
	if webHost := os.Getenv("AUTOPAUSE_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("AUTOPAUSE_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

// New creates a new Config from defaults, the config file, and environment
// overrides, in that order.
func New() *Config {
	cfg := Default()
	if err := LoadFile(cfg, os.Getenv("AUTOPAUSE_CONFIG")); err != nil {
		log.Printf("Ignoring config file: %v", err)
	}
	LoadFromEnv(cfg)
	return cfg
}
