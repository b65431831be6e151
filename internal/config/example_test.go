package config_test

import (
	"fmt"
	"time"

	"github.com/autopause/autopause/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Player:", cfg.Player.Name)
	fmt.Println("Playing Interval:", cfg.Monitor.PlayingInterval)
	fmt.Println("Idle Interval:", cfg.Monitor.IdleInterval)
	fmt.Println("Debounce Ticks:", cfg.Monitor.DebounceTicks)
	// Output:
	// Player: Spotify
	// Playing Interval: 2s
	// Idle Interval: 3s
	// Debounce Ticks: 3
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	// Output:
	// Configuration is valid
}

// Example of setting the playing-state poll interval with validation
func ExampleConfig_SetPlayingInterval() {
	cfg := config.Default()

	// Valid interval
	if err := cfg.SetPlayingInterval(5 * time.Second); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Playing interval set to:", cfg.Monitor.PlayingInterval)
	}

	// Invalid interval (too low)
	if err := cfg.SetPlayingInterval(500 * time.Millisecond); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Playing interval set to: 5s
	// Error: poll interval cannot be less than 1s
}

// Example of setting the debounce threshold with validation
func ExampleConfig_SetDebounceTicks() {
	cfg := config.Default()

	if err := cfg.SetDebounceTicks(5); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Debounce ticks set to:", cfg.Monitor.DebounceTicks)
	}

	if err := cfg.SetDebounceTicks(0); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Debounce ticks set to: 5
	// Error: debounce ticks must be at least 1
}
