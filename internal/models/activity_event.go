package models

import (
	"time"

	"gorm.io/gorm"
)

// Event kinds recorded in the activity log.
const (
	EventPause      = "pause"      // we paused the player
	EventResume     = "resume"     // we resumed the player
	EventTransition = "transition" // phase change with no command issued
	EventMonitor    = "monitor"    // monitor lifecycle (started/stopped)
)

type ActivityEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Timestamp   time.Time      `gorm:"not null;index" json:"timestamp"`
	Kind        string         `gorm:"not null;index" json:"kind"`
	PlayerState string         `gorm:"not null" json:"player_state"`
	Sources     string         `gorm:"not null" json:"sources"` // comma-separated app names that triggered the event
	Detail      string         `gorm:"not null" json:"detail"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
