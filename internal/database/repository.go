package database

import (
	"time"

	"github.com/autopause/autopause/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all database operations for the activity log
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateEvent appends an activity event to the log
func (r *Repository) CreateEvent(event *models.ActivityEvent) error {
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert activity event")
	}
	return nil
}

// GetEventsSince retrieves all activity events since a given time
func (r *Repository) GetEventsSince(since time.Time) ([]*models.ActivityEvent, error) {
	var events []*models.ActivityEvent
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query activity events")
	}

	return events, nil
}

// GetRecent retrieves the most recent activity events, newest first
func (r *Repository) GetRecent(limit int) ([]*models.ActivityEvent, error) {
	var events []*models.ActivityEvent
	result := r.db.Order("timestamp DESC").Limit(limit).Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query recent events")
	}

	return events, nil
}

// GetLatest retrieves the most recent activity event
func (r *Repository) GetLatest() (*models.ActivityEvent, error) {
	var event models.ActivityEvent
	result := r.db.Order("timestamp DESC").First(&event)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest event")
	}
	return &event, nil
}

// DeleteOldEvents deletes events older than a specified date (soft delete)
func (r *Repository) DeleteOldEvents(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.ActivityEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old events")
	}
	return result.RowsAffected, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// Clear removes all activity events from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM activity_events")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear activity events")
	}
	return nil
}
