package reporter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/autopause/autopause/internal/config"
	"github.com/autopause/autopause/internal/database"
	"github.com/autopause/autopause/internal/models"
	"github.com/autopause/autopause/pkg/utils"
)

const defaultLimit = 25

// Reporter formats the recent activity log for humans and machines.
type Reporter struct {
	config *config.Config
	repo   *database.Repository
}

func New(cfg *config.Config, repo *database.Repository) *Reporter {
	return &Reporter{config: cfg, repo: repo}
}

// Recent returns the most recent activity events, newest first.
func (r *Reporter) Recent(limit int) ([]*models.ActivityEvent, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return r.repo.GetRecent(limit)
}

// FormatText renders events as an aligned table, newest first.
func (r *Reporter) FormatText(events []*models.ActivityEvent) string {
	if len(events) == 0 {
		return "No activity recorded yet\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-20s  %-10s  %-8s  %-8s  %s\n",
		"TIMESTAMP", "KIND", "PLAYER", "AGE", "DETAIL")

	now := time.Now()
	for _, e := range events {
		age := utils.FormatRoundedUnit(int64(now.Sub(e.Timestamp).Seconds()))
		detail := e.Detail
		if e.Sources != "" {
			detail = fmt.Sprintf("%s [%s]", detail, e.Sources)
		}
		fmt.Fprintf(&b, "%-20s  %-10s  %-8s  %-8s  %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Kind, e.PlayerState, age, detail)
	}

	return b.String()
}

// FormatJSON renders events as indented JSON.
func (r *Reporter) FormatJSON(events []*models.ActivityEvent) (string, error) {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode events: %w", err)
	}
	return string(data), nil
}
