package monitor

import (
	"strings"

	"github.com/autopause/autopause/internal/config"
	"github.com/autopause/autopause/pkg/audio"
)

// Filter removes ignored applications from a raw snapshot. The controlled
// player itself is always removed, independent of the user list and of the
// match mode: mistaking our own player for other audio would feed the pause
// back into itself.
func Filter(snap audio.Snapshot, patterns []string, playerName, mode string) audio.Snapshot {
	var filtered audio.Snapshot

	for _, app := range snap {
		if containsFold(app, playerName) {
			continue
		}

		ignored := false
		for _, pattern := range patterns {
			if matches(app, pattern, mode) {
				ignored = true
				break
			}
		}

		if !ignored {
			filtered = append(filtered, app)
		}
	}

	return filtered
}

func matches(app, pattern, mode string) bool {
	if pattern == "" {
		return false
	}
	if mode == config.MatchExact {
		return strings.EqualFold(app, pattern)
	}
	return containsFold(app, pattern)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
