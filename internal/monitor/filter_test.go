package monitor

import (
	"testing"

	"github.com/autopause/autopause/internal/config"
	"github.com/autopause/autopause/pkg/audio"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		snap     audio.Snapshot
		patterns []string
		player   string
		mode     string
		want     []string
	}{
		{
			name:     "ignored app removed, others kept",
			snap:     audio.Snapshot{"Zoom", "Chrome"},
			patterns: []string{"Zoom"},
			player:   "Spotify",
			mode:     config.MatchSubstring,
			want:     []string{"Chrome"},
		},
		{
			name:     "player removed regardless of ignore list",
			snap:     audio.Snapshot{"Spotify", "Chrome"},
			patterns: nil,
			player:   "Spotify",
			mode:     config.MatchSubstring,
			want:     []string{"Chrome"},
		},
		{
			name:     "player removed even in exact mode with helper process",
			snap:     audio.Snapshot{"Spotify Helper"},
			patterns: nil,
			player:   "Spotify",
			mode:     config.MatchExact,
			want:     nil,
		},
		{
			name:     "substring match is case-insensitive",
			snap:     audio.Snapshot{"google chrome", "zoom.us"},
			patterns: []string{"Zoom"},
			player:   "Spotify",
			mode:     config.MatchSubstring,
			want:     []string{"google chrome"},
		},
		{
			name:     "exact mode does not match substrings",
			snap:     audio.Snapshot{"zoom.us"},
			patterns: []string{"Zoom"},
			player:   "Spotify",
			mode:     config.MatchExact,
			want:     []string{"zoom.us"},
		},
		{
			name:     "exact mode matches ignoring case",
			snap:     audio.Snapshot{"zoom"},
			patterns: []string{"Zoom"},
			player:   "Spotify",
			mode:     config.MatchExact,
			want:     nil,
		},
		{
			name:     "empty snapshot stays empty",
			snap:     nil,
			patterns: []string{"Zoom"},
			player:   "Spotify",
			mode:     config.MatchSubstring,
			want:     nil,
		},
		{
			name:     "empty pattern never matches",
			snap:     audio.Snapshot{"Chrome"},
			patterns: []string{""},
			player:   "Spotify",
			mode:     config.MatchSubstring,
			want:     []string{"Chrome"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(tt.snap, tt.patterns, tt.player, tt.mode)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Filter()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if got := Classify(nil); got != SignalIdle {
		t.Errorf("Classify(nil) = %v, want SignalIdle", got)
	}
	if got := Classify(audio.Snapshot{}); got != SignalIdle {
		t.Errorf("Classify(empty) = %v, want SignalIdle", got)
	}
	if got := Classify(audio.Snapshot{"Chrome"}); got != SignalActive {
		t.Errorf("Classify({Chrome}) = %v, want SignalActive", got)
	}
}
