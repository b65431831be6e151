package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/autopause/autopause/internal/config"
	"github.com/autopause/autopause/internal/database"
	"github.com/autopause/autopause/internal/ignore"
	"github.com/autopause/autopause/internal/monitor"
)

// Handler serves the JSON API consumed by the external menu-bar shell:
// recent activity, monitor status, and the ignore list editor.
type Handler struct {
	config  *config.Config
	repo    *database.Repository
	ignore  *ignore.Store
	monitor *monitor.Service
}

func NewHandler(cfg *config.Config, repo *database.Repository, store *ignore.Store, svc *monitor.Service) *Handler {
	return &Handler{
		config:  cfg,
		repo:    repo,
		ignore:  store,
		monitor: svc,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/events", h.handleEvents)
	mux.HandleFunc("/api/events/latest", h.handleLatestEvent)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/ignore", h.handleIgnore)

	mux.HandleFunc("/health", h.handleHealth)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// ?since= returns everything from a point in time, oldest first, so the
	// shell can poll incrementally instead of re-fetching the whole log.
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			http.Error(w, "Invalid since parameter, expected RFC3339 timestamp", http.StatusBadRequest)
			return
		}

		events, err := h.repo.GetEventsSince(since)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to fetch events: %v", err), http.StatusInternalServerError)
			return
		}

		respondJSON(w, events)
		return
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	events, err := h.repo.GetRecent(limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch events: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, events)
}

func (h *Handler) handleLatestEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	event, err := h.repo.GetLatest()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch latest event: %v", err), http.StatusInternalServerError)
		return
	}

	if event == nil {
		http.Error(w, "No events found", http.StatusNotFound)
		return
	}

	respondJSON(w, event)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]interface{}{
		"player":           h.config.Player.Name,
		"playing_interval": h.config.Monitor.PlayingInterval.String(),
		"idle_interval":    h.config.Monitor.IdleInterval.String(),
		"debounce_ticks":   h.config.Monitor.DebounceTicks,
		"match_mode":       h.config.Monitor.MatchMode,
		"ignored":          h.ignore.Patterns(),
	}

	if h.monitor != nil {
		status["running"] = h.monitor.IsRunning()
		status["phase"] = h.monitor.Phase().String()
		status["paused_by_us"] = h.monitor.PausedByUs()
	}

	respondJSON(w, status)
}

func (h *Handler) handleIgnore(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondJSON(w, h.ignore.Patterns())

	case http.MethodPost:
		var body struct {
			Pattern string `json:"pattern"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := h.ignore.Add(body.Pattern); err != nil {
			http.Error(w, fmt.Sprintf("Failed to add pattern: %v", err), http.StatusBadRequest)
			return
		}
		respondJSON(w, h.ignore.Patterns())

	case http.MethodDelete:
		pattern := r.URL.Query().Get("pattern")
		if pattern == "" {
			http.Error(w, "Missing pattern parameter", http.StatusBadRequest)
			return
		}
		if err := h.ignore.Remove(pattern); err != nil {
			http.Error(w, fmt.Sprintf("Failed to remove pattern: %v", err), http.StatusNotFound)
			return
		}
		respondJSON(w, h.ignore.Patterns())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}
