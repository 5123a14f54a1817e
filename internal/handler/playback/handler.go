package playback

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	playbackservice "github.com/sakurane/tsumugi/backend/internal/service/playback"
	"github.com/sakurane/tsumugi/backend/pkg/utils"
)

// Handler exposes the playback bridge over HTTP.
type Handler struct {
	bridge *playbackservice.Bridge
}

// New creates the playback handler.
func New(bridge *playbackservice.Bridge) *Handler {
	return &Handler{bridge: bridge}
}

// RegisterRoutes registers playback routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/playback/connect", h.handleConnect)
	r.Post("/playback/disconnect", h.handleDisconnect)
	r.Post("/playback/toggle", h.handleToggle)
	r.Post("/playback/next", h.handleNext)
	r.Post("/playback/previous", h.handlePrevious)
	r.Get("/playback/state", h.handleState)
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.AccessToken == "" {
		utils.RespondError(w, http.StatusBadRequest, "accessToken is required")
		return
	}

	if err := h.bridge.Connect(r.Context(), payload.AccessToken); err != nil {
		kind := playbackservice.Categorize(err)
		log.Printf("[playback] connect failed kind=%s: %v", kind, err)
		utils.RespondJSON(w, http.StatusBadGateway, map[string]string{
			"error": "connect failed",
			"kind":  string(kind),
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]bool{"connected": true})
}

func (h *Handler) handleDisconnect(w http.ResponseWriter, _ *http.Request) {
	h.bridge.Disconnect()
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"connected": false})
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	h.control(w, h.bridge.TogglePlay(r.Context()))
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	h.control(w, h.bridge.Next(r.Context()))
}

func (h *Handler) handlePrevious(w http.ResponseWriter, r *http.Request) {
	h.control(w, h.bridge.Previous(r.Context()))
}

func (h *Handler) control(w http.ResponseWriter, err error) {
	if err != nil {
		if errors.Is(err, playbackservice.ErrNotConnected) {
			utils.RespondError(w, http.StatusConflict, "playback session not connected")
			return
		}
		kind := playbackservice.Categorize(err)
		utils.RespondJSON(w, http.StatusBadGateway, map[string]string{
			"error": "playback control failed",
			"kind":  string(kind),
		})
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.bridge.State(r.Context())
	if err != nil {
		if errors.Is(err, playbackservice.ErrNotConnected) {
			utils.RespondError(w, http.StatusConflict, "playback session not connected")
			return
		}
		utils.RespondError(w, http.StatusBadGateway, "state unavailable")
		return
	}
	utils.RespondJSON(w, http.StatusOK, snapshot)
}
