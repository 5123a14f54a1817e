package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/sakurane/tsumugi/backend/internal/model/chat"
	"github.com/sakurane/tsumugi/backend/internal/model/personality"
	chatservice "github.com/sakurane/tsumugi/backend/internal/service/chat"
	"github.com/sakurane/tsumugi/backend/internal/service/orchestrator"
	"github.com/sakurane/tsumugi/backend/pkg/utils"
)

// Handler exposes session lifecycle, message submission, settings, and
// transcript export over HTTP.
type Handler struct {
	chatSvc *chatservice.Service
	orch    *orchestrator.Service
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service, orch *orchestrator.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		orch:    orch,
	}
}

// RegisterRoutes registers session and message routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}/transcript", h.handleTranscript)
	r.Post("/session/{sessionID}/messages", h.handleSubmitMessage)
	r.Put("/session/{sessionID}/settings", h.handleUpdateSettings)
	r.Get("/session/{sessionID}/export", h.handleExport)
	r.Get("/personalities", h.handlePersonalities)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	turns, err := h.chatSvc.LoadTranscript(r.Context(), session.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"session": session,
		"turns":   turns,
	})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	turns, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

func (h *Handler) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.orch.Submit(r.Context(), sessionID, payload.Text)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrBlankInput):
			utils.RespondError(w, http.StatusBadRequest, "message text is required")
		case errors.Is(err, orchestrator.ErrBusy):
			utils.RespondError(w, http.StatusConflict, "a reply is already being generated")
		case errors.Is(err, chatservice.ErrSessionNotFound):
			utils.RespondError(w, http.StatusNotFound, "session not found")
		default:
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var settings chatmodel.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validateSettings(settings); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.chatSvc.UpdateSettings(r.Context(), sessionID, settings)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	filename, body, err := h.chatSvc.Export(r.Context(), sessionID, time.Now())
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// handlePersonalities returns the preset catalog the settings UI renders.
func (h *Handler) handlePersonalities(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"personalities": personality.Presets(),
		"voices":        personality.Voices(),
		"tiers":         []chatmodel.PerformanceTier{chatmodel.TierLite, chatmodel.TierDefault, chatmodel.TierPro},
	})
}

func validateSettings(settings chatmodel.Settings) error {
	switch settings.Tier {
	case chatmodel.TierLite, chatmodel.TierDefault, chatmodel.TierPro:
	default:
		return errors.New("unknown performance tier")
	}
	if settings.Personality == "" {
		return errors.New("personality is required")
	}
	if settings.VoiceName == "" {
		return errors.New("voiceName is required")
	}
	return nil
}
