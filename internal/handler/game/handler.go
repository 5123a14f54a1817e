package game

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	gamemodel "github.com/sakurane/tsumugi/backend/internal/model/game"
	gameservice "github.com/sakurane/tsumugi/backend/internal/service/game"
	"github.com/sakurane/tsumugi/backend/pkg/utils"
)

// Handler exposes the tic-tac-toe engine over HTTP.
type Handler struct {
	gameSvc *gameservice.Service
}

// New creates the game handler.
func New(gameSvc *gameservice.Service) *Handler {
	return &Handler{gameSvc: gameSvc}
}

// RegisterRoutes registers game routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/games/{gameID}", h.handleGetGame)
	r.Post("/games/{gameID}/moves", h.handleMove)
}

func (h *Handler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	g, err := h.gameSvc.Get(r.Context(), gameID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "game not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, g)
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var mv gamemodel.Move
	if err := json.NewDecoder(r.Body).Decode(&mv); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.gameSvc.PlayerMove(r.Context(), gameID, mv)
	if err != nil {
		if errors.Is(err, gameservice.ErrGameNotFound) {
			utils.RespondError(w, http.StatusNotFound, "game not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, g)
}
