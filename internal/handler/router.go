package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/sakurane/tsumugi/backend/internal/handler/chat"
	gamehandler "github.com/sakurane/tsumugi/backend/internal/handler/game"
	mediahandler "github.com/sakurane/tsumugi/backend/internal/handler/media"
	playbackhandler "github.com/sakurane/tsumugi/backend/internal/handler/playback"
	voicehandler "github.com/sakurane/tsumugi/backend/internal/handler/voice"
	middlewarePkg "github.com/sakurane/tsumugi/backend/internal/middleware"
	aiservice "github.com/sakurane/tsumugi/backend/internal/service/ai"
	chatservice "github.com/sakurane/tsumugi/backend/internal/service/chat"
	gameservice "github.com/sakurane/tsumugi/backend/internal/service/game"
	"github.com/sakurane/tsumugi/backend/internal/service/orchestrator"
	playbackservice "github.com/sakurane/tsumugi/backend/internal/service/playback"
	"github.com/sakurane/tsumugi/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. aiSvc may be nil when no API
// key is configured; AI-backed routes then answer 503.
func NewRouter(chatSvc *chatservice.Service, orch *orchestrator.Service, gameSvc *gameservice.Service, aiSvc *aiservice.Service, bridge *playbackservice.Bridge) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chathandler.New(chatSvc, orch)
	gameHandler := gamehandler.New(gameSvc)
	playbackHandler := playbackhandler.New(bridge)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		gameHandler.RegisterRoutes(api)
		playbackHandler.RegisterRoutes(api)

		if aiSvc != nil {
			mediahandler.New(aiSvc).RegisterRoutes(api)
			voicehandler.New(aiSvc, chatSvc).RegisterRoutes(api)
		} else {
			api.HandleFunc("/media/*", handleAIUnavailable)
			api.HandleFunc("/voice/*", handleAIUnavailable)
		}
	})

	return r
}

func handleAIUnavailable(w http.ResponseWriter, _ *http.Request) {
	utils.RespondError(w, http.StatusServiceUnavailable, "ai features unavailable")
}
