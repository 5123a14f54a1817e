package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakurane/tsumugi/backend/internal/config"
	"github.com/sakurane/tsumugi/backend/internal/handler"
	"github.com/sakurane/tsumugi/backend/internal/service/ai"
	"github.com/sakurane/tsumugi/backend/internal/service/chat"
	"github.com/sakurane/tsumugi/backend/internal/service/game"
	"github.com/sakurane/tsumugi/backend/internal/service/mood"
	"github.com/sakurane/tsumugi/backend/internal/service/orchestrator"
	"github.com/sakurane/tsumugi/backend/internal/service/playback"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	chatService := chat.NewService()

	// Mood state survives restarts; everything else is session-scoped.
	moodStore, err := mood.OpenSQLiteStore(cfg.Storage.MoodDBPath)
	if err != nil {
		log.Printf("warning: mood store unavailable, moods will not persist: %v", err)
		moodStore = nil
	}
	var store mood.Store
	if moodStore != nil {
		store = moodStore
		defer moodStore.Close()
	}
	moodService := mood.NewService(store)

	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("GEMINI_API_KEY not configured, skipping AI initialization")
	}

	bridge := playback.NewBridge(cfg.Spotify.DeviceName)
	if cfg.Spotify.Enabled() && cfg.Spotify.Autoconnect {
		if err := bridge.Connect(ctx, cfg.Spotify.AccessToken); err != nil {
			log.Printf("warning: spotify autoconnect failed: %v", err)
		} else {
			log.Println("Spotify playback session connected")
		}
	}

	var intel orchestrator.Intelligence = orchestrator.Unavailable{}
	var gameService *game.Service
	if aiService != nil {
		intel = aiService
		gameService = game.NewService(aiService)
	} else {
		gameService = game.NewService(nil)
	}

	orch := orchestrator.NewService(intel, moodService, chatService, gameService, bridge)

	router := handler.NewRouter(chatService, orch, gameService, aiService, bridge)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Tsumugi backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
