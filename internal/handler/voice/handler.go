package voice

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	chatmodel "github.com/sakurane/tsumugi/backend/internal/model/chat"
	"github.com/sakurane/tsumugi/backend/internal/service/ai"
	chatservice "github.com/sakurane/tsumugi/backend/internal/service/chat"
	"github.com/sakurane/tsumugi/backend/internal/service/live"
)

// Handler bridges a browser voice connection to a realtime model session.
// Captured audio frames flow up over the socket; scheduled output audio,
// transcripts, and control events flow back down.
type Handler struct {
	aiSvc    *ai.Service
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader
}

// New creates the voice handler.
func New(aiSvc *ai.Service, chatSvc *chatservice.Service) *Handler {
	return &Handler{
		aiSvc:   aiSvc,
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes registers the voice WebSocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/voice/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type  string `json:"type"`
	Audio []byte `json:"audio,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[voice] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[voice] new connection for session: %s", sessionID)

	upstream, err := h.aiSvc.ConnectLive(r.Context(), session.Settings.Personality, session.Settings.VoiceName)
	if err != nil {
		log.Printf("[voice] live connect failed: %v", err)
		conn.WriteJSON(map[string]string{"type": "error", "message": "voice session unavailable"})
		return
	}

	liveSession := live.NewSession(upstream, func() {
		log.Printf("[voice] live session closed for session: %s", sessionID)
	})
	defer liveSession.Close()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		return liveSession.Run(ctx)
	})

	g.Go(func() error {
		return h.writePump(ctx, conn, sessionID, liveSession)
	})

	g.Go(func() error {
		defer liveSession.Close()
		return h.readPump(conn, liveSession)
	})

	g.Go(func() error {
		h.pingLoop(ctx, conn)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("[voice] session ended with error: %v", err)
	}
}

// readPump forwards captured audio frames to the model until the client
// disconnects.
func (h *Handler) readPump(conn *websocket.Conn, session *live.Session) error {
	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[voice] read error: %v", err)
			}
			return nil
		}

		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		switch msg.Type {
		case "audio":
			if len(msg.Audio) == 0 {
				continue
			}
			if err := session.SendAudio(msg.Audio); err != nil {
				log.Printf("[voice] send audio failed: %v", err)
				return nil
			}
		case "close":
			return nil
		default:
			log.Printf("[voice] unsupported message type: %s", msg.Type)
		}
	}
}

// writePump relays model events to the client and persists flushed
// transcript turns onto the session transcript.
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, sessionID string, session *live.Session) error {
	for ev := range session.Events() {
		if ev.Type == live.EventTranscript {
			h.persistTranscript(ctx, sessionID, ev)
		}
		if err := conn.WriteJSON(ev); err != nil {
			log.Printf("[voice] write failed: %v", err)
			return nil
		}
	}

	conn.WriteJSON(map[string]string{"type": "closed"})
	return nil
}

func (h *Handler) persistTranscript(ctx context.Context, sessionID string, ev live.Event) {
	role := chatmodel.RoleUser
	if ev.Role == "companion" {
		role = chatmodel.RoleCompanion
	}
	if _, err := h.chatSvc.AppendTurn(ctx, chatmodel.Turn{
		SessionID: sessionID,
		Role:      role,
		Text:      ev.Text,
	}); err != nil {
		log.Printf("[voice] persist transcript failed: %v", err)
	}
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// WriteControl is safe alongside the write pump.
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
