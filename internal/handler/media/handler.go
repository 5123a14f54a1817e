package media

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakurane/tsumugi/backend/internal/service/ai"
	"github.com/sakurane/tsumugi/backend/pkg/utils"
)

// Handler exposes speech synthesis, image and video generation, and media
// analysis over HTTP. Generated bytes travel base64-encoded in JSON, matching
// what the frontend feeds into blob URLs.
type Handler struct {
	aiSvc *ai.Service
}

// New creates the media handler.
func New(aiSvc *ai.Service) *Handler {
	return &Handler{aiSvc: aiSvc}
}

// RegisterRoutes registers media routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/media/speech", h.handleSpeech)
	r.Post("/media/image", h.handleImage)
	r.Post("/media/video", h.handleVideo)
	r.Post("/media/analyze", h.handleAnalyze)
}

func (h *Handler) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text  string `json:"text"`
		Voice string `json:"voice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := h.aiSvc.GenerateSpeech(r.Context(), payload.Text, payload.Voice)
	if err != nil {
		log.Printf("[media] speech synthesis failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		// Raw 24kHz 16-bit PCM; the client wraps it in a WAV header.
		"audio":  base64.StdEncoding.EncodeToString(audio),
		"format": "pcm",
	})
}

func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt      string `json:"prompt"`
		AspectRatio string `json:"aspectRatio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if payload.AspectRatio == "" {
		payload.AspectRatio = "1:1"
	}

	image, err := h.aiSvc.GenerateImage(r.Context(), payload.Prompt, payload.AspectRatio)
	if err != nil {
		log.Printf("[media] image generation failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "image generation failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"image":    base64.StdEncoding.EncodeToString(image),
		"mimeType": "image/jpeg",
	})
}

// handleVideo streams progress updates over SSE while the long-running
// generation polls, then delivers the finished video as the final event.
func (h *Handler) handleVideo(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Image       string `json:"image"`
		MIMEType    string `json:"mimeType"`
		Prompt      string `json:"prompt"`
		AspectRatio string `json:"aspectRatio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Image == "" || payload.Prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "image and prompt are required")
		return
	}
	if payload.AspectRatio == "" {
		payload.AspectRatio = "16:9"
	}

	imageData, err := base64.StdEncoding.DecodeString(payload.Image)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "image must be base64")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	utils.SetupSSEHeaders(w)

	onProgress := func(message string) {
		utils.SendSSEEvent(w, flusher, "progress", map[string]string{"message": message})
	}

	video, err := h.aiSvc.GenerateVideo(r.Context(), imageData, payload.MIMEType, payload.Prompt, payload.AspectRatio, onProgress)
	if err != nil {
		log.Printf("[media] video generation failed: %v", err)
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"message": "video generation failed"})
		return
	}

	utils.SendSSEEvent(w, flusher, "video", map[string]string{
		"video":    base64.StdEncoding.EncodeToString(video),
		"mimeType": "video/mp4",
	})
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt   string `json:"prompt"`
		Data     string `json:"data"`
		MIMEType string `json:"mimeType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Data == "" || payload.MIMEType == "" {
		utils.RespondError(w, http.StatusBadRequest, "data and mimeType are required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "data must be base64")
		return
	}

	text, err := h.aiSvc.AnalyzeMedia(r.Context(), payload.Prompt, data, payload.MIMEType)
	if err != nil {
		log.Printf("[media] analysis failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "media analysis failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"text": text})
}
