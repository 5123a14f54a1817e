package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sakurane/tsumugi/backend/internal/model/chat"
)

// Config aggregates every service-level setting.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Spotify SpotifyConfig
	Storage StorageConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	spotify, err := loadSpotifyConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Spotify: spotify,
		Storage: loadStorageConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the generative model backend.
type AIConfig struct {
	APIKey string

	// Per-tier chat models plus the specialized models for classification,
	// speech, image, video, and the live audio session.
	ModelLite       string
	ModelDefault    string
	ModelPro        string
	ModelClassifier string
	ModelSpeech     string
	ModelImage      string
	ModelVideo      string
	ModelLive       string

	Temperature       *float64
	ThinkingBudget    int32
	VideoPollInterval time.Duration
}

// Enabled reports whether the API key required for generative calls is set.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// ModelForTier maps a session performance tier to a chat model.
func (c AIConfig) ModelForTier(tier chat.PerformanceTier) string {
	switch tier {
	case chat.TierLite:
		return c.ModelLite
	case chat.TierPro:
		return c.ModelPro
	default:
		return c.ModelDefault
	}
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("GEMINI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	thinking := int32(32768)
	if override, err := parseOptionalIntEnv("GEMINI_THINKING_BUDGET"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		thinking = int32(*override)
	}

	pollSeconds := 10
	if override, err := parseOptionalIntEnv("VIDEO_POLL_INTERVAL_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		pollSeconds = *override
	}

	return AIConfig{
		APIKey:            strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		ModelLite:         getEnvOrDefault("GEMINI_MODEL_LITE", "gemini-2.5-flash-lite"),
		ModelDefault:      getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		ModelPro:          getEnvOrDefault("GEMINI_MODEL_PRO", "gemini-2.5-pro"),
		ModelClassifier:   getEnvOrDefault("GEMINI_MODEL_CLASSIFIER", "gemini-2.5-flash"),
		ModelSpeech:       getEnvOrDefault("GEMINI_MODEL_SPEECH", "gemini-2.5-flash-preview-tts"),
		ModelImage:        getEnvOrDefault("GEMINI_MODEL_IMAGE", "imagen-4.0-generate-001"),
		ModelVideo:        getEnvOrDefault("GEMINI_MODEL_VIDEO", "veo-3.1-fast-generate-preview"),
		ModelLive:         getEnvOrDefault("GEMINI_MODEL_LIVE", "gemini-2.5-flash-native-audio-preview-09-2025"),
		Temperature:       temperature,
		ThinkingBudget:    thinking,
		VideoPollInterval: time.Duration(pollSeconds) * time.Second,
	}, nil
}

// SpotifyConfig describes the playback bridge credentials. A session-scoped
// token supplied over the API takes precedence; this is the fallback for
// single-user deployments.
type SpotifyConfig struct {
	AccessToken string
	DeviceName  string
	Autoconnect bool
}

// Enabled reports whether a default playback token is configured.
func (c SpotifyConfig) Enabled() bool {
	return c.AccessToken != ""
}

func loadSpotifyConfig() (SpotifyConfig, error) {
	autoconnect, err := parseBoolEnv("SPOTIFY_AUTOCONNECT", false)
	if err != nil {
		return SpotifyConfig{}, err
	}

	return SpotifyConfig{
		AccessToken: strings.TrimSpace(os.Getenv("SPOTIFY_ACCESS_TOKEN")),
		DeviceName:  getEnvOrDefault("SPOTIFY_DEVICE_NAME", "Tsumugi AI Companion"),
		Autoconnect: autoconnect,
	}, nil
}

// StorageConfig locates the durable state. Only mood/coax snapshots are
// persisted; everything else is in-memory.
type StorageConfig struct {
	MoodDBPath string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		MoodDBPath: getEnvOrDefault("MOOD_DB_PATH", "moods.db"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
