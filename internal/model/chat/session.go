package chat

import "time"

// PerformanceTier selects the model used for primary generation.
type PerformanceTier string

const (
	TierLite    PerformanceTier = "lite"
	TierDefault PerformanceTier = "default"
	TierPro     PerformanceTier = "pro"
)

// Location is an optional user position forwarded for maps grounding.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Settings holds the session-scoped configuration. Only the mood state is
// persisted across restarts; everything here lives for the session only.
type Settings struct {
	Personality    string          `json:"personality"`
	VoiceName      string          `json:"voiceName"`
	Tier           PerformanceTier `json:"tier"`
	InternetAccess bool            `json:"internetAccess"`
	Location       *Location       `json:"location,omitempty"`
}

// DefaultSettings mirrors the companion's out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		Personality: "default",
		VoiceName:   "Zephyr",
		Tier:        TierDefault,
	}
}

// Session captures a transient anonymous conversation.
type Session struct {
	ID        string    `json:"id"`
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"createdAt"`
}
