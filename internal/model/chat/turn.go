package chat

import "time"

// Role identifies the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleCompanion Role = "companion"
)

// Source is a web citation attached to a grounded reply.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Turn is one entry in the conversation transcript. Turns are append-only;
// a turn that carries a GameID references a board in the game arena and is
// never replaced, only the referenced board changes.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	VideoURL  string    `json:"videoUrl,omitempty"`
	GameID    string    `json:"gameId,omitempty"`
	Animation string    `json:"animation,omitempty"`
	Sources   []Source  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
