package game

import "time"

// Mark identifies who owns a board cell.
type Mark string

const (
	Empty    Mark = ""
	Player   Mark = "player"
	Opponent Mark = "opponent"
)

// Status is the lifecycle state of a game. Terminal states never change.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWin     Status = "win"
	StatusLose    Status = "lose"
	StatusDraw    Status = "draw"
)

// Board is a 3x3 tic-tac-toe grid, row-major.
type Board [3][3]Mark

// Move addresses one cell on the board.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the move addresses a real cell.
func (m Move) InBounds() bool {
	return m.Row >= 0 && m.Row < 3 && m.Col >= 0 && m.Col < 3
}

// Game is one tic-tac-toe match, referenced from a transcript turn by ID and
// mutated only through the engine's move operation.
type Game struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Board     Board     `json:"board"`
	Status    Status    `json:"status"`
	Winner    Mark      `json:"winner,omitempty"`
	Thinking  bool      `json:"thinking"`
	CreatedAt time.Time `json:"createdAt"`
}

// FirstEmpty returns the first empty cell in row-major order, or false when
// the board is full.
func (b Board) FirstEmpty() (Move, bool) {
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if b[r][c] == Empty {
				return Move{Row: r, Col: c}, true
			}
		}
	}
	return Move{}, false
}

// Full reports whether every cell is occupied.
func (b Board) Full() bool {
	_, ok := b.FirstEmpty()
	return !ok
}
