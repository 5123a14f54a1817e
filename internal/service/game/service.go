package game

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	game "github.com/sakurane/tsumugi/backend/internal/model/game"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNoMovesLeft  = errors.New("no empty cells left for fallback move")
)

// OpponentMover computes the opponent's next move for a board. The production
// implementation asks the generative model; tests substitute a stub.
type OpponentMover interface {
	OpponentMove(ctx context.Context, board game.Board) (game.Move, error)
}

// Service owns every live game board. Transcript turns reference games by ID
// and all mutation goes through PlayerMove, so historical turns stay stable.
type Service struct {
	mu    sync.RWMutex
	games map[string]*game.Game
	mover OpponentMover
}

// NewService bootstraps the in-memory game arena.
func NewService(mover OpponentMover) *Service {
	return &Service{
		games: make(map[string]*game.Game),
		mover: mover,
	}
}

// Create provisions a fresh in-progress game for a session.
func (s *Service) Create(_ context.Context, sessionID string) (game.Game, error) {
	g := &game.Game{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Status:    game.StatusPlaying,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.games[g.ID] = g
	s.mu.Unlock()

	return *g, nil
}

// Get returns a copy of the identified game.
func (s *Service) Get(_ context.Context, id string) (game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return game.Game{}, ErrGameNotFound
	}
	return *g, nil
}

// PlayerMove applies the player's move and, when the game continues, resolves
// the opponent's counter-move. Moves onto occupied cells, out-of-bounds cells,
// or finished games are no-ops that return the unchanged game.
func (s *Service) PlayerMove(ctx context.Context, id string, mv game.Move) (game.Game, error) {
	s.mu.Lock()
	g, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return game.Game{}, ErrGameNotFound
	}

	if g.Status != game.StatusPlaying || g.Thinking || !mv.InBounds() || g.Board[mv.Row][mv.Col] != game.Empty {
		snapshot := *g
		s.mu.Unlock()
		return snapshot, nil
	}

	g.Board[mv.Row][mv.Col] = game.Player

	if winner, draw := Evaluate(g.Board); winner != game.Empty || draw {
		settle(g, winner)
		snapshot := *g
		s.mu.Unlock()
		return snapshot, nil
	}

	g.Thinking = true
	board := g.Board
	s.mu.Unlock()

	reply := s.resolveOpponentMove(ctx, id, board)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { g.Thinking = false }()

	if g.Board[reply.Row][reply.Col] != game.Empty {
		fallback, ok := g.Board.FirstEmpty()
		if !ok {
			return *g, ErrNoMovesLeft
		}
		reply = fallback
	}
	g.Board[reply.Row][reply.Col] = game.Opponent

	if winner, draw := Evaluate(g.Board); winner != game.Empty || draw {
		settle(g, winner)
	}

	return *g, nil
}

// resolveOpponentMove asks the external mover and falls back to the first
// empty cell in row-major order when the call fails or returns garbage. The
// game therefore always progresses, even across model outages.
func (s *Service) resolveOpponentMove(ctx context.Context, id string, board game.Board) game.Move {
	fallback, _ := board.FirstEmpty()

	if s.mover == nil {
		return fallback
	}

	mv, err := s.mover.OpponentMove(ctx, board)
	if err != nil {
		log.Printf("[game] opponent move failed for game=%s, using fallback: %v", id, err)
		return fallback
	}
	if !mv.InBounds() || board[mv.Row][mv.Col] != game.Empty {
		log.Printf("[game] opponent returned invalid move (%d,%d) for game=%s, using fallback", mv.Row, mv.Col, id)
		return fallback
	}
	return mv
}

func settle(g *game.Game, winner game.Mark) {
	switch winner {
	case game.Player:
		g.Status = game.StatusWin
		g.Winner = game.Player
	case game.Opponent:
		g.Status = game.StatusLose
		g.Winner = game.Opponent
	default:
		g.Status = game.StatusDraw
	}
}

var lines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Evaluate checks the eight winning lines and the draw condition. A non-empty
// winner and draw are mutually exclusive; both zero values mean the game is
// still in progress.
func Evaluate(b game.Board) (winner game.Mark, draw bool) {
	for _, line := range lines {
		a, m, c := line[0], line[1], line[2]
		mark := b[a[0]][a[1]]
		if mark != game.Empty && mark == b[m[0]][m[1]] && mark == b[c[0]][c[1]] {
			return mark, false
		}
	}
	return game.Empty, b.Full()
}
