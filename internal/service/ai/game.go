package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	game "github.com/sakurane/tsumugi/backend/internal/model/game"
)

var moveSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"row": {Type: genai.TypeNumber, Description: "The row index (0-2) of the move."},
		"col": {Type: genai.TypeNumber, Description: "The column index (0-2) of the move."},
	},
	Required: []string{"row", "col"},
}

// serializeBoard renders the board row-major with X for the player, O for the
// opponent, and - for empty cells.
func serializeBoard(b game.Board) string {
	rows := make([]string, 0, 3)
	for r := 0; r < 3; r++ {
		cells := make([]string, 0, 3)
		for c := 0; c < 3; c++ {
			switch b[r][c] {
			case game.Player:
				cells = append(cells, "X")
			case game.Opponent:
				cells = append(cells, "O")
			default:
				cells = append(cells, "-")
			}
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n")
}

// OpponentMove asks the model for its tic-tac-toe move. The game engine is
// responsible for falling back to a local move when this fails or answers an
// occupied cell.
func (s *Service) OpponentMove(ctx context.Context, board game.Board) (game.Move, error) {
	prompt := fmt.Sprintf("You are playing Tic-Tac-Toe. It is your turn to move (you are 'O'). The current board is:\n%s\nYour opponent is 'X'. Choose your next move. You must select an empty cell, marked with '-'. Respond with the coordinates of your move.", serializeBoard(board))

	resp, err := s.client.Models.GenerateContent(ctx, s.cfg.ModelPro, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText("You are an unbeatable Tic-Tac-Toe AI. Your goal is to always win if possible, otherwise draw. Never make an invalid move by choosing an occupied cell.", genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    moveSchema,
		Temperature:       genai.Ptr[float32](0.1),
	})
	if err != nil {
		return game.Move{}, fmt.Errorf("opponent move request failed: %w", err)
	}

	var payload struct {
		Row *int `json:"row"`
		Col *int `json:"col"`
	}
	if err := json.Unmarshal([]byte(resp.Text()), &payload); err != nil {
		return game.Move{}, fmt.Errorf("parse opponent move: %w", err)
	}
	if payload.Row == nil || payload.Col == nil {
		return game.Move{}, fmt.Errorf("opponent move missing coordinates")
	}
	return game.Move{Row: *payload.Row, Col: *payload.Col}, nil
}
