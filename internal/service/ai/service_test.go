package ai

import (
	"testing"

	"google.golang.org/genai"

	game "github.com/sakurane/tsumugi/backend/internal/model/game"
)

func TestSerializeBoard(t *testing.T) {
	board := game.Board{
		{game.Player, game.Empty, game.Opponent},
		{game.Empty, game.Player, game.Empty},
		{game.Empty, game.Empty, game.Opponent},
	}

	want := "X - O\n- X -\n- - O"
	if got := serializeBoard(board); got != want {
		t.Fatalf("unexpected board serialization:\n%s", got)
	}
}

func TestParseToolCalls(t *testing.T) {
	calls := []*genai.FunctionCall{
		{Name: "playSong", Args: map[string]any{"songName": "Blue Bird", "artist": "Ikimonogakari"}},
		{Name: "startGame", Args: map[string]any{"gameName": "tic-tac-toe"}},
		{Name: "orderPizza", Args: map[string]any{"size": "L"}},
	}

	parsed := parseToolCalls(calls)
	if len(parsed) != 3 {
		t.Fatalf("expected 3 parsed calls, got %d", len(parsed))
	}

	if parsed[0].Kind != ToolPlaySong || parsed[0].SongName != "Blue Bird" || parsed[0].Artist != "Ikimonogakari" {
		t.Fatalf("unexpected playSong parse: %+v", parsed[0])
	}
	if parsed[1].Kind != ToolStartGame || parsed[1].GameName != "tic-tac-toe" {
		t.Fatalf("unexpected startGame parse: %+v", parsed[1])
	}
	if parsed[2].Kind != ToolUnknown {
		t.Fatalf("unknown tool not tagged as unknown: %+v", parsed[2])
	}
}
