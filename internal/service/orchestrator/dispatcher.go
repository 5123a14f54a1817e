package orchestrator

import (
	"context"
	"fmt"
	"log"

	chatmodel "github.com/sakurane/tsumugi/backend/internal/model/chat"
	"github.com/sakurane/tsumugi/backend/internal/service/ai"
)

// dispatchToolCalls executes every tool call from a reply and appends a
// confirmation turn per handled call. It reports whether at least one call
// was handled, which suppresses the reply's plain text.
func (s *Service) dispatchToolCalls(ctx context.Context, session chatmodel.Session, calls []ai.ToolCall, result *Result) (bool, error) {
	handled := false
	for _, call := range calls {
		switch call.Kind {
		case ai.ToolPlaySong, ai.ToolFindSong:
			if s.player == nil || !s.player.Connected() {
				// Without a playback session the call cannot be
				// honored; the plain text stands instead.
				continue
			}
			if err := s.handleSongCall(ctx, session, call, result); err != nil {
				return handled, err
			}
			handled = true

		case ai.ToolStartGame:
			if call.GameName != "tic-tac-toe" {
				log.Printf("[orchestrator] startGame for unknown game %q ignored", call.GameName)
				continue
			}
			if err := s.handleStartGame(ctx, session, result); err != nil {
				return handled, err
			}
			handled = true

		default:
			// Unknown tool names are a forward-compatibility no-op.
			log.Printf("[orchestrator] unknown tool call ignored for session=%s", session.ID)
		}
	}
	return handled, nil
}

func (s *Service) handleSongCall(ctx context.Context, session chatmodel.Session, call ai.ToolCall, result *Result) error {
	query := call.SongName
	if call.Artist != "" {
		query += " " + call.Artist
	}
	if err := s.player.SearchAndPlay(ctx, query); err != nil {
		log.Printf("[orchestrator] playback of %q failed for session=%s: %v", query, session.ID, err)
	}
	turn, err := s.chat.AppendTurn(ctx, chatmodel.Turn{
		SessionID: session.ID,
		Role:      chatmodel.RoleCompanion,
		Text:      fmt.Sprintf("(Now playing '%s' on Spotify)", call.SongName),
	})
	if err != nil {
		return err
	}
	result.Turns = append(result.Turns, turn)
	return nil
}

func (s *Service) handleStartGame(ctx context.Context, session chatmodel.Session, result *Result) error {
	g, err := s.games.Create(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	turn, err := s.chat.AppendTurn(ctx, chatmodel.Turn{
		SessionID: session.ID,
		Role:      chatmodel.RoleCompanion,
		Text:      gameStartReply,
		GameID:    g.ID,
	})
	if err != nil {
		return err
	}
	result.Turns = append(result.Turns, turn)
	return nil
}
