package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	chatmodel "github.com/sakurane/tsumugi/backend/internal/model/chat"
	gamemodel "github.com/sakurane/tsumugi/backend/internal/model/game"
	moodmodel "github.com/sakurane/tsumugi/backend/internal/model/mood"
	"github.com/sakurane/tsumugi/backend/internal/model/personality"
	"github.com/sakurane/tsumugi/backend/internal/service/ai"
	chatservice "github.com/sakurane/tsumugi/backend/internal/service/chat"
	moodservice "github.com/sakurane/tsumugi/backend/internal/service/mood"
)

var (
	ErrBlankInput = errors.New("message text is blank")
	ErrBusy       = errors.New("a submission is already in flight for this session")
)

const (
	angryAcknowledgement = "...I can't believe you said that. I'm not talking to you."
	stillUpsetReply      = "...Hmph."
	dismissiveReply      = "Whatever."
	reconciliationReply  = "...Okay. I guess I forgive you this time. Don't do it again."
	apologyReply         = "I'm sorry, I'm having a little trouble connecting right now. Please try again in a moment."
	gameStartReply       = "Alright, let's play Tic-Tac-Toe! You go first."
	songSuggestionReply  = "(This made me think of a song for you... now playing on Spotify)"
)

// Intelligence is the subset of generative calls the orchestrator performs.
type Intelligence interface {
	GenerateReply(ctx context.Context, req ai.ReplyRequest) (*ai.Reply, error)
	ClassifyUpsetting(ctx context.Context, text string) (bool, error)
	EvaluateCoaxing(ctx context.Context, text string) (bool, error)
	ClassifyAnimation(ctx context.Context, responseText, personalityID string) string
	SuggestSong(ctx context.Context, responseText string) (string, error)
}

// Player is the playback contract used for tool calls and song suggestions.
type Player interface {
	Connected() bool
	SearchAndPlay(ctx context.Context, query string) error
}

// GameStarter provisions new games for startGame tool calls.
type GameStarter interface {
	Create(ctx context.Context, sessionID string) (gamemodel.Game, error)
}

// Result is the ordered list of transcript mutations produced by one
// submission, plus the derived view state.
type Result struct {
	Turns        []chatmodel.Turn   `json:"turns"`
	Mood         moodmodel.Snapshot `json:"mood"`
	Animation    string             `json:"animation,omitempty"`
	AnimationURL string             `json:"animationUrl,omitempty"`
}

// Service sequences conversation turns: mood gating, classification, primary
// generation, tool dispatch, and the derived animation/song side effects.
type Service struct {
	intel  Intelligence
	moods  *moodservice.Service
	chat   *chatservice.Service
	games  GameStarter
	player Player

	mu   sync.Mutex
	busy map[string]bool
}

// NewService wires the orchestrator. player may be nil when no playback
// bridge is configured.
func NewService(intel Intelligence, moods *moodservice.Service, chat *chatservice.Service, games GameStarter, player Player) *Service {
	return &Service{
		intel:  intel,
		moods:  moods,
		chat:   chat,
		games:  games,
		player: player,
		busy:   make(map[string]bool),
	}
}

// Submit processes one user message and returns every transcript turn it
// produced. Only one submission per session may be in flight; the busy flag
// is cleared on every path.
func (s *Service) Submit(ctx context.Context, sessionID, text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrBlankInput
	}

	s.mu.Lock()
	if s.busy[sessionID] {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy[sessionID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.busy, sessionID)
		s.mu.Unlock()
	}()

	session, err := s.chat.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	userTurn, err := s.chat.AppendTurn(ctx, chatmodel.Turn{
		SessionID: sessionID,
		Role:      chatmodel.RoleUser,
		Text:      text,
	})
	if err != nil {
		return nil, err
	}
	result.Turns = append(result.Turns, userTurn)

	snap := s.moods.Get(sessionID)
	if snap.State == moodmodel.Angry {
		err = s.handleAngryTurn(ctx, session, text, result)
	} else {
		err = s.handleNormalTurn(ctx, session, text, result)
	}
	if err != nil {
		return nil, err
	}

	result.Mood = s.moods.Get(sessionID)
	return result, nil
}

// handleAngryTurn runs the coaxing path. Nothing else happens this turn:
// the primary generation pipeline is skipped entirely while angry.
func (s *Service) handleAngryTurn(ctx context.Context, session chatmodel.Session, text string, result *Result) error {
	accepted, err := s.intel.EvaluateCoaxing(ctx, text)
	if err != nil {
		// A failed evaluation counts as a poor attempt, matching the
		// classifier's own false default.
		accepted = false
	}

	snap, reconciled := s.moods.RecordCoax(session.ID, accepted)
	switch {
	case reconciled:
		return s.respond(ctx, session, reconciliationReply, snap.State, nil, result)
	case accepted:
		return s.respond(ctx, session, stillUpsetReply, snap.State, nil, result)
	default:
		return s.respond(ctx, session, dismissiveReply, snap.State, nil, result)
	}
}

func (s *Service) handleNormalTurn(ctx context.Context, session chatmodel.Session, text string, result *Result) error {
	upsetting, err := s.intel.ClassifyUpsetting(ctx, text)
	if err != nil {
		upsetting = false
	}
	if upsetting {
		snap := s.moods.MarkUpset(session.ID)
		return s.respond(ctx, session, angryAcknowledgement, snap.State, nil, result)
	}

	reply, err := s.intel.GenerateReply(ctx, ai.ReplyRequest{
		Prompt:         text,
		Personality:    session.Settings.Personality,
		Mood:           moodmodel.Normal,
		Tier:           session.Settings.Tier,
		InternetAccess: session.Settings.InternetAccess,
		Location:       session.Settings.Location,
	})
	if err != nil {
		log.Printf("[orchestrator] generation failed for session=%s: %v", session.ID, err)
		apology, appendErr := s.chat.AppendTurn(ctx, chatmodel.Turn{
			SessionID: session.ID,
			Role:      chatmodel.RoleCompanion,
			Text:      apologyReply,
		})
		if appendErr != nil {
			return appendErr
		}
		result.Turns = append(result.Turns, apology)
		return nil
	}

	handled, err := s.dispatchToolCalls(ctx, session, reply.ToolCalls, result)
	if err != nil {
		return err
	}
	if handled {
		// Tool confirmation turns stand in for the plain text.
		return nil
	}

	if reply.Text != "" {
		return s.respond(ctx, session, reply.Text, moodmodel.Normal, reply.Sources, result)
	}
	return nil
}

// respond appends the companion turn and classifies its animation. When the
// mood is normal and a playback session is connected it also chases a
// mood-based song suggestion. Suggestion failures are logged and swallowed.
func (s *Service) respond(ctx context.Context, session chatmodel.Session, text string, state moodmodel.State, sources []chatmodel.Source, result *Result) error {
	animationLabel := s.intel.ClassifyAnimation(ctx, text, session.Settings.Personality)
	url, ok := personality.Animations[animationLabel]
	if !ok {
		animationLabel = "default"
		url = personality.Animations["default"]
	}

	turn, err := s.chat.AppendTurn(ctx, chatmodel.Turn{
		SessionID: session.ID,
		Role:      chatmodel.RoleCompanion,
		Text:      text,
		Animation: animationLabel,
		Sources:   sources,
	})
	if err != nil {
		return err
	}
	result.Turns = append(result.Turns, turn)
	result.Animation = animationLabel
	result.AnimationURL = url

	if state == moodmodel.Normal && s.player != nil && s.player.Connected() {
		if err := s.suggestSong(ctx, session, text, result); err != nil {
			log.Printf("[orchestrator] song suggestion failed for session=%s: %v", session.ID, err)
		}
	}
	return nil
}

func (s *Service) suggestSong(ctx context.Context, session chatmodel.Session, text string, result *Result) error {
	query, err := s.intel.SuggestSong(ctx, text)
	if err != nil {
		return err
	}
	if query == "" {
		return nil
	}

	if err := s.player.SearchAndPlay(ctx, query); err != nil {
		return fmt.Errorf("search-and-play failed: %w", err)
	}

	turn, err := s.chat.AppendTurn(ctx, chatmodel.Turn{
		SessionID: session.ID,
		Role:      chatmodel.RoleCompanion,
		Text:      songSuggestionReply,
	})
	if err != nil {
		return err
	}
	result.Turns = append(result.Turns, turn)
	return nil
}
