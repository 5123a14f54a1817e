package orchestrator

import (
	"context"
	"errors"
	"testing"

	chatmodel "github.com/sakurane/tsumugi/backend/internal/model/chat"
	gamemodel "github.com/sakurane/tsumugi/backend/internal/model/game"
	moodmodel "github.com/sakurane/tsumugi/backend/internal/model/mood"
	"github.com/sakurane/tsumugi/backend/internal/service/ai"
	chatservice "github.com/sakurane/tsumugi/backend/internal/service/chat"
	gameservice "github.com/sakurane/tsumugi/backend/internal/service/game"
	moodservice "github.com/sakurane/tsumugi/backend/internal/service/mood"
)

type fakeIntel struct {
	reply     *ai.Reply
	replyErr  error
	upsetting bool
	coaxing   bool
	animation string
	song      string
}

func (f *fakeIntel) GenerateReply(_ context.Context, _ ai.ReplyRequest) (*ai.Reply, error) {
	return f.reply, f.replyErr
}

func (f *fakeIntel) ClassifyUpsetting(_ context.Context, _ string) (bool, error) {
	return f.upsetting, nil
}

func (f *fakeIntel) EvaluateCoaxing(_ context.Context, _ string) (bool, error) {
	return f.coaxing, nil
}

func (f *fakeIntel) ClassifyAnimation(_ context.Context, _, _ string) string {
	if f.animation == "" {
		return "default"
	}
	return f.animation
}

func (f *fakeIntel) SuggestSong(_ context.Context, _ string) (string, error) {
	return f.song, nil
}

type fakePlayer struct {
	connected bool
	played    []string
}

func (p *fakePlayer) Connected() bool { return p.connected }

func (p *fakePlayer) SearchAndPlay(_ context.Context, query string) error {
	p.played = append(p.played, query)
	return nil
}

type stubMover struct{}

func (stubMover) OpponentMove(_ context.Context, _ gamemodel.Board) (gamemodel.Move, error) {
	return gamemodel.Move{}, errors.New("unavailable")
}

func newFixture(t *testing.T, intel *fakeIntel, player *fakePlayer) (*Service, string) {
	t.Helper()
	chatSvc := chatservice.NewService()
	session, err := chatSvc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	games := gameservice.NewService(stubMover{})
	var p Player
	if player != nil {
		p = player
	}
	svc := NewService(intel, moodservice.NewService(nil), chatSvc, games, p)
	return svc, session.ID
}

func lastTurn(t *testing.T, result *Result) chatmodel.Turn {
	t.Helper()
	if len(result.Turns) == 0 {
		t.Fatal("result has no turns")
	}
	return result.Turns[len(result.Turns)-1]
}

func TestSubmitRejectsBlankInput(t *testing.T) {
	svc, sessionID := newFixture(t, &fakeIntel{}, nil)

	if _, err := svc.Submit(context.Background(), sessionID, "   "); !errors.Is(err, ErrBlankInput) {
		t.Fatalf("expected ErrBlankInput, got %v", err)
	}
}

func TestUpsettingMessageFlipsMoodToAngry(t *testing.T) {
	intel := &fakeIntel{upsetting: true}
	svc, sessionID := newFixture(t, intel, nil)

	result, err := svc.Submit(context.Background(), sessionID, "you're so dumb")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Mood.State != moodmodel.Angry {
		t.Fatalf("expected angry mood, got %s", result.Mood.State)
	}
	if got := lastTurn(t, result).Text; got != angryAcknowledgement {
		t.Fatalf("expected angry acknowledgement, got %q", got)
	}
}

func TestCoaxingSequenceReachesReconciliation(t *testing.T) {
	intel := &fakeIntel{upsetting: true}
	svc, sessionID := newFixture(t, intel, nil)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, sessionID, "you're so dumb"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	intel.coaxing = true
	for i := 0; i < moodmodel.CoaxThreshold-1; i++ {
		result, err := svc.Submit(ctx, sessionID, "I'm really sorry")
		if err != nil {
			t.Fatalf("coax %d failed: %v", i+1, err)
		}
		if got := lastTurn(t, result).Text; got != stillUpsetReply {
			t.Fatalf("coax %d: expected %q, got %q", i+1, stillUpsetReply, got)
		}
		if result.Mood.State != moodmodel.Angry {
			t.Fatalf("coax %d: mood flipped early", i+1)
		}
	}

	result, err := svc.Submit(ctx, sessionID, "please forgive me")
	if err != nil {
		t.Fatalf("final coax failed: %v", err)
	}
	if got := lastTurn(t, result).Text; got != reconciliationReply {
		t.Fatalf("expected reconciliation, got %q", got)
	}
	if result.Mood.State != moodmodel.Normal || result.Mood.Coax != 0 {
		t.Fatalf("expected normal mood with reset counter, got %+v", result.Mood)
	}
}

func TestRejectedCoaxGetsDismissiveReply(t *testing.T) {
	intel := &fakeIntel{upsetting: true}
	svc, sessionID := newFixture(t, intel, nil)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, sessionID, "you're so dumb"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	intel.upsetting = false
	intel.coaxing = false
	result, err := svc.Submit(ctx, sessionID, "whatever, get over it")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := lastTurn(t, result).Text; got != dismissiveReply {
		t.Fatalf("expected dismissive reply, got %q", got)
	}
	if result.Mood.Coax != 0 {
		t.Fatalf("rejected coax advanced counter to %d", result.Mood.Coax)
	}
}

func TestHandledToolCallSuppressesPlainText(t *testing.T) {
	intel := &fakeIntel{reply: &ai.Reply{
		Text:      "Sure, playing it now!",
		ToolCalls: []ai.ToolCall{{Kind: ai.ToolPlaySong, SongName: "Bohemian Rhapsody", Artist: "Queen"}},
	}}
	player := &fakePlayer{connected: true}
	svc, sessionID := newFixture(t, intel, player)

	result, err := svc.Submit(context.Background(), sessionID, "play Bohemian Rhapsody")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := lastTurn(t, result).Text; got != "(Now playing 'Bohemian Rhapsody' on Spotify)" {
		t.Fatalf("expected play confirmation, got %q", got)
	}
	for _, turn := range result.Turns {
		if turn.Text == "Sure, playing it now!" {
			t.Fatal("plain text should be suppressed by the handled tool call")
		}
	}
	if len(player.played) != 1 || player.played[0] != "Bohemian Rhapsody Queen" {
		t.Fatalf("unexpected playback queries: %v", player.played)
	}
}

func TestSongToolWithoutPlaybackLeavesTextStanding(t *testing.T) {
	intel := &fakeIntel{reply: &ai.Reply{
		Text:      "I wish I could play that for you.",
		ToolCalls: []ai.ToolCall{{Kind: ai.ToolPlaySong, SongName: "Yesterday"}},
	}}
	svc, sessionID := newFixture(t, intel, &fakePlayer{connected: false})

	result, err := svc.Submit(context.Background(), sessionID, "play Yesterday")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := lastTurn(t, result).Text; got != "I wish I could play that for you." {
		t.Fatalf("expected plain text to stand, got %q", got)
	}
}

func TestStartGameToolCreatesGame(t *testing.T) {
	intel := &fakeIntel{reply: &ai.Reply{
		ToolCalls: []ai.ToolCall{{Kind: ai.ToolStartGame, GameName: "tic-tac-toe"}},
	}}
	svc, sessionID := newFixture(t, intel, nil)

	result, err := svc.Submit(context.Background(), sessionID, "let's play a game")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	turn := lastTurn(t, result)
	if turn.Text != gameStartReply {
		t.Fatalf("expected game start reply, got %q", turn.Text)
	}
	if turn.GameID == "" {
		t.Fatal("expected the confirmation turn to carry a game id")
	}
}

func TestUnknownToolCallIsIgnored(t *testing.T) {
	intel := &fakeIntel{reply: &ai.Reply{
		Text:      "Here is my answer.",
		ToolCalls: []ai.ToolCall{{Kind: ai.ToolUnknown}},
	}}
	svc, sessionID := newFixture(t, intel, nil)

	result, err := svc.Submit(context.Background(), sessionID, "hello")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := lastTurn(t, result).Text; got != "Here is my answer." {
		t.Fatalf("expected the plain text, got %q", got)
	}
}

func TestGenerationFailureAppendsApology(t *testing.T) {
	intel := &fakeIntel{replyErr: errors.New("backend unavailable")}
	svc, sessionID := newFixture(t, intel, nil)

	result, err := svc.Submit(context.Background(), sessionID, "hello")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := lastTurn(t, result).Text; got != apologyReply {
		t.Fatalf("expected apology, got %q", got)
	}
}

func TestSongSuggestionOnlyWhenConnected(t *testing.T) {
	intel := &fakeIntel{
		reply: &ai.Reply{Text: "That sounds wonderful!"},
		song:  "Here Comes the Sun",
	}
	player := &fakePlayer{connected: true}
	svc, sessionID := newFixture(t, intel, player)

	result, err := svc.Submit(context.Background(), sessionID, "today was a great day")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := lastTurn(t, result).Text; got != songSuggestionReply {
		t.Fatalf("expected song suggestion turn, got %q", got)
	}
	if len(player.played) != 1 || player.played[0] != "Here Comes the Sun" {
		t.Fatalf("unexpected playback queries: %v", player.played)
	}

	// Disconnected playback skips the suggestion entirely.
	player.connected = false
	player.played = nil
	result, err = svc.Submit(context.Background(), sessionID, "another great day")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := lastTurn(t, result).Text; got != "That sounds wonderful!" {
		t.Fatalf("expected the plain reply, got %q", got)
	}
	if len(player.played) != 0 {
		t.Fatalf("playback should not run while disconnected: %v", player.played)
	}
}

func TestAnimationLabelOnCompanionTurn(t *testing.T) {
	intel := &fakeIntel{
		reply:     &ai.Reply{Text: "Hehe, that's funny!"},
		animation: "giggle",
	}
	svc, sessionID := newFixture(t, intel, nil)

	result, err := svc.Submit(context.Background(), sessionID, "tell me a joke")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Animation != "giggle" {
		t.Fatalf("expected giggle animation, got %q", result.Animation)
	}
	if result.AnimationURL == "" {
		t.Fatal("expected a resolved animation URL")
	}
	if got := lastTurn(t, result).Animation; got != "giggle" {
		t.Fatalf("expected the turn to carry the label, got %q", got)
	}
}
