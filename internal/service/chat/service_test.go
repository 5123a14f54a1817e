package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	chatmodel "github.com/sakurane/tsumugi/backend/internal/model/chat"
	chat "github.com/sakurane/tsumugi/backend/internal/service/chat"
)

func TestServiceGetSession(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	got, err := svc.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}

	if got.ID != session.ID {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, session.ID)
	}
	if got.Settings.Personality != "default" {
		t.Fatalf("unexpected default personality: %s", got.Settings.Personality)
	}
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	if _, err := svc.GetSession(ctx, "missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestNewSessionStartsWithOpeningLine(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	turns, err := svc.LoadTranscript(ctx, session.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("expected 1 opening turn, got %d", len(turns))
	}
	if turns[0].Role != chatmodel.RoleCompanion {
		t.Fatalf("opening turn should be the companion's, got %s", turns[0].Role)
	}
	if !strings.Contains(turns[0].Text, "Tsumugi") {
		t.Fatalf("unexpected opening line: %q", turns[0].Text)
	}
}

func TestAppendTurnAssignsIDs(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	turn, err := svc.AppendTurn(ctx, chatmodel.Turn{
		SessionID: session.ID,
		Role:      chatmodel.RoleUser,
		Text:      "hello",
	})
	if err != nil {
		t.Fatalf("AppendTurn err: %v", err)
	}
	if turn.ID == "" {
		t.Fatal("expected an assigned turn ID")
	}
	if turn.CreatedAt.IsZero() {
		t.Fatal("expected an assigned timestamp")
	}

	if _, err := svc.AppendTurn(ctx, chatmodel.Turn{SessionID: "missing", Text: "x"}); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	updated, err := svc.UpdateSettings(ctx, session.ID, chatmodel.Settings{
		Personality: "shy",
		VoiceName:   "Kore",
		Tier:        chatmodel.TierPro,
	})
	if err != nil {
		t.Fatalf("UpdateSettings err: %v", err)
	}
	if updated.Settings.Personality != "shy" || updated.Settings.Tier != chatmodel.TierPro {
		t.Fatalf("settings not applied: %+v", updated.Settings)
	}
}

func TestExportFormat(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	session, _ := svc.CreateSession(ctx)
	svc.AppendTurn(ctx, chatmodel.Turn{SessionID: session.ID, Role: chatmodel.RoleUser, Text: "hi there"})

	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	filename, body, err := svc.Export(ctx, session.ID, now)
	if err != nil {
		t.Fatalf("Export err: %v", err)
	}

	if !strings.HasPrefix(filename, "tsumugi-chat-history-") || !strings.HasSuffix(filename, ".txt") {
		t.Fatalf("unexpected filename: %s", filename)
	}
	if strings.Contains(filename, ":") {
		t.Fatalf("filename should not contain raw timestamp separators: %s", filename)
	}
	if !strings.Contains(body, "You: hi there") {
		t.Fatalf("expected user line in export, got %q", body)
	}
	if !strings.Contains(body, "Tsumugi: ") {
		t.Fatalf("expected companion line in export, got %q", body)
	}
}
