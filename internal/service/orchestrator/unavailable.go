package orchestrator

import (
	"context"
	"errors"

	"github.com/sakurane/tsumugi/backend/internal/service/ai"
)

var errUnavailable = errors.New("generation backend not configured")

// Unavailable is the Intelligence used when no generation backend is
// configured. Classifications fall back to their defaults and every reply
// becomes the apology turn.
type Unavailable struct{}

func (Unavailable) GenerateReply(_ context.Context, _ ai.ReplyRequest) (*ai.Reply, error) {
	return nil, errUnavailable
}

func (Unavailable) ClassifyUpsetting(_ context.Context, _ string) (bool, error) {
	return false, errUnavailable
}

func (Unavailable) EvaluateCoaxing(_ context.Context, _ string) (bool, error) {
	return false, errUnavailable
}

func (Unavailable) ClassifyAnimation(_ context.Context, _, _ string) string {
	return "default"
}

func (Unavailable) SuggestSong(_ context.Context, _ string) (string, error) {
	return "", nil
}
