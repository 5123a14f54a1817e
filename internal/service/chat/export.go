package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sakurane/tsumugi/backend/internal/model/chat"
)

// Export serializes the transcript as alternating "You:"/"Tsumugi:" lines for
// download, together with a timestamped filename.
func (s *Service) Export(ctx context.Context, sessionID string, now time.Time) (filename, body string, err error) {
	turns, err := s.LoadTranscript(ctx, sessionID)
	if err != nil {
		return "", "", err
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		speaker := "Tsumugi"
		if turn.Role == chat.RoleUser {
			speaker = "You"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, turn.Text))
	}

	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(now.UTC().Format(time.RFC3339))
	filename = fmt.Sprintf("tsumugi-chat-history-%s.txt", stamp)
	return filename, strings.Join(lines, "\n\n"), nil
}
