package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	moodmodel "github.com/sakurane/tsumugi/backend/internal/model/mood"
	"github.com/sakurane/tsumugi/backend/internal/model/personality"
)

// ConnectLive opens a bidirectional audio session configured with the active
// personality and voice. Audio in is 16kHz PCM, audio out 24kHz; input and
// output transcription are both enabled so the caller can accumulate a
// transcript per turn.
func (s *Service) ConnectLive(ctx context.Context, personalityID, voiceName string) (*genai.Session, error) {
	session, err := s.client.Live.Connect(ctx, s.cfg.ModelLive, &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction:  genai.NewContentFromText(personality.SystemInstruction(personalityID, moodmodel.Normal), genai.RoleUser),
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
			},
		},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open live session: %w", err)
	}
	return session, nil
}
