package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenerateSpeech synthesizes a reply as 24kHz mono PCM with the selected
// prebuilt voice.
func (s *Service) GenerateSpeech(ctx context.Context, text, voiceName string) ([]byte, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.cfg.ModelSpeech, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no audio data returned from API")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, fmt.Errorf("no audio data returned from API")
}

// GenerateImage produces a single JPEG for the prompt at the requested aspect
// ratio.
func (s *Service) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	resp, err := s.client.Models.GenerateImages(ctx, s.cfg.ModelImage, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    aspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return nil, fmt.Errorf("no image data returned from API")
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

// AnalyzeMedia answers a prompt about an inline image or video. Video inputs
// are routed to the pro model.
func (s *Service) AnalyzeMedia(ctx context.Context, prompt string, data []byte, mimeType string) (string, error) {
	model := s.cfg.ModelDefault
	if strings.HasPrefix(mimeType, "video") {
		model = s.cfg.ModelPro
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("media analysis failed: %w", err)
	}
	return resp.Text(), nil
}
