package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"github.com/sakurane/tsumugi/backend/internal/analysis/animation"
	"github.com/sakurane/tsumugi/backend/internal/model/personality"
)

func booleanSchema(description string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"result": {Type: genai.TypeBoolean, Description: description},
		},
		Required: []string{"result"},
	}
}

// classifyBool runs a structured-output boolean classification.
func (s *Service) classifyBool(ctx context.Context, system, prompt, description string) (bool, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.cfg.ModelClassifier, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    booleanSchema(description),
		Temperature:       genai.Ptr[float32](0),
	})
	if err != nil {
		return false, err
	}

	var payload struct {
		Result bool `json:"result"`
	}
	if err := json.Unmarshal([]byte(resp.Text()), &payload); err != nil {
		return false, fmt.Errorf("parse classifier output: %w", err)
	}
	return payload.Result, nil
}

// ClassifyUpsetting decides whether a user message is hurtful toward the
// companion. Failures report false so the pipeline degrades to a normal turn.
func (s *Service) ClassifyUpsetting(ctx context.Context, text string) (bool, error) {
	result, err := s.classifyBool(ctx,
		"You are a content safety classifier. Your only job is to determine if the user's text is hurtful. Respond with your boolean classification.",
		fmt.Sprintf("Does the following user message contain insensitive, dismissive, mean, or hurtful content towards an AI companion? Text: %q", text),
		"True if the message is upsetting, otherwise false.")
	if err != nil {
		log.Printf("[ai] upsetting classification failed: %v", err)
		return false, err
	}
	return result, nil
}

// EvaluateCoaxing decides whether a user message is a genuine attempt to make
// the upset companion feel better.
func (s *Service) EvaluateCoaxing(ctx context.Context, text string) (bool, error) {
	result, err := s.classifyBool(ctx,
		"You are a social interaction classifier. Determine if the user's message is a positive attempt to resolve a conflict. Ignore sarcasm. Focus on genuine kindness or apology. Respond with your boolean classification.",
		fmt.Sprintf("An AI companion is upset. The user sent the following message to try and make them feel better. Is it a good, kind, apologetic, or caring message? Text: %q", text),
		"True if the message is a good coaxing attempt, false otherwise.")
	if err != nil {
		log.Printf("[ai] coaxing evaluation failed: %v", err)
		return false, err
	}
	return result, nil
}

// ClassifyAnimation picks the avatar animation matching a reply's emotion.
// Classifier failures fall back to the keyword heuristic, so a label is
// always returned.
func (s *Service) ClassifyAnimation(ctx context.Context, responseText, personalityID string) string {
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"animation": {Type: genai.TypeString, Enum: personality.AnimationTypes()},
		},
		Required: []string{"animation"},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.cfg.ModelClassifier,
		genai.Text(fmt.Sprintf("Analyze the emotion of the following text and classify it. Text: %q", responseText)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(personality.AnimationClassificationInstruction(personalityID), genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    schema,
		})
	if err != nil {
		log.Printf("[ai] animation classification failed, using heuristic: %v", err)
		return string(animation.Analyze(responseText))
	}

	var payload struct {
		Animation string `json:"animation"`
	}
	if err := json.Unmarshal([]byte(resp.Text()), &payload); err != nil || !animation.Known(animation.Label(payload.Animation)) {
		return string(animation.Analyze(responseText))
	}
	return payload.Animation
}

// SuggestSong asks for a single song that fits the mood of the reply text.
// An empty result means the mood is not worth a suggestion.
func (s *Service) SuggestSong(ctx context.Context, responseText string) (string, error) {
	if strings.TrimSpace(responseText) == "" {
		return "", nil
	}

	prompt := fmt.Sprintf("Based on this text, suggest a single, specific song (title and artist) that fits the mood. Only return the song title and artist name. If the mood is neutral, boring, or uninspired, return an empty string. Text: %q", responseText)
	resp, err := s.client.Models.GenerateContent(ctx, s.cfg.ModelClassifier, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", fmt.Errorf("song suggestion failed: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
