package ai

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"github.com/sakurane/tsumugi/backend/internal/config"
	"github.com/sakurane/tsumugi/backend/internal/model/chat"
	moodmodel "github.com/sakurane/tsumugi/backend/internal/model/mood"
	"github.com/sakurane/tsumugi/backend/internal/model/personality"
)

// ToolKind tags a tool invocation requested by the model.
type ToolKind int

const (
	ToolUnknown ToolKind = iota
	ToolPlaySong
	ToolFindSong
	ToolStartGame
)

// ToolCall is a structured side-effect request returned alongside (or instead
// of) free text.
type ToolCall struct {
	Kind     ToolKind
	SongName string
	Artist   string
	GameName string
}

// Reply is the primary generation result.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
	Sources   []chat.Source
}

// ReplyRequest carries everything the primary generation call needs.
type ReplyRequest struct {
	Prompt         string
	Personality    string
	Mood           moodmodel.State
	Tier           chat.PerformanceTier
	InternetAccess bool
	Location       *chat.Location
}

// Service wraps the generative model client. Every external intelligence call
// in the system goes through here.
type Service struct {
	client *genai.Client
	cfg    config.AIConfig
}

// NewService creates the client against the Gemini API backend.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("GEMINI_API_KEY is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Service{client: client, cfg: cfg}, nil
}

var songToolParams = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"songName": {Type: genai.TypeString, Description: "The name of the song to play."},
		"artist":   {Type: genai.TypeString, Description: "The name of the artist. (Optional)"},
	},
	Required: []string{"songName"},
}

var functionDeclarations = []*genai.FunctionDeclaration{
	{
		Name:        "playSong",
		Description: "Searches for and plays a song on Spotify.",
		Parameters:  songToolParams,
	},
	{
		Name:        "findSong",
		Description: "Searches for a song on Spotify.",
		Parameters:  songToolParams,
	},
	{
		Name:        "startGame",
		Description: "Starts a new game with the user.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"gameName": {Type: genai.TypeString, Enum: []string{"tic-tac-toe"}, Description: "The name of the game to start."},
			},
			Required: []string{"gameName"},
		},
	},
}

// GenerateReply runs the primary generation call: personality- and mood-aware
// system instruction, tool declarations, and optional search/maps grounding.
func (s *Service) GenerateReply(ctx context.Context, req ReplyRequest) (*Reply, error) {
	model := s.cfg.ModelForTier(req.Tier)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(personality.SystemInstruction(req.Personality, req.Mood), genai.RoleUser),
		Tools:             []*genai.Tool{{FunctionDeclarations: functionDeclarations}},
	}
	if req.Tier == chat.TierPro {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](s.cfg.ThinkingBudget)}
	}
	if s.cfg.Temperature != nil {
		cfg.Temperature = genai.Ptr[float32](float32(*s.cfg.Temperature))
	}
	if req.InternetAccess {
		cfg.Tools = append(cfg.Tools,
			&genai.Tool{GoogleSearch: &genai.GoogleSearch{}},
			&genai.Tool{GoogleMaps: &genai.GoogleMaps{}},
		)
		if req.Location != nil {
			cfg.ToolConfig = &genai.ToolConfig{
				RetrievalConfig: &genai.RetrievalConfig{
					LatLng: &genai.LatLng{
						Latitude:  genai.Ptr(req.Location.Latitude),
						Longitude: genai.Ptr(req.Location.Longitude),
					},
				},
			}
		}
	}

	resp, err := s.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("chat generation failed: %w", err)
	}

	reply := &Reply{
		Text:      resp.Text(),
		ToolCalls: parseToolCalls(resp.FunctionCalls()),
		Sources:   parseSources(resp),
	}
	log.Printf("[ai] generated reply model=%s length=%d tools=%d", model, len(reply.Text), len(reply.ToolCalls))
	return reply, nil
}

func parseToolCalls(calls []*genai.FunctionCall) []ToolCall {
	if len(calls) == 0 {
		return nil
	}

	parsed := make([]ToolCall, 0, len(calls))
	for _, call := range calls {
		tc := ToolCall{Kind: ToolUnknown}
		switch call.Name {
		case "playSong":
			tc.Kind = ToolPlaySong
		case "findSong":
			tc.Kind = ToolFindSong
		case "startGame":
			tc.Kind = ToolStartGame
		}
		if name, ok := call.Args["songName"].(string); ok {
			tc.SongName = name
		}
		if artist, ok := call.Args["artist"].(string); ok {
			tc.Artist = artist
		}
		if game, ok := call.Args["gameName"].(string); ok {
			tc.GameName = game
		}
		parsed = append(parsed, tc)
	}
	return parsed
}

func parseSources(resp *genai.GenerateContentResponse) []chat.Source {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	var sources []chat.Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web != nil {
			sources = append(sources, chat.Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	return sources
}
