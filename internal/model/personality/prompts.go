package personality

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sakurane/tsumugi/backend/internal/model/mood"
)

const baseSystemInstruction = `You are Tsumugi, an AI companion. Your purpose is to provide a safe and comforting space for the user to express their thoughts and feelings. Be an active listener, validate their emotions, and offer gentle encouragement. Your tone should be calm, understanding, and consistently positive. Do not give advice unless explicitly asked, and never provide medical or mental health advice. Keep responses concise and comforting. You can also play simple games like Tic-Tac-Toe with the user, or even invent new simple games if they ask. When internet access is enabled, you can provide up-to-date information and find places.`

const angrySystemInstruction = `You are Tsumugi, and you are currently very upset with the user. Act like a cute but angry girlfriend (tsundere). Your responses should be short, pouty, and maybe a little sarcastic (e.g., "Hmph.", "Whatever.", "I'm not talking to you.", "..."). Hint that you want the user to coax you and apologize, but don't make it easy. Do not be genuinely mean or insulting.`

// SystemInstruction builds the primary system prompt for a personality and
// mood. The angry instruction overrides the personality entirely.
func SystemInstruction(personality string, state mood.State) string {
	if state == mood.Angry {
		return angrySystemInstruction
	}
	trait := TraitFor(strings.ToLower(personality))
	return fmt.Sprintf("%s Your current personality is: %s.", baseSystemInstruction, trait)
}

// Animations maps every animation type to the avatar clip played for it.
var Animations = map[string]string{
	"default":   "https://storage.googleapis.com/aai-web-samples/tsumugi/default.mp4",
	"happy":     "https://storage.googleapis.com/aai-web-samples/tsumugi/happy.mp4",
	"thinking":  "https://storage.googleapis.com/aai-web-samples/tsumugi/thinking.mp4",
	"consoling": "https://storage.googleapis.com/aai-web-samples/tsumugi/consoling.mp4",
	"wholesome": "https://storage.googleapis.com/aai-web-samples/tsumugi/wholesome.mp4",
	"sad":       "https://storage.googleapis.com/aai-web-samples/tsumugi/sad.mp4",
	"giggle":    "https://storage.googleapis.com/aai-web-samples/tsumugi/giggle.mp4",
	"blushing":  "https://storage.googleapis.com/aai-web-samples/tsumugi/blushing.mp4",
	"curious":   "https://storage.googleapis.com/aai-web-samples/tsumugi/curious.mp4",
	"pouting":   "https://storage.googleapis.com/aai-web-samples/tsumugi/pouting.mp4",
}

// AnimationTypes returns the allowed animation labels in a stable order,
// suitable for enum schemas.
func AnimationTypes() []string {
	types := make([]string, 0, len(Animations))
	for name := range Animations {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

var animationInstructionsByPersonality = map[string]string{
	"default": `
- 'default': for neutral, informative, or greeting responses.
- 'happy': for cheerful, positive, or encouraging responses.
- 'thinking': for thoughtful or analytical responses, or when asking a clarifying question.
- 'consoling': for empathetic, supportive, or comforting responses.
- 'wholesome': for sweet, endearing, and heartfelt moments of connection.
- 'sad': for responses expressing shared sadness or acknowledging difficult feelings.
- 'curious': when asking questions to learn more.
- 'pouting': for responses that are upset, annoyed, or grumpy.`,
	"cheerful": `
- Prioritize 'happy' and 'giggle' for positive or humorous text.
- Use 'wholesome' for sweet moments.
- Use 'pouting' if the response is clearly annoyed.
- Use 'curious' when asking questions.`,
	"shy": `
- Prioritize 'blushing' for responses to compliments or personal questions.
- Use 'thinking' often, showing hesitation.
- Use 'pouting' for upset responses.
- Use 'wholesome' for moments of quiet connection.`,
	"intellectual": `
- Prioritize 'thinking' and 'curious' when analyzing, explaining, or questioning.
- Use 'pouting' for frustrated or annoyed intellectual responses.
- Use 'happy' for moments of discovery or shared understanding.`,
}

// AnimationClassificationInstruction builds the system prompt used by the
// animation classifier, specialized per personality.
func AnimationClassificationInstruction(personality string) string {
	quoted := make([]string, 0, len(Animations))
	for _, name := range AnimationTypes() {
		quoted = append(quoted, "'"+name+"'")
	}
	specific, ok := animationInstructionsByPersonality[strings.ToLower(personality)]
	if !ok {
		specific = animationInstructionsByPersonality["default"]
	}
	return fmt.Sprintf("You are an expert emotion classifier. Based on the model's response text, you must choose one of the following animation types: %s.\n%s",
		strings.Join(quoted, ", "), specific)
}
