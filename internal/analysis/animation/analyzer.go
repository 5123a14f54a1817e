package animation

import "strings"

// Label is an avatar animation type.
type Label string

const (
	Default   Label = "default"
	Happy     Label = "happy"
	Thinking  Label = "thinking"
	Consoling Label = "consoling"
	Wholesome Label = "wholesome"
	Sad       Label = "sad"
	Giggle    Label = "giggle"
	Blushing  Label = "blushing"
	Curious   Label = "curious"
	Pouting   Label = "pouting"
)

// Known reports whether the label is part of the animation library.
func Known(l Label) bool {
	switch l {
	case Default, Happy, Thinking, Consoling, Wholesome, Sad, Giggle, Blushing, Curious, Pouting:
		return true
	}
	return false
}

var keywordBuckets = map[Label][]string{
	Happy: {
		"glad", "great", "wonderful", "yay", "happy", "love that", "so proud",
		"congratulations", "well done", "that's amazing", "haha",
	},
	Sad: {
		"i'm sorry you", "that sounds hard", "it's okay to cry", "sad",
		"that must hurt", "losing", "grief", "miss them",
	},
	Consoling: {
		"i'm here for you", "you're not alone", "take a deep breath", "it's okay",
		"don't worry", "i understand", "that sounds really tough",
	},
	Pouting: {
		"hmph", "whatever", "not talking to you", "fine.", "...",
		"i can't believe you",
	},
	Curious: {
		"tell me more", "what happened", "how did that", "why do you think",
		"what do you mean", "i'd love to hear",
	},
	Giggle: {
		"hehe", "that's funny", "you're silly", "teehee", "giggle",
	},
}

// Analyze is the offline fallback when the animation classifier call fails.
// Short pouty replies map to pouting; otherwise a keyword scan picks the best
// bucket, defaulting to the neutral animation.
func Analyze(responseText string) Label {
	trimmed := strings.TrimSpace(responseText)
	if trimmed == "" {
		return Default
	}

	if len(trimmed) < 20 && (strings.Contains(trimmed, "Hmph") || strings.Contains(trimmed, "Whatever")) {
		return Pouting
	}

	normalized := strings.ToLower(trimmed)
	bestLabel := Default
	bestScore := 0
	for _, label := range []Label{Pouting, Consoling, Sad, Happy, Giggle, Curious} {
		score := 0
		for _, word := range keywordBuckets[label] {
			if strings.Contains(normalized, word) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestLabel = label
		}
	}

	if bestScore == 0 && strings.HasSuffix(trimmed, "?") {
		return Curious
	}
	return bestLabel
}
