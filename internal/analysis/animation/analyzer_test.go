package animation

import "testing"

func TestAnalyzeShortPoutyReply(t *testing.T) {
	if got := Analyze("Hmph."); got != Pouting {
		t.Fatalf("expected pouting, got %s", got)
	}
	if got := Analyze("Whatever."); got != Pouting {
		t.Fatalf("expected pouting, got %s", got)
	}
}

func TestAnalyzeConsolingKeywords(t *testing.T) {
	if got := Analyze("That sounds really tough. I'm here for you, always."); got != Consoling {
		t.Fatalf("expected consoling, got %s", got)
	}
}

func TestAnalyzeQuestionFallsBackToCurious(t *testing.T) {
	if got := Analyze("And then what did your brother say?"); got != Curious {
		t.Fatalf("expected curious, got %s", got)
	}
}

func TestAnalyzeNeutralDefaults(t *testing.T) {
	if got := Analyze("The weather report says light rain tomorrow."); got != Default {
		t.Fatalf("expected default, got %s", got)
	}
	if got := Analyze(""); got != Default {
		t.Fatalf("expected default for empty text, got %s", got)
	}
}
