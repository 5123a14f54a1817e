package live

import "strings"

// TranscriptBuffer accumulates partial transcription fragments for the
// current turn. Fragments arrive interleaved across server messages and are
// flushed as whole turns when the model signals turn completion.
type TranscriptBuffer struct {
	user      strings.Builder
	companion strings.Builder
}

func (b *TranscriptBuffer) AddUser(fragment string) {
	b.user.WriteString(fragment)
}

func (b *TranscriptBuffer) AddCompanion(fragment string) {
	b.companion.WriteString(fragment)
}

// Flush returns the accumulated turn texts and clears the buffer.
func (b *TranscriptBuffer) Flush() (user, companion string) {
	user = strings.TrimSpace(b.user.String())
	companion = strings.TrimSpace(b.companion.String())
	b.user.Reset()
	b.companion.Reset()
	return user, companion
}
