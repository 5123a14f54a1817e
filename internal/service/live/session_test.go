package live

import (
	"context"
	"io"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestSchedulerNeverOverlapsOrRewinds(t *testing.T) {
	var s Scheduler
	durations := []float64{0.25, 0.1, 0.32, 0.05, 1.2}

	prevEnd := 0.0
	for i, d := range durations {
		start := s.ScheduleAt(0.5, d)
		if start < 0.5 {
			t.Fatalf("chunk %d scheduled in the past: %f", i, start)
		}
		if start < prevEnd {
			t.Fatalf("chunk %d overlaps predecessor: start=%f prevEnd=%f", i, start, prevEnd)
		}
		prevEnd = start + d
	}
}

func TestSchedulerAdvancesWithClock(t *testing.T) {
	var s Scheduler
	if got := s.ScheduleAt(1.0, 0.5); got != 1.0 {
		t.Fatalf("first chunk should start at the clock, got %f", got)
	}
	if got := s.ScheduleAt(1.2, 0.5); got != 1.5 {
		t.Fatalf("second chunk should queue after the first, got %f", got)
	}
	// A late clock pulls the cursor forward instead of leaving a stale gap.
	if got := s.ScheduleAt(5.0, 0.5); got != 5.0 {
		t.Fatalf("late chunk should start at the clock, got %f", got)
	}
}

func TestSchedulerResetDropsCursor(t *testing.T) {
	var s Scheduler
	s.ScheduleAt(0, 3.0)
	s.Reset()
	if got := s.ScheduleAt(0.1, 0.5); got != 0.1 {
		t.Fatalf("after reset the chunk should follow the clock, got %f", got)
	}
}

func TestPCMDuration(t *testing.T) {
	// One second of 16-bit mono audio at 24kHz is 48000 bytes.
	if got := PCMDuration(48000); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected 1s, got %f", got)
	}
}

func TestTranscriptBufferFlushesWholeTurns(t *testing.T) {
	var b TranscriptBuffer
	b.AddUser("how are ")
	b.AddCompanion("I'm doing ")
	b.AddUser("you?")
	b.AddCompanion("great!")

	user, companion := b.Flush()
	if user != "how are you?" {
		t.Fatalf("unexpected user turn: %q", user)
	}
	if companion != "I'm doing great!" {
		t.Fatalf("unexpected companion turn: %q", companion)
	}

	user, companion = b.Flush()
	if user != "" || companion != "" {
		t.Fatal("flush should clear the buffer")
	}
}

type fakeUpstream struct {
	recv   chan *genai.LiveServerMessage
	sent   chan []byte
	closed atomic.Int32
}

// newFakeUpstream queues the given messages; a closed recv channel reads as
// io.EOF once drained.
func newFakeUpstream(msgs ...*genai.LiveServerMessage) *fakeUpstream {
	f := &fakeUpstream{
		recv: make(chan *genai.LiveServerMessage, len(msgs)+1),
		sent: make(chan []byte, 16),
	}
	for _, m := range msgs {
		f.recv <- m
	}
	return f
}

func (f *fakeUpstream) SendRealtimeInput(input genai.LiveRealtimeInput) error {
	f.sent <- input.Media.Data
	return nil
}

func (f *fakeUpstream) Receive() (*genai.LiveServerMessage, error) {
	msg, ok := <-f.recv
	if !ok {
		return nil, io.EOF
	}
	return msg, nil
}

func (f *fakeUpstream) Close() error {
	f.closed.Add(1)
	return nil
}

func audioMessage(data []byte) *genai.LiveServerMessage {
	return &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			ModelTurn: &genai.Content{
				Parts: []*genai.Part{{InlineData: &genai.Blob{Data: data}}},
			},
		},
	}
}

func collectEvents(t *testing.T, session *Session) []Event {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- session.Run(context.Background()) }()

	var events []Event
	for ev := range session.Events() {
		events = append(events, ev)
	}
	if err := <-done; err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return events
}

func TestSessionSchedulesAudioAndFlushesTranscripts(t *testing.T) {
	upstream := newFakeUpstream(
		audioMessage(make([]byte, 48000)),
		audioMessage(make([]byte, 24000)),
		&genai.LiveServerMessage{ServerContent: &genai.LiveServerContent{
			InputTranscription:  &genai.Transcription{Text: "hello "},
			OutputTranscription: &genai.Transcription{Text: "hi there"},
		}},
		&genai.LiveServerMessage{ServerContent: &genai.LiveServerContent{
			InputTranscription: &genai.Transcription{Text: "there"},
			TurnComplete:       true,
		}},
	)
	close(upstream.recv)

	var closes atomic.Int32
	session := NewSession(upstream, func() { closes.Add(1) })
	events := collectEvents(t, session)

	var audio []Event
	var transcripts []Event
	sawTurnComplete := false
	for _, ev := range events {
		switch ev.Type {
		case EventAudio:
			audio = append(audio, ev)
		case EventTranscript:
			transcripts = append(transcripts, ev)
		case EventTurnComplete:
			sawTurnComplete = true
		}
	}

	if len(audio) != 2 {
		t.Fatalf("expected 2 audio events, got %d", len(audio))
	}
	if audio[1].StartAt < audio[0].StartAt+PCMDuration(48000) {
		t.Fatalf("second chunk overlaps the first: %f < %f",
			audio[1].StartAt, audio[0].StartAt+PCMDuration(48000))
	}
	if len(transcripts) != 2 {
		t.Fatalf("expected 2 transcript events, got %d", len(transcripts))
	}
	if transcripts[0].Role != "user" || transcripts[0].Text != "hello there" {
		t.Fatalf("unexpected user transcript: %+v", transcripts[0])
	}
	if transcripts[1].Role != "companion" || transcripts[1].Text != "hi there" {
		t.Fatalf("unexpected companion transcript: %+v", transcripts[1])
	}
	if !sawTurnComplete {
		t.Fatal("expected a turnComplete event")
	}
	if closes.Load() != 1 {
		t.Fatalf("close callback fired %d times", closes.Load())
	}
	if session.Status() != StatusDisconnected {
		t.Fatalf("expected disconnected status, got %s", session.Status())
	}
}

func TestSessionInterruptResetsSchedule(t *testing.T) {
	upstream := newFakeUpstream(
		audioMessage(make([]byte, 480000)),
		&genai.LiveServerMessage{ServerContent: &genai.LiveServerContent{Interrupted: true}},
		audioMessage(make([]byte, 24000)),
	)
	close(upstream.recv)

	session := NewSession(upstream, nil)
	events := collectEvents(t, session)

	var audio []Event
	sawInterrupt := false
	for _, ev := range events {
		switch ev.Type {
		case EventAudio:
			audio = append(audio, ev)
		case EventInterrupted:
			sawInterrupt = true
		}
	}
	if !sawInterrupt {
		t.Fatal("expected an interrupted event")
	}
	if len(audio) != 2 {
		t.Fatalf("expected 2 audio events, got %d", len(audio))
	}
	// After the interrupt the schedule follows the live clock, not the ten
	// seconds of audio queued before it.
	if audio[1].StartAt >= audio[0].StartAt+PCMDuration(480000) {
		t.Fatalf("schedule was not reset: %f", audio[1].StartAt)
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	upstream := newFakeUpstream()
	var closes atomic.Int32
	session := NewSession(upstream, func() { closes.Add(1) })

	if session.Status() != StatusOpen {
		t.Fatalf("expected open status, got %s", session.Status())
	}

	session.Close()
	session.Close()
	if got := upstream.closed.Load(); got != 1 {
		t.Fatalf("upstream closed %d times", got)
	}
	if closes.Load() != 1 {
		t.Fatalf("close callback fired %d times", closes.Load())
	}
	if session.Status() != StatusDisconnected {
		t.Fatalf("expected disconnected status, got %s", session.Status())
	}

	if err := session.SendAudio([]byte{1}); err == nil {
		t.Fatal("expected SendAudio to fail after close")
	}
}

func TestSendAudioForwardsFrames(t *testing.T) {
	upstream := newFakeUpstream()
	session := NewSession(upstream, nil)

	done := make(chan error, 1)
	go func() { done <- session.Run(context.Background()) }()

	if err := session.SendAudio([]byte{1, 2, 3}); err != nil {
		t.Fatalf("SendAudio failed: %v", err)
	}

	select {
	case frame := <-upstream.sent:
		if len(frame) != 3 {
			t.Fatalf("unexpected frame: %v", frame)
		}
	case <-time.After(time.Second):
		t.Fatal("frame was not forwarded")
	}

	close(upstream.recv)
	for range session.Events() {
	}
	if err := <-done; err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}
