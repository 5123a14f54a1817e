package live

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

const inputMIMEType = "audio/pcm;rate=16000"

// Status is the connection lifecycle state of a voice session.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusOpen         Status = "open"
	StatusDisconnected Status = "disconnected"
)

// Event types delivered to the client connection.
const (
	EventAudio        = "audio"
	EventTranscript   = "transcript"
	EventInterrupted  = "interrupted"
	EventTurnComplete = "turnComplete"
)

// Event is one outbound message for the client: a scheduled audio chunk, a
// flushed transcript turn, or a control signal.
type Event struct {
	Type    string  `json:"type"`
	Audio   []byte  `json:"audio,omitempty"`
	StartAt float64 `json:"startAt,omitempty"`
	Role    string  `json:"role,omitempty"`
	Text    string  `json:"text,omitempty"`
}

// Upstream is the realtime model connection. *genai.Session satisfies it.
type Upstream interface {
	SendRealtimeInput(input genai.LiveRealtimeInput) error
	Receive() (*genai.LiveServerMessage, error)
	Close() error
}

var ErrSessionClosed = errors.New("voice session closed")

// Session bridges one client voice connection to the realtime model. Captured
// frames are queued through SendAudio and forwarded by the send pump; model
// output flows back as Events from the receive pump. Close tears the upstream
// down exactly once.
type Session struct {
	upstream   Upstream
	sched      Scheduler
	transcript TranscriptBuffer
	events     chan Event
	frames     chan []byte
	started    time.Time

	mu     sync.Mutex
	status Status

	done      chan struct{}
	closeOnce sync.Once
	onClose   func()
}

// NewSession wraps an already-open upstream connection. onClose fires exactly
// once when the session ends, regardless of which side closed first.
func NewSession(upstream Upstream, onClose func()) *Session {
	return &Session{
		upstream: upstream,
		events:   make(chan Event, 64),
		frames:   make(chan []byte, 64),
		started:  time.Now(),
		status:   StatusOpen,
		done:     make(chan struct{}),
		onClose:  onClose,
	}
}

// Status reports the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Events is the outbound stream. It is closed when Run returns.
func (s *Session) Events() <-chan Event {
	return s.events
}

// SendAudio queues one captured input frame for the send pump.
func (s *Session) SendAudio(pcm []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.frames <- pcm:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

// Close shuts the upstream connection down. Safe to call concurrently with
// Run and more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.status = StatusDisconnected
		s.mu.Unlock()

		close(s.done)
		if err := s.upstream.Close(); err != nil {
			log.Printf("[live] upstream close failed: %v", err)
		}
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// Run drives the send and receive pumps until the upstream closes or ctx is
// canceled. The events channel is closed on return.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.events)
	defer s.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.receivePump(ctx) })
	g.Go(func() error { return s.sendPump(ctx) })
	return g.Wait()
}

func (s *Session) sendPump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case pcm := <-s.frames:
			err := s.upstream.SendRealtimeInput(genai.LiveRealtimeInput{
				Media: &genai.Blob{Data: pcm, MIMEType: inputMIMEType},
			})
			if err != nil {
				log.Printf("[live] send frame failed: %v", err)
				return nil
			}
		}
	}
}

func (s *Session) receivePump(ctx context.Context) error {
	defer s.Close()

	for {
		msg, err := s.upstream.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil || s.Status() == StatusDisconnected {
				return nil
			}
			return err
		}

		clock := time.Since(s.started).Seconds()
		for _, ev := range s.handleServerMessage(msg, clock) {
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// handleServerMessage translates one server message into outbound events,
// advancing the scheduler and transcript buffer along the way.
func (s *Session) handleServerMessage(msg *genai.LiveServerMessage, clock float64) []Event {
	content := msg.ServerContent
	if content == nil {
		return nil
	}

	var events []Event

	if content.Interrupted {
		// The user barged in: all queued audio must stop and the next
		// chunk schedules against the live clock.
		s.sched.Reset()
		events = append(events, Event{Type: EventInterrupted})
	}

	if content.ModelTurn != nil {
		for _, part := range content.ModelTurn.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			duration := PCMDuration(len(part.InlineData.Data))
			start := s.sched.ScheduleAt(clock, duration)
			events = append(events, Event{
				Type:    EventAudio,
				Audio:   part.InlineData.Data,
				StartAt: start,
			})
		}
	}

	if content.InputTranscription != nil {
		s.transcript.AddUser(content.InputTranscription.Text)
	}
	if content.OutputTranscription != nil {
		s.transcript.AddCompanion(content.OutputTranscription.Text)
	}

	if content.TurnComplete {
		user, companion := s.transcript.Flush()
		if user != "" {
			events = append(events, Event{Type: EventTranscript, Role: "user", Text: user})
		}
		if companion != "" {
			events = append(events, Event{Type: EventTranscript, Role: "companion", Text: companion})
		}
		events = append(events, Event{Type: EventTurnComplete})
	}

	return events
}
