package mood

import (
	"log"
	"sync"

	mood "github.com/sakurane/tsumugi/backend/internal/model/mood"
)

// Service is the mood/coaxing state machine. Two states exist: normal and
// angry. Upsetting input flips normal to angry; while angry, accepted coaxing
// attempts accumulate until the threshold flips the state back.
//
// The counter resets to 0 on every transition, so it never carries across
// states and never exceeds the threshold.
type Service struct {
	mu    sync.Mutex
	cache map[string]mood.Snapshot
	store Store
}

// NewService creates the state machine. store may be nil, in which case moods
// only live for the process lifetime.
func NewService(store Store) *Service {
	return &Service{
		cache: make(map[string]mood.Snapshot),
		store: store,
	}
}

// Get returns the current snapshot for a session, loading persisted state on
// first access.
func (s *Service) Get(sessionID string) mood.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked(sessionID)
}

// MarkUpset transitions the session to angry and zeroes the coax counter.
func (s *Service) MarkUpset(sessionID string) mood.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := mood.Snapshot{State: mood.Angry, Coax: 0}
	s.persist(sessionID, snap)
	return snap
}

// RecordCoax registers one coaxing attempt while angry. Accepted attempts
// increment the counter; reaching the threshold resets the mood to normal and
// reports reconciled=true. Calling while normal is a no-op.
func (s *Service) RecordCoax(sessionID string, accepted bool) (snap mood.Snapshot, reconciled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap = s.locked(sessionID)
	if snap.State != mood.Angry || !accepted {
		return snap, false
	}

	snap.Coax++
	if snap.Coax >= mood.CoaxThreshold {
		snap = mood.Snapshot{State: mood.Normal, Coax: 0}
		s.persist(sessionID, snap)
		return snap, true
	}

	s.persist(sessionID, snap)
	return snap, false
}

func (s *Service) locked(sessionID string) mood.Snapshot {
	if snap, ok := s.cache[sessionID]; ok {
		return snap
	}
	if s.store != nil {
		if snap, ok, err := s.store.Load(sessionID); err != nil {
			log.Printf("[mood] load failed for session=%s: %v", sessionID, err)
		} else if ok {
			s.cache[sessionID] = snap
			return snap
		}
	}
	snap := mood.Snapshot{State: mood.Normal}
	s.cache[sessionID] = snap
	return snap
}

func (s *Service) persist(sessionID string, snap mood.Snapshot) {
	s.cache[sessionID] = snap
	if s.store == nil {
		return
	}
	if err := s.store.Save(sessionID, snap); err != nil {
		log.Printf("[mood] save failed for session=%s: %v", sessionID, err)
	}
}
