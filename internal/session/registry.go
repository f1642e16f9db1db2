package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/pose"

	log "github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("session not found")

const DefaultIdleTTL = time.Hour

// Session owns one analyzer per exercise type. All access goes through mu,
// which keeps frames of one session strictly ordered.
type Session struct {
	mu           sync.Mutex
	id           string
	analyzers    map[exercise.Type]*exercise.Analyzer
	lastActivity time.Time
	// set under mu once the session left the registry
	evicted bool
}

// FrameFunc runs with the session lock held, right after a frame was analyzed.
// repsBefore is the rep count of the exercise before that frame.
// It must not call back into the Registry.
type FrameFunc func(res exercise.AnalysisResult, repsBefore int)

// Registry maps session ids to their analyzer state. Sessions are created on
// first use and removed on explicit eviction or after being idle for too long.
type Registry struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	idleTTL      time.Duration
	analyzerOpts []exercise.AnalyzerOption
	// ability to inject the clock used for idle tracking (for unit testing)
	Now func() time.Time
}

func NewRegistry(idleTTL time.Duration, analyzerOpts ...exercise.AnalyzerOption) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		sessions:     make(map[string]*Session),
		idleTTL:      idleTTL,
		analyzerOpts: analyzerOpts,
		Now:          time.Now,
	}
}

func (r *Registry) getOrCreate(sessionID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		s = &Session{
			id:           sessionID,
			analyzers:    make(map[exercise.Type]*exercise.Analyzer),
			lastActivity: r.Now(),
		}
		r.sessions[sessionID] = s
		log.Debugf("session registry: new session %s", sessionID)
	}
	return s
}

func (r *Registry) get(sessionID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// lockSession returns the live session for sessionID with its lock held.
// A session evicted between the lookup and the lock is skipped.
func (r *Registry) lockSession(sessionID string, create bool) (*Session, bool) {
	for {
		var (
			s  *Session
			ok = true
		)
		if create {
			s = r.getOrCreate(sessionID)
		} else {
			s, ok = r.get(sessionID)
		}
		if !ok {
			return nil, false
		}

		s.mu.Lock()
		if !s.evicted {
			return s, true
		}
		// evicted sessions are already out of the map, the next lookup differs
		s.mu.Unlock()
	}
}

// Analyze runs one observation through the session's analyzer for exType,
// creating the session and the analyzer on first use. then may be nil.
func (r *Registry) Analyze(
	sessionID string,
	exType exercise.Type,
	obs pose.Observation,
	then FrameFunc,
) (exercise.AnalysisResult, error) {
	if !exType.IsValid() {
		return exercise.AnalysisResult{}, exercise.ErrUnknownExerciseType
	}

	s, _ := r.lockSession(sessionID, true)
	defer s.mu.Unlock()

	a, ok := s.analyzers[exType]
	if !ok {
		var err error
		a, err = exercise.NewAnalyzer(exType, r.analyzerOpts...)
		if err != nil {
			return exercise.AnalysisResult{}, err
		}
		s.analyzers[exType] = a
	}

	s.lastActivity = r.Now()

	repsBefore := a.RepCount()
	res, err := a.Analyze(obs)
	if err != nil {
		return res, err
	}
	if then != nil {
		then(res, repsBefore)
	}
	return res, nil
}

// Reset clears the rep counter and issue log of one exercise in a session.
// then, if not nil, runs before the session lock is released.
func (r *Registry) Reset(sessionID string, exType exercise.Type, then func()) error {
	s, ok := r.lockSession(sessionID, false)
	if !ok {
		return ErrSessionNotFound
	}
	defer s.mu.Unlock()

	if a, ok := s.analyzers[exType]; ok {
		a.Reset()
	}
	s.lastActivity = r.Now()

	if then != nil {
		then()
	}
	return nil
}

// RepCounts returns the current rep count per exercise for a session.
func (r *Registry) RepCounts(sessionID string) (map[exercise.Type]int, error) {
	s, ok := r.lockSession(sessionID, false)
	if !ok {
		return nil, ErrSessionNotFound
	}
	defer s.mu.Unlock()

	counts := make(map[exercise.Type]int, len(s.analyzers))
	for exType, a := range s.analyzers {
		counts[exType] = a.RepCount()
	}
	return counts, nil
}

// Evict removes a session. It waits for a frame of that session still being analyzed.
func (r *Registry) Evict(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	delete(r.sessions, sessionID)

	// lock order is always registry then session
	s.mu.Lock()
	s.evicted = true
	s.mu.Unlock()

	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle drops every session idle for longer than the idle TTL and returns how many were dropped.
func (r *Registry) EvictIdle() int {
	now := r.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.sessions {
		// a session busy analyzing is not idle
		if !s.mu.TryLock() {
			continue
		}
		if now.Sub(s.lastActivity) > r.idleTTL {
			s.evicted = true
			delete(r.sessions, id)
			evicted++
		}
		s.mu.Unlock()
	}
	return evicted
}

// RunSweeper evicts idle sessions every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debugln("session registry: sweeper stopped")
			return
		case <-ticker.C:
			if evicted := r.EvictIdle(); evicted > 0 {
				log.Infof("session registry: evicted %d idle sessions", evicted)
			}
		}
	}
}
