package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/formcheck/internal/exercise"

	"github.com/coocood/freecache"
)

// LocalStatsStore is the in-process fallback used when redis is not configured.
type LocalStatsStore struct {
	// serializes read-modify-write of a single entry
	mu            sync.Mutex
	cache         *freecache.Cache
	expireSeconds int
}

func NewLocalStatsStore(cacheSizeBytes int, ttl time.Duration) *LocalStatsStore {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &LocalStatsStore{
		cache:         freecache.NewCache(cacheSizeBytes),
		expireSeconds: int(ttl.Seconds()),
	}
}

func (s *LocalStatsStore) RecordFrame(_ context.Context, sessionID string, frame FrameResult) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.load(sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		stats = newStats(sessionID, frame.At)
	} else if err != nil {
		return nil, err
	}

	stats.apply(frame)
	if err := s.store(stats); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *LocalStatsStore) ResetReps(_ context.Context, sessionID string, exType exercise.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.load(sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	stats.resetReps(exType)
	return s.store(stats)
}

func (s *LocalStatsStore) store(stats *Stats) error {
	statsJson, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	if err := s.cache.Set([]byte(statsKey(stats.SessionID)), statsJson, s.expireSeconds); err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}
	return nil
}

func (s *LocalStatsStore) Get(_ context.Context, sessionID string) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(sessionID)
}

func (s *LocalStatsStore) load(sessionID string) (*Stats, error) {
	statsJson, err := s.cache.Get([]byte(statsKey(sessionID)))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get cached stats: %w", err)
	}

	var stats Stats
	if err := json.Unmarshal(statsJson, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	return &stats, nil
}

func (s *LocalStatsStore) Delete(_ context.Context, sessionID string) error {
	s.cache.Del([]byte(statsKey(sessionID)))
	return nil
}
