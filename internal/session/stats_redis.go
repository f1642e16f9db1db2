package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/formcheck/internal/exercise"

	"github.com/go-redis/redis/v8"
)

// RedisStatsStore keeps session stats as JSON values with a sliding TTL.
type RedisStatsStore struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewRedisStatsStore(redisClient *redis.Client, ttl time.Duration) *RedisStatsStore {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &RedisStatsStore{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func (s *RedisStatsStore) RecordFrame(ctx context.Context, sessionID string, frame FrameResult) (*Stats, error) {
	stats, err := s.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		stats = newStats(sessionID, frame.At)
	} else if err != nil {
		return nil, err
	}

	stats.apply(frame)
	if err := s.save(ctx, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *RedisStatsStore) ResetReps(ctx context.Context, sessionID string, exType exercise.Type) error {
	stats, err := s.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	stats.resetReps(exType)
	return s.save(ctx, stats)
}

func (s *RedisStatsStore) save(ctx context.Context, stats *Stats) error {
	statsJson, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	if err := s.redisClient.Set(ctx, statsKey(stats.SessionID), statsJson, s.ttl).Err(); err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

func (s *RedisStatsStore) Get(ctx context.Context, sessionID string) (*Stats, error) {
	cmd := s.redisClient.Get(ctx, statsKey(sessionID))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get stats: %w", err)
	}

	var stats Stats
	if err := json.Unmarshal([]byte(cmd.Val()), &stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}

	return &stats, nil
}

func (s *RedisStatsStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.redisClient.Del(ctx, statsKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete stats: %w", err)
	}
	return nil
}
