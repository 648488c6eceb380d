package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/certbible/certprep/internal/config"
	"github.com/certbible/certprep/internal/quiz"
	"github.com/redis/go-redis/v9"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a session.
var ErrSnapshotNotFound = errors.New("session snapshot not found")

// SessionSnapshot is what gets cached for an active session.
type SessionSnapshot struct {
	LearnerID string        `json:"learner_id"`
	Session   quiz.Snapshot `json:"session"`
}

// SessionSnapshotRepository caches active-session snapshots in Redis so a
// session survives a process restart.
type SessionSnapshotRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionSnapshotRepository(rdb *redis.Client, ttl time.Duration) *SessionSnapshotRepository {
	return &SessionSnapshotRepository{rdb: rdb, ttl: ttl}
}

func (r *SessionSnapshotRepository) Save(ctx context.Context, sessionID string, snap SessionSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return r.rdb.Set(ctx, config.CacheKey.SessionSnapshotKey(sessionID), raw, r.ttl).Err()
}

func (r *SessionSnapshotRepository) Load(ctx context.Context, sessionID string) (SessionSnapshot, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.SessionSnapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return SessionSnapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return SessionSnapshot{}, err
	}

	var snap SessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return SessionSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (r *SessionSnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, config.CacheKey.SessionSnapshotKey(sessionID)).Err()
}
