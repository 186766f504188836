package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/botucare/clinic-backend/internal/clinical"
)

// SessionStore keeps live sessions in Redis so a logout revokes a token
// before its JWT expiry.
type SessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewSessionStore builds a session store. Sessions expire after ttl.
func NewSessionStore(redisClient *redis.Client, ttl time.Duration) *SessionStore {
	if redisClient == nil {
		panic("identity: redis client is required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionStore{redis: redisClient, ttl: ttl}
}

func (s *SessionStore) key(sid string) string {
	return fmt.Sprintf("session:%s", sid)
}

// Create stores the actor under the session id with the store's TTL.
func (s *SessionStore) Create(ctx context.Context, sid string, actor clinical.Actor) error {
	data, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("identity: marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(sid), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("identity: store session: %w", err)
	}
	return nil
}

// Get returns the actor for a live session. The second return is false when
// the session is absent, expired or revoked.
func (s *SessionStore) Get(ctx context.Context, sid string) (clinical.Actor, bool, error) {
	data, err := s.redis.Get(ctx, s.key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return clinical.Actor{}, false, nil
	}
	if err != nil {
		return clinical.Actor{}, false, fmt.Errorf("identity: load session: %w", err)
	}
	var actor clinical.Actor
	if err := json.Unmarshal(data, &actor); err != nil {
		return clinical.Actor{}, false, fmt.Errorf("identity: decode session: %w", err)
	}
	return actor, true, nil
}

// Revoke deletes the session. Revoking an absent session is not an error.
func (s *SessionStore) Revoke(ctx context.Context, sid string) error {
	if err := s.redis.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("identity: revoke session: %w", err)
	}
	return nil
}
