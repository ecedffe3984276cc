package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	SessionTTL    = 24 * time.Hour
	SessionCookie = "session_id"
	sessionPrefix = "session:"
)

// SessionStore maps session ids to user emails in Redis.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: SessionTTL}
}

// Create starts a session for email and returns its id.
func (s *SessionStore) Create(ctx context.Context, email string) (string, error) {
	sid := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionPrefix+sid, email, s.ttl).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

// Lookup returns the email for a session, or "" if it is unknown or expired.
// Each successful lookup extends the session.
func (s *SessionStore) Lookup(ctx context.Context, sessionID string) (string, error) {
	key := sessionPrefix + sessionID
	email, err := s.rdb.GetEx(ctx, key, s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return email, err
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionPrefix+sessionID).Err()
}
