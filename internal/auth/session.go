package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"school-resource-backend/internal/model"
)

// Session is the identity resolved from a bearer token. Handlers trust only
// this, never identity fields supplied in a request body.
type Session struct {
	UserID    uint       `json:"uid"`
	Username  string     `json:"sub"`
	Role      model.Role `json:"role"`
	IssuedAt  int64      `json:"iat"`
	ExpiresAt int64      `json:"exp"`
}

// SessionStore keeps opaque bearer tokens in Redis with a TTL.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func key(token string) string { return fmt.Sprintf("srm:sess:%s", token) }

// Create stores a new session under the given token.
func (s *SessionStore) Create(ctx context.Context, token string, u *model.User) error {
	now := time.Now()
	b, _ := json.Marshal(Session{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	return s.rdb.Set(ctx, key(token), b, s.ttl).Err()
}

// Get resolves a token to its session, or an error if the token is unknown
// or expired.
func (s *SessionStore) Get(ctx context.Context, token string) (*Session, error) {
	b, err := s.rdb.Get(ctx, key(token)).Bytes()
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Delete revokes a token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, key(token)).Err()
}
