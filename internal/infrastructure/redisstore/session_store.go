package redisstore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/platewise/recipebox/internal/application"
)

func sessionKey(sid string) string { return "auth:session:" + sid }

// SessionStore keeps server-side sessions in Redis, keyed by an opaque
// session id carried in the sessionid cookie.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	sid, err := randomToken(32)
	if err != nil {
		return "", err
	}
	fields := map[string]any{
		"user_id":    userID,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, sessionKey(sid), fields)
	pipe.Expire(ctx, sessionKey(sid), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return sid, nil
}

func (s *SessionStore) Get(ctx context.Context, sid string) (string, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		return "", err
	}
	uid := data["user_id"]
	if uid == "" {
		return "", application.ErrNoSession
	}
	return uid, nil
}

func (s *SessionStore) Delete(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, sessionKey(sid)).Err()
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

var _ application.SessionStore = (*SessionStore)(nil)
