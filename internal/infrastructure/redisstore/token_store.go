package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/platewise/recipebox/internal/application"
)

func tokenKey(token string) string   { return "auth:token:" + token }
func userTokenKey(uid string) string { return "auth:user_token:" + uid }

// TokenStore keeps opaque API tokens in Redis with a reverse index per user,
// so minting is a get-or-create: the same token is handed back until revoked.
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

func (s *TokenStore) Mint(ctx context.Context, userID string) (string, error) {
	existing, err := s.rdb.Get(ctx, userTokenKey(userID)).Result()
	if err == nil && existing != "" {
		return existing, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}

	token, err := randomToken(32)
	if err != nil {
		return "", err
	}
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, tokenKey(token), userID, 0)
	pipe.Set(ctx, userTokenKey(userID), token, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

func (s *TokenStore) Resolve(ctx context.Context, token string) (string, error) {
	uid, err := s.rdb.Get(ctx, tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", application.ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return uid, nil
}

var _ application.TokenStore = (*TokenStore)(nil)
