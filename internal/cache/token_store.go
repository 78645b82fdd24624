package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	ErrCacheConnection = errors.New("cache: connection error")
)

// TokenStore keeps revoked JWTs in Redis until they would have expired
// anyway. A nil *TokenStore is valid and treats every token as live, so
// deployments without Redis degrade to local-only logout.
type TokenStore struct {
	client *redis.Client
	prefix string
}

func NewTokenStore(addr, password string) (*TokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, ErrCacheConnection
	}

	return &TokenStore{client: client, prefix: "revoked:"}, nil
}

// Revoke marks a token as invalid until expiresAt.
func (s *TokenStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if s == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.prefix+hashToken(token), "1", ttl).Err()
}

// IsRevoked reports whether the token has been denylisted. Lookup failures
// fail open: a broken cache must not lock every user out.
func (s *TokenStore) IsRevoked(ctx context.Context, token string) bool {
	if s == nil {
		return false
	}
	n, err := s.client.Exists(ctx, s.prefix+hashToken(token)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func (s *TokenStore) Close() error {
	if s == nil {
		return nil
	}
	return s.client.Close()
}

// Raw tokens never go into Redis keys.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
