// Package redisstore keeps rate limit and session records in Redis.
//
// Rate limit records are hashes under <prefix>ratelimit:<ip> with fields
// attempts and last_attempt_at. Session records are plain strings under
// <prefix>session:<subject id>. Neither carries a TTL: records live until
// they are deleted or overwritten.
package redisstore

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "bridge:"

const (
	fieldAttempts      = "attempts"
	fieldLastAttemptAt = "last_attempt_at"
)

// Store hands out the Redis-backed repos sharing one client and key prefix.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
}

func New(client redis.UniversalClient, keyPrefix string) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("[redisstore New] redis client is required")
	}
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Store{client: client, keyPrefix: keyPrefix}, nil
}

func (s *Store) RateLimits() *RateLimitRepo {
	return &RateLimitRepo{client: s.client, keyPrefix: s.keyPrefix}
}

func (s *Store) Sessions() *SessionRepo {
	return &SessionRepo{client: s.client, keyPrefix: s.keyPrefix}
}

func (s *Store) Close() error {
	return s.client.Close()
}
