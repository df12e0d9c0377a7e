// Package redisstore provides an optional Redis-backed read cache for the
// persistence store. All methods are safe on a nil *Store, so the system
// runs unchanged when Redis is not deployed.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const usernameTTL = 10 * time.Minute

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// Ping verifies connectivity; callers may degrade to no cache on failure.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Ping(ctx).Err()
}

func usernameKey(userID uint64) string {
	return fmt.Sprintf("chatvault:username:%d", userID)
}

func (s *Store) GetUsername(ctx context.Context, userID uint64) (string, bool) {
	if s == nil || s.rdb == nil {
		return "", false
	}
	v, err := s.rdb.Get(ctx, usernameKey(userID)).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (s *Store) SetUsername(ctx context.Context, userID uint64, username string) {
	if s == nil || s.rdb == nil {
		return
	}
	_ = s.rdb.Set(ctx, usernameKey(userID), username, usernameTTL).Err()
}

func (s *Store) InvalidateUser(ctx context.Context, userID uint64) {
	if s == nil || s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, usernameKey(userID)).Err()
}
