package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/edgard/plexybot/internal/config"
)

const redisKeyPrefix = "plexy:session:"

// RedisStore keeps sessions as JSON values whose expiry is the session TTL.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func redisKey(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) Load(ctx context.Context, userID int64) (*Session, error) {
	raw, err := r.rdb.Get(ctx, redisKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return NewSession(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", userID, err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", userID, err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	saved := *s
	saved.UpdatedAt = time.Now()
	raw, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", s.UserID, err)
	}
	if err := r.rdb.Set(ctx, redisKey(s.UserID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %d: %w", s.UserID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := r.rdb.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session %d: %w", userID, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
