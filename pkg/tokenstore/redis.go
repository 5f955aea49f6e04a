package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps each session's token pair in a hash keyed by session id.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(addr, password string, db int, ttl time.Duration) (*Redis, error) {
	c := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := c.Ping(context.Background()).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: c, ttl: ttl}, nil
}

func (r *Redis) Load(ctx context.Context, sid string) (Tokens, error) {
	kv, err := r.client.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		return Tokens{}, fmt.Errorf("load tokens: %w", err)
	}
	return Tokens{Access: kv[KeyAccess], Refresh: kv[KeyRefresh]}, nil
}

func (r *Redis) Save(ctx context.Context, sid string, t Tokens) error {
	key := sessionKey(sid)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, KeyAccess, t.Access, KeyRefresh, t.Refresh)
		if r.ttl > 0 {
			p.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context, sid string) error {
	if err := r.client.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func sessionKey(sid string) string {
	return fmt.Sprintf("storefront:session:%s:tokens", sid)
}
