package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// pendingMarker is stored under an idempotency key while the request that claimed it is running
const pendingMarker = "pending"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

func idempotencyKey(userID int64, key string) string {
	return fmt.Sprintf("idempotency:%d:%s", userID, key)
}

// SetSession records tokenID as the only live token of the user.
// A later login overwrites it and so revokes the previous token.
func (c *Client) SetSession(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error {
	return c.rdb.Set(ctx, sessionKey(userID), tokenID, ttl).Err()
}

// GetSession returns the live token id of the user, or "" when logged out
func (c *Client) GetSession(ctx context.Context, userID int64) (string, error) {
	tokenID, err := c.rdb.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return tokenID, err
}

// DeleteSession revokes the live token of the user
func (c *Client) DeleteSession(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, sessionKey(userID)).Err()
}

// ClaimIdempotencyKey marks key as in flight. It returns false when the key
// was already claimed or completed.
func (c *Client) ClaimIdempotencyKey(ctx context.Context, userID int64, key string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, idempotencyKey(userID, key), pendingMarker, ttl).Result()
}

// GetIdempotencyKey returns the stored result of key. pending is true while
// the first request is still running; an unknown key returns "", false.
func (c *Client) GetIdempotencyKey(ctx context.Context, userID int64, key string) (result string, pending bool, err error) {
	val, err := c.rdb.Get(ctx, idempotencyKey(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if val == pendingMarker {
		return "", true, nil
	}
	return val, false, nil
}

// SetIdempotencyKey stores the result of a completed request under key
func (c *Client) SetIdempotencyKey(ctx context.Context, userID int64, key, result string, ttl time.Duration) error {
	return c.rdb.Set(ctx, idempotencyKey(userID, key), result, ttl).Err()
}

// ReleaseIdempotencyKey forgets a claim whose request failed so the client can retry
func (c *Client) ReleaseIdempotencyKey(ctx context.Context, userID int64, key string) error {
	return c.rdb.Del(ctx, idempotencyKey(userID, key)).Err()
}
