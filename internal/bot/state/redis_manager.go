package state

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateTTL = 24 * time.Hour

// RedisManager manages user states using Redis so several bot replicas
// see the same conversation.
type RedisManager struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisManager(client redis.UniversalClient) *RedisManager {
	return &RedisManager{client: client, ttl: stateTTL}
}

func stateKey(userID int64) string {
	return fmt.Sprintf("nutrition:bot:user:%d:state", userID)
}

// SetUserState sets the state for a user with TTL
func (m *RedisManager) SetUserState(ctx context.Context, userID int64, state string) {
	m.client.Set(ctx, stateKey(userID), state, m.ttl)
}

// GetUserState falls back to None on a miss or on any Redis error.
func (m *RedisManager) GetUserState(ctx context.Context, userID int64) string {
	result, err := m.client.Get(ctx, stateKey(userID)).Result()
	if err != nil {
		return None
	}
	return result
}

func (m *RedisManager) ClearUserState(ctx context.Context, userID int64) {
	m.client.Del(ctx, stateKey(userID))
}
