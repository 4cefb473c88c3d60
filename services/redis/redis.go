package redis

import (
	redis_models "Cornlive/models/redis"
	redis_utils "Cornlive/services/redis/utils"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached session snapshots live a whole day; presence leases are sized by
// the presence service relative to its heartbeat interval.
const SessionCacheTTL = 24 * time.Hour

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// SavePresence stores a user's presence lease with the given TTL.
// Key format: "presence:{username}"
func (rc *RedisClient) SavePresence(presence *redis_models.PlayerPresence, ttl time.Duration) error {
	key := redis_utils.FormatPresenceKey(presence.Username)
	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("error marshaling presence data: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, ttl).Err()
}

// GetPresence retrieves a user's presence lease.
// Returns (nil, nil) when the lease has expired or was never set.
func (rc *RedisClient) GetPresence(username string) (*redis_models.PlayerPresence, error) {
	key := redis_utils.FormatPresenceKey(username)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting presence data: %v", err)
	}

	var presence redis_models.PlayerPresence
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("error unmarshaling presence data: %v", err)
	}
	return &presence, nil
}

// DeletePresence drops a user's presence lease (clean teardown).
func (rc *RedisClient) DeletePresence(username string) error {
	key := redis_utils.FormatPresenceKey(username)
	if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting presence data: %v", err)
	}
	return nil
}

// SaveCachedSession stores a game session snapshot in Redis
// Key format: "session:{id}"
// TTL: 24 hours
func (rc *RedisClient) SaveCachedSession(session *redis_models.CachedSession) error {
	key := redis_utils.FormatSessionKey(session.ID)
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error marshaling session data: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, SessionCacheTTL).Err()
}

// GetCachedSession retrieves a game session snapshot from Redis.
// Returns (nil, nil) on a cache miss so callers fall back to Postgres.
func (rc *RedisClient) GetCachedSession(sessionID string) (*redis_models.CachedSession, error) {
	key := redis_utils.FormatSessionKey(sessionID)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting session data: %v", err)
	}

	var session redis_models.CachedSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("error unmarshaling session data: %v", err)
	}
	return &session, nil
}

// DeleteCachedSession removes a game session snapshot from Redis
// Key format: "session:{id}"
func (rc *RedisClient) DeleteCachedSession(sessionID string) error {
	key := redis_utils.FormatSessionKey(sessionID)
	if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting session data: %v", err)
	}
	return nil
}

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}
