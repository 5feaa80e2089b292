package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rageroom-backend/models"

	"github.com/redis/go-redis/v9"
)

// RoomInfoCache stores the public room descriptor between writes.
// Get returns (nil, nil) on a miss. Set never replaces an entry with a later UpdatedAt.
type RoomInfoCache interface {
	Get(ctx context.Context) (*models.RoomInfo, error)
	Set(ctx context.Context, info models.RoomInfo) error
	Invalidate(ctx context.Context) error
}

const roomInfoCacheKey = "rageroom:room_info"

type RedisRoomInfoCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRoomInfoCache(client *redis.Client, ttl time.Duration) *RedisRoomInfoCache {
	return &RedisRoomInfoCache{Client: client, TTL: ttl}
}

func (c *RedisRoomInfoCache) Get(ctx context.Context) (*models.RoomInfo, error) {
	data, err := c.Client.Get(ctx, roomInfoCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get room info: %w", err)
	}
	var info models.RoomInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode cached room info: %w", err)
	}
	return &info, nil
}

const roomInfoCacheRetries = 3

func (c *RedisRoomInfoCache) Set(ctx context.Context, info models.RoomInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}

	// WATCH makes the compare-and-set atomic against other writers.
	set := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, roomInfoCacheKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var cached models.RoomInfo
			if json.Unmarshal(current, &cached) == nil && cached.UpdatedAt.After(info.UpdatedAt) {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, roomInfoCacheKey, data, c.TTL)
			return nil
		})
		return err
	}

	for i := 0; i < roomInfoCacheRetries; i++ {
		err = c.Client.Watch(ctx, set, roomInfoCacheKey)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("redis set room info: %w", err)
	}
	return nil
}

func (c *RedisRoomInfoCache) Invalidate(ctx context.Context) error {
	return c.Client.Del(ctx, roomInfoCacheKey).Err()
}

// NewRedisClient builds the client used for caching.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// PingRedis checks the connection.
func PingRedis(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
